package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"spa-booking-backend/cart"
	"spa-booking-backend/config"
	"spa-booking-backend/models"
	"spa-booking-backend/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type OrderItemView struct {
	ServiceID    string                  `json:"serviceId"`
	Name         string                  `json:"name"`
	Qty          int                     `json:"qty"`
	UnitPrice    int64                   `json:"unitPrice"`
	TotalPrice   int64                   `json:"totalPrice"`
	Duration     int                     `json:"duration"`
	Options      models.LocalizedOptions `json:"options"`
	OptionValues models.Options          `json:"optionValues"`
}

type OrderView struct {
	ID         string          `json:"id"`
	BillNumber string          `json:"billNum"`
	Date       time.Time       `json:"date"`
	Total      int64           `json:"total"`
	TotalUSD   int64           `json:"totalUSD"`
	Items      []OrderItemView `json:"items"`
	Note       string          `json:"note"`
	Source     string          `json:"source"`
}

type CustomerLookup struct {
	Exists   bool                     `json:"exists"`
	Customer *models.CustomerSnapshot `json:"customer,omitempty"`
}

type HistoryService struct {
	bookings repository.BookingRepository
	legacy   LegacyHistory
	catalog  repository.CatalogRepository
	carts    repository.CartStore
	log      *config.Logger
}

// NewHistoryService builds the lookup service; legacy may be nil
func NewHistoryService(bookings repository.BookingRepository, legacy LegacyHistory, catalog repository.CatalogRepository, carts repository.CartStore, log *config.Logger) *HistoryService {
	return &HistoryService{bookings: bookings, legacy: legacy, catalog: catalog, carts: carts, log: log}
}

func fromBooking(b models.Booking) HistoricalOrder {
	return HistoricalOrder{
		ID:         b.ID.String(),
		BillNumber: b.BillNumber,
		CreatedAt:  b.CreatedAt,
		Customer:   b.Customer,
		TotalVND:   b.TotalVND,
		TotalUSD:   b.TotalUSD,
		Note:       b.Note,
		Lines:      b.Lines,
		Source:     SourcePrimary,
	}
}

// history merges both stores, newest first. A failing legacy store only
// degrades the result.
func (s *HistoryService) history(ctx context.Context, email string) ([]HistoricalOrder, error) {
	var primary, legacy []HistoricalOrder
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.bookings.ListByEmail(gctx, email)
		if err != nil {
			return fmt.Errorf("list bookings: %w", err)
		}
		for _, b := range list {
			primary = append(primary, fromBooking(b))
		}
		return nil
	})
	if s.legacy != nil {
		g.Go(func() error {
			list, err := s.legacy.ListByEmail(gctx, email)
			if err != nil {
				s.log.Warn("legacy history unavailable", "error", err)
				return nil
			}
			legacy = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	all := append(primary, legacy...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", invalid("email", "is required")
	}
	return email, nil
}

// CheckUserEmail reports whether the email has booked before, with the
// customer details of the most recent booking.
func (s *HistoryService) CheckUserEmail(ctx context.Context, email string) (*CustomerLookup, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	orders, err := s.history(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return &CustomerLookup{Exists: false}, nil
	}
	c := orders[0].Customer
	return &CustomerLookup{Exists: true, Customer: &c}, nil
}

func (s *HistoryService) ListOrders(ctx context.Context, email, lang string) ([]OrderView, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	orders, err := s.history(ctx, email)
	if err != nil {
		return nil, err
	}
	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.view(lang))
	}
	return out, nil
}

func (o HistoricalOrder) view(lang string) OrderView {
	v := OrderView{
		ID:         o.ID,
		BillNumber: o.BillNumber,
		Date:       o.CreatedAt,
		Total:      o.TotalVND,
		TotalUSD:   o.TotalUSD,
		Note:       o.Note,
		Source:     o.Source,
		Items:      make([]OrderItemView, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		v.Items = append(v.Items, OrderItemView{
			ServiceID:    l.ServiceID,
			Name:         l.ServiceName,
			Qty:          l.Quantity,
			UnitPrice:    l.UnitPrice,
			TotalPrice:   l.TotalPrice,
			Duration:     l.Duration,
			Options:      l.Options.Localize(lang),
			OptionValues: l.Options,
		})
	}
	return v
}

func (s *HistoryService) find(ctx context.Context, id string) (*HistoricalOrder, error) {
	if bid, err := uuid.Parse(id); err == nil {
		b, err := s.bookings.GetByID(ctx, bid)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("get booking: %w", err)
		}
		h := fromBooking(*b)
		return &h, nil
	}
	if s.legacy == nil {
		return nil, ErrNotFound
	}
	return s.legacy.Get(ctx, id)
}

// Restore appends a past booking's lines to the session cart at current
// catalog prices. Lines whose service is gone are skipped and reported.
// When ownerEmail is set, bookings of other customers read as not found.
func (s *HistoryService) Restore(ctx context.Context, sessionID, ownerEmail, orderID string) (*cart.Cart, []string, error) {
	order, err := s.find(ctx, strings.TrimSpace(orderID))
	if err != nil {
		return nil, nil, err
	}
	ownerEmail = strings.TrimSpace(ownerEmail)
	if ownerEmail != "" && !strings.EqualFold(ownerEmail, strings.TrimSpace(order.Customer.Email)) {
		s.log.Warn("restore refused for another customer's order", "order_id", order.ID)
		return nil, nil, ErrNotFound
	}

	ids := make([]string, 0, len(order.Lines))
	for _, l := range order.Lines {
		ids = append(ids, l.ServiceID)
	}
	svcs, err := s.catalog.ServicesByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve services: %w", err)
	}

	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	skipped := c.Restore(order.Lines, func(id string) (models.Service, bool) {
		svc, ok := svcs[id]
		return svc, ok
	})
	if len(skipped) > 0 {
		s.log.Warn("skipped unavailable services while restoring order",
			"order_id", order.ID, "bill_number", order.BillNumber, "skipped", skipped)
	}
	if err := s.carts.Save(ctx, sessionID, c); err != nil {
		return nil, nil, err
	}
	return c, skipped, nil
}
