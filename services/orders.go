package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"spa-booking-backend/cart"
	"spa-booking-backend/config"
	"spa-booking-backend/models"
	"spa-booking-backend/repository"
	"spa-booking-backend/utils"
)

type OrderItem struct {
	ServiceID string          `json:"id" binding:"required"`
	Quantity  int             `json:"qty"`
	Options   *models.Options `json:"options"`
}

type OrderRequest struct {
	Customer       models.CustomerSnapshot
	Note           string
	Items          []OrderItem
	PaymentMethod  models.PaymentMethod
	Currency       models.Currency
	AmountPaid     *int64
	ClientTotalVND *int64
	Lang           string
}

type Estimate struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type OrderResult struct {
	Booking  *models.Booking
	Estimate Estimate
}

type OrderSettings struct {
	Location       *time.Location
	CutoffHour     int
	EstimateBuffer time.Duration
}

type OrderDeps struct {
	Catalog  repository.CatalogRepository
	Bookings repository.BookingRepository
	Counter  repository.BillCounter
	Tx       repository.TxManager
	Notifier Notifier
	Events   EventPublisher
	Log      *config.Logger
}

type OrderService struct {
	OrderDeps
	settings OrderSettings
	now      func() time.Time
}

func NewOrderService(deps OrderDeps, settings OrderSettings) *OrderService {
	if deps.Notifier == nil {
		deps.Notifier = NopNotifier{}
	}
	if deps.Events == nil {
		deps.Events = NopPublisher{}
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &OrderService{OrderDeps: deps, settings: settings, now: time.Now}
}

// Submit validates the order against the live catalog, assigns the next bill
// number of the business day and persists the booking in one transaction.
func (s *OrderService) Submit(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	if err := s.normalize(&req); err != nil {
		return nil, err
	}

	svcs, err := s.resolve(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		Customer:      req.Customer,
		PaymentMethod: req.PaymentMethod,
		Currency:      req.Currency,
		Status:        models.BookingPending,
		Lang:          req.Lang,
		Note:          req.Note,
		Lines:         make([]models.BookingLine, 0, len(req.Items)),
	}
	maxDuration := 0
	for i, item := range req.Items {
		svc := svcs[item.ServiceID]
		opts := models.DefaultOptions()
		if item.Options != nil {
			opts = *item.Options
		}
		totalVND, ok := addLine(booking.TotalVND, svc.PriceVND, item.Quantity)
		if !ok {
			return nil, invalid("items", "order total is too large")
		}
		totalUSD, ok := addLine(booking.TotalUSD, svc.PriceUSD, item.Quantity)
		if !ok {
			return nil, invalid("items", "order total is too large")
		}
		line := models.BookingLine{
			Position:    i,
			ServiceID:   svc.ID,
			ServiceName: svc.Name.In(req.Lang),
			Quantity:    item.Quantity,
			UnitPrice:   svc.PriceVND,
			UnitPriceUS: svc.PriceUSD,
			TotalPrice:  svc.PriceVND * int64(item.Quantity),
			Duration:    svc.Duration,
			Options:     cart.Restrict(svc, opts),
		}
		booking.TotalVND = totalVND
		booking.TotalUSD = totalUSD
		if svc.Duration > maxDuration {
			maxDuration = svc.Duration
		}
		booking.Lines = append(booking.Lines, line)
	}

	if req.ClientTotalVND != nil && *req.ClientTotalVND != booking.TotalVND {
		s.Log.Warn("client total differs from server total",
			"client_total_vnd", *req.ClientTotalVND,
			"server_total_vnd", booking.TotalVND,
			"email", req.Customer.Email,
		)
	}

	if req.AmountPaid != nil {
		due := booking.TotalVND
		if req.Currency == models.CurrencyUSD {
			due = booking.TotalUSD
		}
		paid := *req.AmountPaid
		if paid < due && req.PaymentMethod == models.PaymentCash {
			return nil, fmt.Errorf("%w: paid %d %s, due %d", ErrInsufficientPayment, paid, req.Currency, due)
		}
		booking.AmountPaid = paid
		if paid > due {
			booking.Change = paid - due
		}
	}

	now := s.now()
	day := utils.BusinessDate(now, s.settings.CutoffHour, s.settings.Location)
	booking.BusinessDate = utils.DateCode(day)

	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		seq, err := s.Counter.Next(ctx, booking.BusinessDate)
		if err != nil {
			return fmt.Errorf("next bill number: %w", err)
		}
		booking.BillNumber = fmt.Sprintf("%d-%s", seq, booking.BusinessDate)
		if err := s.Bookings.Create(ctx, booking); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		return nil
	})
	if err != nil {
		s.Log.Error("failed to persist booking", "email", req.Customer.Email, "error", err)
		return nil, err
	}

	s.Log.Info("booking created",
		"bill_number", booking.BillNumber,
		"booking_id", booking.ID.String(),
		"total_vnd", booking.TotalVND,
		"lines", len(booking.Lines),
	)
	s.afterCommit(ctx, booking)

	start := now.In(s.settings.Location).Add(s.settings.EstimateBuffer)
	return &OrderResult{
		Booking: booking,
		Estimate: Estimate{
			Start: start,
			End:   start.Add(time.Duration(maxDuration) * time.Minute),
		},
	}, nil
}

func (s *OrderService) afterCommit(ctx context.Context, b *models.Booking) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	s.Notifier.BookingConfirmed(ctx, b)
	if err := s.Events.BookingCreated(ctx, b); err != nil {
		s.Log.Warn("failed to publish booking event", "bill_number", b.BillNumber, "error", err)
	}
}

func (s *OrderService) normalize(req *OrderRequest) error {
	req.Customer.Name = strings.TrimSpace(req.Customer.Name)
	req.Customer.Email = strings.ToLower(strings.TrimSpace(req.Customer.Email))
	req.Customer.Phone = strings.TrimSpace(req.Customer.Phone)
	req.Note = strings.TrimSpace(req.Note)

	if req.Customer.Name == "" {
		return invalid("name", "is required")
	}
	if req.Customer.Email == "" {
		return invalid("email", "is required")
	}
	if len(req.Items) == 0 {
		return invalid("items", "at least one item is required")
	}
	for i := range req.Items {
		req.Items[i].ServiceID = strings.TrimSpace(req.Items[i].ServiceID)
		if req.Items[i].ServiceID == "" {
			return invalid("items", "service id is required")
		}
		if req.Items[i].Quantity < 1 || req.Items[i].Quantity > cart.MaxQuantity {
			return invalid("qty", fmt.Sprintf("must be between 1 and %d", cart.MaxQuantity))
		}
	}
	switch req.PaymentMethod {
	case models.PaymentCash, models.PaymentCard:
	default:
		return invalid("paymentMethod", "must be cash or card")
	}
	switch req.Currency {
	case "":
		req.Currency = models.CurrencyVND
	case models.CurrencyVND, models.CurrencyUSD:
	default:
		return invalid("currency", "must be VND or USD")
	}
	if req.AmountPaid != nil && *req.AmountPaid < 0 {
		return invalid("amountPaid", "must not be negative")
	}
	if e164 := utils.NormalizePhone(req.Customer.Phone); e164 != "" {
		req.Customer.Phone = e164
	}
	if req.Lang == "" {
		req.Lang = models.DefaultLang
	}
	return nil
}

// addLine returns total + price*qty, or false when the result would not
// fit in an int64. price and qty are non-negative.
func addLine(total, price int64, qty int) (int64, bool) {
	if qty > 0 && price > math.MaxInt64/int64(qty) {
		return 0, false
	}
	sub := price * int64(qty)
	if total > math.MaxInt64-sub {
		return 0, false
	}
	return total + sub, true
}

// resolve looks up every referenced service. Any unknown or inactive id
// rejects the whole order.
func (s *OrderService) resolve(ctx context.Context, items []OrderItem) (map[string]models.Service, error) {
	ids := make([]string, 0, len(items))
	seen := map[string]bool{}
	for _, item := range items {
		if !seen[item.ServiceID] {
			seen[item.ServiceID] = true
			ids = append(ids, item.ServiceID)
		}
	}
	found, err := s.Catalog.ServicesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve services: %w", err)
	}
	var missing []string
	for _, id := range ids {
		if svc, ok := found[id]; !ok || !svc.IsActive {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		s.Log.Warn("order references unknown services", "missing", missing)
		return nil, &LineNotFoundError{Missing: missing}
	}
	return found, nil
}

// IsClientError reports whether err stems from the request rather than the server
func IsClientError(err error) bool {
	var lnf *LineNotFoundError
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInsufficientPayment) ||
		errors.Is(err, ErrEmptyCart) ||
		errors.As(err, &lnf)
}
