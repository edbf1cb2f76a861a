package services

import (
	"context"

	"spa-booking-backend/cart"
	"spa-booking-backend/config"
	"spa-booking-backend/models"
	"spa-booking-backend/repository"
)

// CartService applies cart operations to the session's stored cart
type CartService struct {
	store   repository.CartStore
	catalog *CatalogService
	orders  *OrderService
	log     *config.Logger
}

func NewCartService(store repository.CartStore, catalog *CatalogService, orders *OrderService, log *config.Logger) *CartService {
	return &CartService{store: store, catalog: catalog, orders: orders, log: log}
}

func (s *CartService) Get(ctx context.Context, sessionID string) (*cart.Cart, error) {
	return s.store.Load(ctx, sessionID)
}

func (s *CartService) mutate(ctx context.Context, sessionID string, fn func(c *cart.Cart) error) (*cart.Cart, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CartService) AddLine(ctx context.Context, sessionID, serviceID string, qty int, opts *models.Options) (*cart.Cart, string, error) {
	svc, err := s.catalog.ActiveService(ctx, serviceID)
	if err != nil {
		return nil, "", err
	}
	var lineID string
	c, err := s.mutate(ctx, sessionID, func(c *cart.Cart) error {
		lineID, err = c.AddLine(*svc, qty, opts)
		return err
	})
	return c, lineID, err
}

func (s *CartService) UpdateLine(ctx context.Context, sessionID, lineID string, qty int) (*cart.Cart, error) {
	return s.mutate(ctx, sessionID, func(c *cart.Cart) error {
		return c.UpdateLine(lineID, qty)
	})
}

func (s *CartService) RemoveLine(ctx context.Context, sessionID, lineID string) (*cart.Cart, error) {
	return s.mutate(ctx, sessionID, func(c *cart.Cart) error {
		return c.RemoveLine(lineID)
	})
}

func (s *CartService) UpdateLineOptions(ctx context.Context, sessionID, lineID string, patch models.OptionsPatch) (*cart.Cart, error) {
	return s.mutate(ctx, sessionID, func(c *cart.Cart) error {
		return c.UpdateLineOptions(lineID, patch)
	})
}

func (s *CartService) UpdateAllOptions(ctx context.Context, sessionID string, patch models.OptionsPatch) (*cart.Cart, error) {
	return s.mutate(ctx, sessionID, func(c *cart.Cart) error {
		c.UpdateAllLinesOptions(patch)
		return nil
	})
}

func (s *CartService) ToggleArea(ctx context.Context, sessionID, lineID string, kind cart.Kind, area models.Area) (*cart.Cart, error) {
	return s.mutate(ctx, sessionID, func(c *cart.Cart) error {
		_, err := c.ToggleLineArea(lineID, kind, area)
		return err
	})
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

type CheckoutRequest struct {
	Customer      models.CustomerSnapshot
	Note          string
	PaymentMethod models.PaymentMethod
	Currency      models.Currency
	AmountPaid    *int64
	Lang          string
}

// Checkout submits the session cart as an order and empties the cart on success
func (s *CartService) Checkout(ctx context.Context, sessionID string, req CheckoutRequest) (*OrderResult, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.Len() == 0 {
		return nil, ErrEmptyCart
	}
	items := make([]OrderItem, 0, c.Len())
	for _, l := range c.Lines {
		opts := l.Options
		items = append(items, OrderItem{ServiceID: l.Service.ID, Quantity: l.Quantity, Options: &opts})
	}
	clientTotal := c.Totals().TotalVND
	res, err := s.orders.Submit(ctx, OrderRequest{
		Customer:       req.Customer,
		Note:           req.Note,
		Items:          items,
		PaymentMethod:  req.PaymentMethod,
		Currency:       req.Currency,
		AmountPaid:     req.AmountPaid,
		ClientTotalVND: &clientTotal,
		Lang:           req.Lang,
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.log.Warn("failed to clear cart after checkout", "bill_number", res.Booking.BillNumber, "error", err)
	}
	return res, nil
}
