package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"spa-booking-backend/cart"
	"spa-booking-backend/config"
	"spa-booking-backend/models"
	"spa-booking-backend/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_MenuTypeFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.SaveService(ctx, &models.Service{
		ID: "VIP-1", CategoryID: "vip", Name: models.LocalizedText{"en": "VIP", "vi": "VIP"},
		PriceVND: 900000, PriceUSD: 36, Duration: 120, IsActive: true,
	}))
	require.NoError(t, f.store.SaveCategory(ctx, &models.Category{ID: "vip", Name: models.LocalizedText{"en": "VIP", "vi": "VIP"}}))
	require.NoError(t, f.store.SaveCategory(ctx, &models.Category{ID: "empty", Name: models.LocalizedText{"en": "Empty", "vi": "Trống"}}))

	c := NewCatalogService(f.store, config.NopLogger())

	all, err := c.ListServices(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3, "inactive services are hidden")

	vip, err := c.ListServices(ctx, "vip")
	require.NoError(t, err)
	require.Len(t, vip, 1)
	assert.Equal(t, "VIP-1", vip[0].ID)

	cats, err := c.ListCategories(ctx, "VIP")
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "vip", cats[0].ID)
}

func TestCatalog_ActiveService(t *testing.T) {
	f := newFixture(t)
	c := NewCatalogService(f.store, config.NopLogger())

	svc, err := c.ActiveService(context.Background(), "STD-A")
	require.NoError(t, err)
	assert.Equal(t, int64(300000), svc.PriceVND)

	for _, id := range []string{"STD-OFF", "NOPE"} {
		_, err := c.ActiveService(context.Background(), id)
		var lnf *LineNotFoundError
		require.True(t, errors.As(err, &lnf), id)
		assert.Equal(t, []string{id}, lnf.Missing)
	}
}

func TestCatalog_SaveServiceValidation(t *testing.T) {
	f := newFixture(t)
	c := NewCatalogService(f.store, config.NopLogger())
	valid := func() *models.Service {
		return &models.Service{ID: "STD-C", Name: models.LocalizedText{"en": "Scrub", "vi": "Tẩy da"}, PriceVND: 1, Duration: 30}
	}

	tests := map[string]func(s *models.Service){
		"no id":          func(s *models.Service) { s.ID = " " },
		"no vi name":     func(s *models.Service) { s.Name = models.LocalizedText{"en": "Scrub"} },
		"negative price": func(s *models.Service) { s.PriceUSD = -1 },
		"huge price":     func(s *models.Service) { s.PriceVND = models.MaxPrice + 1 },
		"no duration":    func(s *models.Service) { s.Duration = 0 },
		"unknown area":   func(s *models.Service) { s.Areas = models.AreaFlags{"tail": true} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			s := valid()
			mutate(s)
			assert.ErrorIs(t, c.SaveService(context.Background(), s), ErrInvalidInput)
		})
	}

	require.NoError(t, c.SaveService(context.Background(), valid()))
	got, err := c.GetService(context.Background(), "STD-C")
	require.NoError(t, err)
	assert.Equal(t, "Tẩy da", got.Name.In("vi"))

	_, err = c.GetService(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIdempotent_ReplaysAndReleases(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryIdempotency()
	calls := 0
	fn := func() ([]byte, error) {
		calls++
		return []byte(`{"billNum":"1-15032025"}`), nil
	}

	body, replayed, err := Idempotent(ctx, store, config.NopLogger(), "k1", fn)
	require.NoError(t, err)
	assert.False(t, replayed)

	again, replayed, err := Idempotent(ctx, store, config.NopLogger(), "k1", fn)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, body, again)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, _, err = Idempotent(ctx, store, config.NopLogger(), "k2", func() ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	_, replayed, err = Idempotent(ctx, store, config.NopLogger(), "k2", fn)
	require.NoError(t, err)
	assert.False(t, replayed, "failed attempts free the key")

	_, replayed, err = Idempotent(ctx, nil, config.NopLogger(), "k1", fn)
	require.NoError(t, err)
	assert.False(t, replayed)
}

func TestIdempotent_InFlight(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryIdempotency()
	acquired, _, err := store.Reserve(ctx, "k")
	require.NoError(t, err)
	require.True(t, acquired)

	_, _, err = Idempotent(ctx, store, config.NopLogger(), "k", func() ([]byte, error) { return []byte("x"), nil })
	assert.ErrorIs(t, err, repository.ErrRequestInFlight)
}

// failingComplete accepts reservations but cannot store responses
type failingComplete struct {
	repository.IdempotencyStore
}

func (failingComplete) Complete(context.Context, string, []byte) error {
	return errors.New("redis: connection reset")
}

func TestIdempotent_CompleteFailureFreesKey(t *testing.T) {
	ctx := context.Background()
	store := failingComplete{repository.NewMemoryIdempotency()}
	calls := 0
	fn := func() ([]byte, error) {
		calls++
		return []byte(`{"billNum":"1-15032025"}`), nil
	}

	body, replayed, err := Idempotent(ctx, store, config.NopLogger(), "k", fn)
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.JSONEq(t, `{"billNum":"1-15032025"}`, string(body))

	_, replayed, err = Idempotent(ctx, store, config.NopLogger(), "k", fn)
	require.NoError(t, err, "a retry must not see the key as in flight")
	assert.False(t, replayed)
	assert.Equal(t, 2, calls)
}

func TestCartService_Checkout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	carts := repository.NewMemoryCartStore()
	cs := NewCartService(carts, NewCatalogService(f.store, config.NopLogger()), f.orders, config.NopLogger())

	_, err := cs.Checkout(ctx, "s1", CheckoutRequest{})
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, lineID, err := cs.AddLine(ctx, "s1", "STD-A", 2, nil)
	require.NoError(t, err)
	_, _, err = cs.AddLine(ctx, "s1", "STD-B", 1, nil)
	require.NoError(t, err)
	_, _, err = cs.AddLine(ctx, "s1", "STD-OFF", 1, nil)
	var lnf *LineNotFoundError
	require.True(t, errors.As(err, &lnf))

	c, err := cs.ToggleArea(ctx, "s1", lineID, cart.KindFocus, models.AreaNeck)
	require.NoError(t, err)
	line, ok := c.Line(lineID)
	require.True(t, ok)
	assert.Equal(t, []models.Area{models.AreaNeck}, line.Options.Focus)

	res, err := cs.Checkout(ctx, "s1", CheckoutRequest{
		Customer:      models.CustomerSnapshot{Name: "Lan", Email: "lan@example.com"},
		PaymentMethod: models.PaymentCard,
		Lang:          "en",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1100000), res.Booking.TotalVND)
	assert.Equal(t, []models.Area{models.AreaNeck}, res.Booking.Lines[0].Options.Focus)

	after, err := cs.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, after.Len())
}

func TestCartService_UpdateAndRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cs := NewCartService(repository.NewMemoryCartStore(), NewCatalogService(f.store, config.NopLogger()), f.orders, config.NopLogger())

	_, id, err := cs.AddLine(ctx, "s", "STD-A", 1, nil)
	require.NoError(t, err)

	c, err := cs.UpdateLine(ctx, "s", id, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(900000), c.Totals().TotalVND)

	strong := models.StrengthStrong
	c, err = cs.UpdateAllOptions(ctx, "s", models.OptionsPatch{Strength: &strong})
	require.NoError(t, err)
	assert.Equal(t, models.StrengthStrong, c.Lines[0].Options.Strength)

	_, err = cs.RemoveLine(ctx, "s", "nope")
	assert.ErrorIs(t, err, cart.ErrLineNotFound)

	c, err = cs.UpdateLine(ctx, "s", id, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestDailyClose_Run(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.at(time.Date(2025, 3, 14, 12, 0, 0, 0, f.loc))
	for i := 0; i < 2; i++ {
		_, err := f.orders.Submit(ctx, baseRequest())
		require.NoError(t, err)
	}

	cfg := &config.Config{Location: f.loc, BusinessDayCutoff: 8, CounterRetentionDays: 90, Log: config.NopLogger()}
	job := NewDailyClose(f.bookings, f.store, cfg)
	job.now = func() time.Time { return time.Date(2025, 3, 15, 8, 0, 0, 0, f.loc) }

	assert.Equal(t, "15032025", job.CurrentBusinessDay())

	report, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "14032025", report.Summary.DateCode)
	assert.Equal(t, int64(2), report.Summary.Count)
	assert.Equal(t, int64(2200000), report.Summary.TotalVND)
	assert.True(t, report.OpenedAt.Equal(time.Date(2025, 3, 14, 8, 0, 0, 0, f.loc)))
	assert.True(t, report.ClosedAt.Equal(time.Date(2025, 3, 15, 8, 0, 0, 0, f.loc)))

	_, err = job.Summarize(ctx, "2025-03-14")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
