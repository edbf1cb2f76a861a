package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"spa-booking-backend/config"
	"spa-booking-backend/models"
	"spa-booking-backend/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLegacy struct {
	orders []HistoricalOrder
	err    error
}

func (f *fakeLegacy) ListByEmail(_ context.Context, email string) ([]HistoricalOrder, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []HistoricalOrder
	for _, o := range f.orders {
		if o.Customer.Email == email {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeLegacy) Get(_ context.Context, id string) (*HistoricalOrder, error) {
	for _, o := range f.orders {
		if o.ID == id {
			o := o
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

func TestHistory_MergesStoresNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, day := range []int{10, 12} {
		at := time.Date(2025, 3, day, 9, 0, 0, 0, f.loc)
		f.at(at)
		f.store.SetClock(func() time.Time { return at })
		_, err := f.orders.Submit(ctx, baseRequest())
		require.NoError(t, err)
	}

	legacy := &fakeLegacy{orders: []HistoricalOrder{{
		ID:         "65f0c0ffee0000000000abcd",
		BillNumber: "7-11032025",
		CreatedAt:  time.Date(2025, 3, 11, 9, 0, 0, 0, f.loc),
		Customer:   models.CustomerSnapshot{Name: "Lan (old)", Email: "lan@example.com"},
		TotalVND:   300000,
		Lines: []models.BookingLine{{
			ServiceID: "STD-A", ServiceName: "Foot massage", Quantity: 1, UnitPrice: 300000, TotalPrice: 300000,
			Options: models.Options{Strength: models.StrengthStrong, Focus: []models.Area{models.AreaBack}},
		}},
		Source: SourceLegacy,
	}}}
	h := NewHistoryService(f.bookings, legacy, f.store, repository.NewMemoryCartStore(), config.NopLogger())

	orders, err := h.ListOrders(ctx, " LAN@example.com ", "vi")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "1-12032025", orders[0].BillNumber)
	assert.Equal(t, "7-11032025", orders[1].BillNumber)
	assert.Equal(t, SourceLegacy, orders[1].Source)
	assert.Equal(t, "1-10032025", orders[2].BillNumber)

	item := orders[1].Items[0]
	assert.Equal(t, "Mạnh", item.Options.Strength)
	assert.Equal(t, []string{"Lưng"}, item.Options.Focus)
	assert.Equal(t, models.StrengthStrong, item.OptionValues.Strength)
}

func TestHistory_LegacyFailureDegrades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.orders.Submit(ctx, baseRequest())
	require.NoError(t, err)

	h := NewHistoryService(f.bookings, &fakeLegacy{err: errors.New("mongo down")}, f.store, repository.NewMemoryCartStore(), config.NopLogger())
	orders, err := h.ListOrders(ctx, "lan@example.com", "en")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestHistory_CheckUserEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := NewHistoryService(f.bookings, nil, f.store, repository.NewMemoryCartStore(), config.NopLogger())

	res, err := h.CheckUserEmail(ctx, "lan@example.com")
	require.NoError(t, err)
	assert.False(t, res.Exists)
	assert.Nil(t, res.Customer)

	_, err = f.orders.Submit(ctx, baseRequest())
	require.NoError(t, err)

	res, err = h.CheckUserEmail(ctx, "Lan@Example.com")
	require.NoError(t, err)
	assert.True(t, res.Exists)
	assert.Equal(t, "Lan", res.Customer.Name)
	assert.Equal(t, "+84912345678", res.Customer.Phone)

	_, err = h.CheckUserEmail(ctx, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestHistory_RestoreSkipsUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.orders.Submit(ctx, baseRequest())
	require.NoError(t, err)

	// retire one service after the booking was placed
	svc, err := f.store.GetService(ctx, "STD-B")
	require.NoError(t, err)
	svc.IsActive = false
	svc.PriceVND = 1
	require.NoError(t, f.store.SaveService(ctx, svc))

	carts := repository.NewMemoryCartStore()
	h := NewHistoryService(f.bookings, nil, f.store, carts, config.NopLogger())
	c, skipped, err := h.Restore(ctx, "sess-1", "lan@example.com", res.Booking.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"STD-B"}, skipped)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.Lines[0].Quantity)

	stored, err := carts.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(600000), stored.Totals().TotalVND)
}

func TestHistory_RestoreUnknownOrder(t *testing.T) {
	f := newFixture(t)
	h := NewHistoryService(f.bookings, nil, f.store, repository.NewMemoryCartStore(), config.NopLogger())

	_, _, err := h.Restore(context.Background(), "sess", "", "00000000-0000-0000-0000-000000000001")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = h.Restore(context.Background(), "sess", "", "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistory_RestoreChecksOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.orders.Submit(ctx, baseRequest())
	require.NoError(t, err)

	carts := repository.NewMemoryCartStore()
	h := NewHistoryService(f.bookings, nil, f.store, carts, config.NopLogger())

	_, _, err = h.Restore(ctx, "sess-2", "mallory@example.com", res.Booking.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)
	stored, err := carts.Load(ctx, "sess-2")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Len(), "nothing copied into a stranger's cart")

	c, _, err := h.Restore(ctx, "sess-3", "LAN@example.com", res.Booking.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestLegacyOptions_TranslatesLabels(t *testing.T) {
	o := legacyOptions{
		Strength:  "Mạnh",
		Therapist: "Nữ",
		Focus:     []string{"Lưng", "Vai"},
		Avoid:     []string{"feet"},
		Tags:      []string{"Mang thai", "unknown"},
	}.toOptions()

	assert.Equal(t, models.StrengthStrong, o.Strength)
	assert.Equal(t, models.TherapistFemale, o.Therapist)
	assert.Equal(t, []models.Area{models.AreaBack, models.AreaShoulders}, o.Focus)
	assert.Equal(t, []models.Area{models.AreaFeet}, o.Avoid)
	assert.Equal(t, []models.Tag{models.TagPregnant}, o.Tags)
}
