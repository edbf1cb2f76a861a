package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"spa-booking-backend/config"
	"spa-booking-backend/models"
	"spa-booking-backend/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu    sync.Mutex
	bills []string
}

func (n *recordingNotifier) BookingConfirmed(_ context.Context, b *models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bills = append(n.bills, b.BillNumber)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) BookingCreated(_ context.Context, b *models.Booking) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, b.BillNumber)
	return p.err
}
func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	store    *repository.MemoryStore
	bookings *repository.MemoryBookings
	orders   *OrderService
	notifier *recordingNotifier
	events   *recordingPublisher
	loc      *time.Location
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	bookings := repository.NewMemoryBookings(store)
	for _, svc := range []models.Service{
		{ID: "STD-A", Name: models.LocalizedText{"en": "Foot massage", "vi": "Massage chân"}, PriceVND: 300000, PriceUSD: 12, Duration: 60, IsActive: true, ShowStrength: true},
		{ID: "STD-B", Name: models.LocalizedText{"en": "Body massage", "vi": "Massage body"}, PriceVND: 500000, PriceUSD: 20, Duration: 90, IsActive: true},
		{ID: "STD-OFF", Name: models.LocalizedText{"en": "Retired", "vi": "Ngừng"}, PriceVND: 100000, PriceUSD: 4, Duration: 30, IsActive: false},
	} {
		svc := svc
		require.NoError(t, store.SaveService(ctx, &svc))
	}

	f := &fixture{
		store:    store,
		bookings: bookings,
		notifier: &recordingNotifier{},
		events:   &recordingPublisher{},
		loc:      loc,
	}
	f.orders = NewOrderService(OrderDeps{
		Catalog:  store,
		Bookings: bookings,
		Counter:  store,
		Tx:       repository.NewMemoryTx(store),
		Notifier: f.notifier,
		Events:   f.events,
		Log:      config.NopLogger(),
	}, OrderSettings{Location: loc, CutoffHour: 8, EstimateBuffer: 10 * time.Minute})
	f.at(time.Date(2025, 3, 15, 10, 0, 0, 0, loc))
	return f
}

func (f *fixture) at(t time.Time) {
	f.orders.now = func() time.Time { return t }
}

func int64p(v int64) *int64 { return &v }

func baseRequest() OrderRequest {
	return OrderRequest{
		Customer:      models.CustomerSnapshot{Name: "Lan", Email: "Lan@Example.com", Phone: "0912345678"},
		Items:         []OrderItem{{ServiceID: "STD-A", Quantity: 2}, {ServiceID: "STD-B", Quantity: 1}},
		PaymentMethod: models.PaymentCash,
		Lang:          "vi",
	}
}

func TestSubmit_ServerRecomputesTotal(t *testing.T) {
	f := newFixture(t)
	req := baseRequest()
	req.ClientTotalVND = int64p(999)

	res, err := f.orders.Submit(context.Background(), req)
	require.NoError(t, err)

	b := res.Booking
	assert.Equal(t, int64(1100000), b.TotalVND)
	assert.Equal(t, int64(44), b.TotalUSD)
	assert.Equal(t, "1-15032025", b.BillNumber)
	assert.Equal(t, "15032025", b.BusinessDate)
	assert.Equal(t, models.BookingPending, b.Status)
	assert.Equal(t, "lan@example.com", b.Customer.Email)
	assert.Equal(t, "+84912345678", b.Customer.Phone)
	require.Len(t, b.Lines, 2)
	assert.Equal(t, int64(600000), b.Lines[0].TotalPrice)
	assert.Equal(t, "Massage chân", b.Lines[0].ServiceName)
	assert.Equal(t, models.DefaultOptions(), b.Lines[0].Options)

	stored, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1100000), stored.TotalVND)

	assert.Equal(t, []string{"1-15032025"}, f.notifier.bills)
	assert.Equal(t, []string{"1-15032025"}, f.events.events)
}

func TestSubmit_BusinessDayCutoff(t *testing.T) {
	f := newFixture(t)

	f.at(time.Date(2025, 3, 15, 7, 59, 0, 0, f.loc))
	res, err := f.orders.Submit(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "1-14032025", res.Booking.BillNumber)

	f.at(time.Date(2025, 3, 15, 8, 0, 0, 0, f.loc))
	res, err = f.orders.Submit(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "1-15032025", res.Booking.BillNumber)

	res, err = f.orders.Submit(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "2-15032025", res.Booking.BillNumber)
}

func TestSubmit_UnknownServiceRejectsWholeOrder(t *testing.T) {
	f := newFixture(t)
	req := baseRequest()
	req.Items = append(req.Items, OrderItem{ServiceID: "GHOST", Quantity: 1}, OrderItem{ServiceID: "STD-OFF", Quantity: 1})

	_, err := f.orders.Submit(context.Background(), req)
	var lnf *LineNotFoundError
	require.True(t, errors.As(err, &lnf))
	assert.Equal(t, []string{"GHOST", "STD-OFF"}, lnf.Missing)
	assert.True(t, IsClientError(err))

	// nothing persisted and no bill number consumed
	list, _ := f.bookings.ListByEmail(context.Background(), "lan@example.com")
	assert.Empty(t, list)
	res, err := f.orders.Submit(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "1-15032025", res.Booking.BillNumber)
}

func TestSubmit_Validation(t *testing.T) {
	f := newFixture(t)
	cases := map[string]func(r *OrderRequest){
		"missing name":    func(r *OrderRequest) { r.Customer.Name = "  " },
		"missing email":   func(r *OrderRequest) { r.Customer.Email = "" },
		"no items":        func(r *OrderRequest) { r.Items = nil },
		"zero qty":        func(r *OrderRequest) { r.Items[0].Quantity = 0 },
		"qty over limit":  func(r *OrderRequest) { r.Items[0].Quantity = 100 },
		"bad payment":     func(r *OrderRequest) { r.PaymentMethod = "crypto" },
		"bad currency":    func(r *OrderRequest) { r.Currency = "EUR" },
		"negative amount": func(r *OrderRequest) { r.AmountPaid = int64p(-1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := baseRequest()
			mutate(&req)
			_, err := f.orders.Submit(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSubmit_HugeQuantityNeverWraps(t *testing.T) {
	f := newFixture(t)
	req := baseRequest()
	req.Items = []OrderItem{{ServiceID: "STD-A", Quantity: 30744573456182585}}

	_, err := f.orders.Submit(context.Background(), req)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "qty", verr.Field)

	list, _ := f.bookings.ListByEmail(context.Background(), "lan@example.com")
	assert.Empty(t, list)
}

func TestSubmit_TotalOverflowRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// stored directly, bypassing catalog validation
	require.NoError(t, f.store.SaveService(ctx, &models.Service{
		ID: "STD-GOLD", Name: models.LocalizedText{"en": "Gold", "vi": "Vàng"},
		PriceVND: math.MaxInt64 / 2, PriceUSD: 1, Duration: 60, IsActive: true,
	}))

	req := baseRequest()
	req.Items = []OrderItem{{ServiceID: "STD-GOLD", Quantity: 3}}
	_, err := f.orders.Submit(ctx, req)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "items", verr.Field)

	req.Items = []OrderItem{{ServiceID: "STD-GOLD", Quantity: 1}, {ServiceID: "STD-GOLD", Quantity: 1}, {ServiceID: "STD-A", Quantity: 1}}
	_, err = f.orders.Submit(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	res, err := f.orders.Submit(ctx, baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "1-15032025", res.Booking.BillNumber, "rejected orders consume no bill number")
}

func TestSubmit_LinesKeepSubmittedOrder(t *testing.T) {
	f := newFixture(t)
	req := baseRequest()
	req.Items = []OrderItem{{ServiceID: "STD-B", Quantity: 1}, {ServiceID: "STD-A", Quantity: 1}, {ServiceID: "STD-B", Quantity: 2}}

	res, err := f.orders.Submit(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Booking.Lines, 3)
	for i, l := range res.Booking.Lines {
		assert.Equal(t, i, l.Position)
	}
	assert.Equal(t, "STD-A", res.Booking.Lines[1].ServiceID)
	assert.Equal(t, int64(1000000), res.Booking.Lines[2].TotalPrice)
}

func TestSubmit_ChangeAndPayment(t *testing.T) {
	f := newFixture(t)

	req := baseRequest()
	req.AmountPaid = int64p(1200000)
	res, err := f.orders.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), res.Booking.Change)

	req = baseRequest()
	req.Currency = models.CurrencyUSD
	req.AmountPaid = int64p(50)
	res, err = f.orders.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(6), res.Booking.Change)

	req = baseRequest()
	req.AmountPaid = int64p(1000000)
	_, err = f.orders.Submit(context.Background(), req)
	assert.ErrorIs(t, err, ErrInsufficientPayment)
}

func TestSubmit_Estimate(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, f.loc)
	f.at(now)

	res, err := f.orders.Submit(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.True(t, res.Estimate.Start.Equal(now.Add(10*time.Minute)))
	assert.True(t, res.Estimate.End.Equal(now.Add(100*time.Minute)))
}

func TestSubmit_OptionsSnapshotNormalized(t *testing.T) {
	f := newFixture(t)
	req := baseRequest()
	req.Items = []OrderItem{{
		ServiceID: "STD-A",
		Quantity:  1,
		Options: &models.Options{
			Strength: models.StrengthStrong,
			Focus:    []models.Area{models.AreaBack, models.AreaNeck},
			Avoid:    []models.Area{models.AreaBack},
			Tags:     []models.Tag{models.TagPregnant},
		},
	}}
	res, err := f.orders.Submit(context.Background(), req)
	require.NoError(t, err)

	o := res.Booking.Lines[0].Options
	assert.Equal(t, models.StrengthStrong, o.Strength)
	assert.Equal(t, []models.Area{models.AreaNeck}, o.Focus)
	assert.Equal(t, []models.Area{models.AreaBack}, o.Avoid)
	assert.True(t, o.HasTag(models.TagPregnant))
}

func TestSubmit_EventFailureDoesNotFailOrder(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")

	res, err := f.orders.Submit(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "1-15032025", res.Booking.BillNumber)
}

func TestSubmit_ConcurrentBillNumbersUnique(t *testing.T) {
	f := newFixture(t)
	const n = 50
	var wg sync.WaitGroup
	bills := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.orders.Submit(context.Background(), baseRequest())
			if err != nil {
				t.Errorf("submit: %v", err)
				return
			}
			bills <- res.Booking.BillNumber
		}()
	}
	wg.Wait()
	close(bills)

	seen := map[string]bool{}
	for b := range bills {
		assert.False(t, seen[b], "duplicate bill %s", b)
		seen[b] = true
	}
	assert.Len(t, seen, n)
	assert.True(t, seen["50-15032025"])
}
