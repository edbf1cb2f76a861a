package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"spa-booking-backend/models"

	"github.com/google/uuid"
)

// MemoryStore is an in-process implementation of every repository, used by
// tests and by local runs without postgres.
type MemoryStore struct {
	mu         sync.RWMutex
	services   map[string]models.Service
	categories map[string]models.Category
	bookings   map[uuid.UUID]models.Booking
	counters   map[string]models.BillCounter
	logs       []models.NotificationLog
	now        func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		services:   make(map[string]models.Service),
		categories: make(map[string]models.Category),
		bookings:   make(map[uuid.UUID]models.Booking),
		counters:   make(map[string]models.BillCounter),
		now:        time.Now,
	}
}

type memTxKey struct{}

func inMemTx(ctx context.Context) bool {
	b, _ := ctx.Value(memTxKey{}).(bool)
	return b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !inMemTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !inMemTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !inMemTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !inMemTx(ctx) {
		m.mu.Unlock()
	}
}

// MemoryTx serializes transactions behind the store's write lock. Writes
// made inside a failed transaction are not rolled back.
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inMemTx(ctx) {
		return fn(ctx)
	}
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	return fn(context.WithValue(ctx, memTxKey{}, true))
}

var (
	_ CatalogRepository         = (*MemoryStore)(nil)
	_ BillCounter               = (*MemoryStore)(nil)
	_ NotificationLogRepository = (*MemoryStore)(nil)
	_ BookingRepository         = (*MemoryBookings)(nil)
)

func (m *MemoryStore) ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]models.Service, 0, len(m.services))
	for _, s := range m.services {
		if activeOnly && !s.IsActive {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) ServicesByIDs(ctx context.Context, ids []string) (map[string]models.Service, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make(map[string]models.Service, len(ids))
	for _, id := range ids {
		if s, ok := m.services[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (m *MemoryStore) GetService(ctx context.Context, id string) (*models.Service, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	s, ok := m.services[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) SaveService(ctx context.Context, s *models.Service) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	now := m.now()
	if prev, ok := m.services[s.ID]; ok {
		s.CreatedAt = prev.CreatedAt
	} else {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	m.services[s.ID] = *s
	return nil
}

func (m *MemoryStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]models.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) SaveCategory(ctx context.Context, c *models.Category) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	m.categories[c.ID] = *c
	return nil
}

func (m *MemoryStore) Next(ctx context.Context, dateCode string) (int64, error) {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	c := m.counters[dateCode]
	c.DateCode = dateCode
	c.Seq++
	c.UpdatedAt = m.now()
	m.counters[dateCode] = c
	return c.Seq, nil
}

func (m *MemoryStore) PruneBefore(ctx context.Context, before time.Time) (int64, error) {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	var n int64
	for code, c := range m.counters {
		if c.UpdatedAt.Before(before) {
			delete(m.counters, code)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Create(ctx context.Context, l *models.NotificationLog) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	m.logs = append(m.logs, *l)
	return nil
}

// NotificationLogs returns a copy of every logged attempt
func (m *MemoryStore) NotificationLogs() []models.NotificationLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.NotificationLog(nil), m.logs...)
}

// MemoryBookings implements BookingRepository on a shared store
type MemoryBookings struct{ store *MemoryStore }

func NewMemoryBookings(store *MemoryStore) *MemoryBookings { return &MemoryBookings{store: store} }

func (r *MemoryBookings) Create(ctx context.Context, b *models.Booking) error {
	r.store.wlock(ctx)
	defer r.store.wunlock(ctx)
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = r.store.now()
	}
	for i := range b.Lines {
		if b.Lines[i].ID == uuid.Nil {
			b.Lines[i].ID = uuid.New()
		}
		b.Lines[i].BookingID = b.ID
	}
	cp := *b
	cp.Lines = append([]models.BookingLine(nil), b.Lines...)
	r.store.bookings[b.ID] = cp
	return nil
}

func (r *MemoryBookings) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *MemoryBookings) ListByEmail(ctx context.Context, email string) ([]models.Booking, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	needle := strings.ToLower(strings.TrimSpace(email))
	out := make([]models.Booking, 0)
	for _, b := range r.store.bookings {
		if strings.ToLower(b.Customer.Email) == needle {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryBookings) SummarizeDay(ctx context.Context, dateCode string) (DaySummary, error) {
	r.store.rlock(ctx)
	defer r.store.runlock(ctx)
	s := DaySummary{DateCode: dateCode}
	for _, b := range r.store.bookings {
		if b.BusinessDate == dateCode {
			s.Count++
			s.TotalVND += b.TotalVND
			s.TotalUSD += b.TotalUSD
		}
	}
	return s, nil
}

// SetClock overrides the time source for timestamps the store assigns
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}
