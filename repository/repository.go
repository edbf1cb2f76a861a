package repository

import (
	"context"
	"errors"
	"time"

	"spa-booking-backend/models"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

type CatalogRepository interface {
	ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error)
	// ServicesByIDs returns the services that exist, keyed by id. Missing ids are absent.
	ServicesByIDs(ctx context.Context, ids []string) (map[string]models.Service, error)
	GetService(ctx context.Context, id string) (*models.Service, error)
	SaveService(ctx context.Context, s *models.Service) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	SaveCategory(ctx context.Context, c *models.Category) error
}

type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	// ListByEmail returns bookings with their lines, newest first
	ListByEmail(ctx context.Context, email string) ([]models.Booking, error)
	SummarizeDay(ctx context.Context, dateCode string) (DaySummary, error)
}

type DaySummary struct {
	DateCode string `json:"date"`
	Count    int64  `json:"count"`
	TotalVND int64  `json:"totalVND"`
	TotalUSD int64  `json:"totalUSD"`
}

// BillCounter issues per-day sequence numbers starting at 1
type BillCounter interface {
	Next(ctx context.Context, dateCode string) (int64, error)
	PruneBefore(ctx context.Context, before time.Time) (int64, error)
}

type NotificationLogRepository interface {
	Create(ctx context.Context, l *models.NotificationLog) error
}

// TxManager runs fn in one transaction; repositories called with the
// returned context join it.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
