package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"spa-booking-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormTxKey struct{}

// conn returns the transaction bound to ctx, or db
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// Migrate creates or updates every table the service owns
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Category{},
		&models.Service{},
		&models.Booking{},
		&models.BookingLine{},
		&models.BillCounter{},
		&models.NotificationLog{},
	)
}

type GormTx struct{ db *gorm.DB }

func NewGormTx(db *gorm.DB) *GormTx { return &GormTx{db: db} }

func (t *GormTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, gormTxKey{}, tx))
	})
}

type GormCatalog struct{ db *gorm.DB }

func NewGormCatalog(db *gorm.DB) *GormCatalog { return &GormCatalog{db: db} }

var _ CatalogRepository = (*GormCatalog)(nil)

func (r *GormCatalog) ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	var out []models.Service
	q := conn(ctx, r.db).Order("sort_order ASC, id ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormCatalog) ServicesByIDs(ctx context.Context, ids []string) (map[string]models.Service, error) {
	out := make(map[string]models.Service, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Service
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, s := range rows {
		out[s.ID] = s
	}
	return out, nil
}

func (r *GormCatalog) GetService(ctx context.Context, id string) (*models.Service, error) {
	var s models.Service
	if err := conn(ctx, r.db).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *GormCatalog) SaveService(ctx context.Context, s *models.Service) error {
	return conn(ctx, r.db).Save(s).Error
}

func (r *GormCatalog) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := conn(ctx, r.db).Order("sort_order ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormCatalog) SaveCategory(ctx context.Context, c *models.Category) error {
	return conn(ctx, r.db).Save(c).Error
}

type GormBookings struct{ db *gorm.DB }

// linesInOrder keeps booking lines in the order they were submitted
func linesInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func NewGormBookings(db *gorm.DB) *GormBookings { return &GormBookings{db: db} }

var _ BookingRepository = (*GormBookings)(nil)

// Create inserts the header and its lines
func (r *GormBookings) Create(ctx context.Context, b *models.Booking) error {
	return conn(ctx, r.db).Create(b).Error
}

func (r *GormBookings) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	if err := conn(ctx, r.db).Preload("Lines", linesInOrder).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *GormBookings) ListByEmail(ctx context.Context, email string) ([]models.Booking, error) {
	var out []models.Booking
	err := conn(ctx, r.db).
		Preload("Lines", linesInOrder).
		Where("LOWER(customer_email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormBookings) SummarizeDay(ctx context.Context, dateCode string) (DaySummary, error) {
	s := DaySummary{DateCode: dateCode}
	err := conn(ctx, r.db).
		Model(&models.Booking{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total_vnd), 0) AS total_vnd, COALESCE(SUM(total_usd), 0) AS total_usd").
		Where("business_date = ?", dateCode).
		Scan(&s).Error
	s.DateCode = dateCode
	return s, err
}

type GormBillCounter struct{ db *gorm.DB }

func NewGormBillCounter(db *gorm.DB) *GormBillCounter { return &GormBillCounter{db: db} }

var _ BillCounter = (*GormBillCounter)(nil)

// Next increments the day's row in a single upsert so concurrent callers
// always receive distinct values.
func (c *GormBillCounter) Next(ctx context.Context, dateCode string) (int64, error) {
	row := models.BillCounter{DateCode: dateCode, Seq: 1}
	if err := counterUpsert(conn(ctx, c.db), &row).Error; err != nil {
		return 0, err
	}
	return row.Seq, nil
}

// counterUpsert inserts the day's row at 1 or bumps the existing one, and
// reads the resulting seq back into row.
func counterUpsert(tx *gorm.DB, row *models.BillCounter) *gorm.DB {
	return tx.
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "date_code"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"seq":        gorm.Expr("bill_counters.seq + 1"),
					"updated_at": gorm.Expr("NOW()"),
				}),
			},
			clause.Returning{Columns: []clause.Column{{Name: "seq"}}},
		).
		Create(row)
}

func (c *GormBillCounter) PruneBefore(ctx context.Context, before time.Time) (int64, error) {
	res := conn(ctx, c.db).Where("updated_at < ?", before).Delete(&models.BillCounter{})
	return res.RowsAffected, res.Error
}

type GormNotificationLogs struct{ db *gorm.DB }

func NewGormNotificationLogs(db *gorm.DB) *GormNotificationLogs {
	return &GormNotificationLogs{db: db}
}

func (r *GormNotificationLogs) Create(ctx context.Context, l *models.NotificationLog) error {
	return conn(ctx, r.db).Create(l).Error
}
