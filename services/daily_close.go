package services

import (
	"context"
	"fmt"
	"time"

	"spa-booking-backend/config"
	"spa-booking-backend/repository"
	"spa-booking-backend/utils"

	"github.com/robfig/cron/v3"
)

type CloseReport struct {
	Summary        repository.DaySummary `json:"summary"`
	OpenedAt       time.Time             `json:"openedAt"`
	ClosedAt       time.Time             `json:"closedAt"`
	PrunedCounters int64                 `json:"prunedCounters"`
}

// DailyClose summarizes each business day when it ends and drops bill
// counters past the retention window.
type DailyClose struct {
	bookings   repository.BookingRepository
	counter    repository.BillCounter
	log        *config.Logger
	loc        *time.Location
	cutoffHour int
	retention  time.Duration
	now        func() time.Time
	cron       *cron.Cron
}

func NewDailyClose(bookings repository.BookingRepository, counter repository.BillCounter, cfg *config.Config) *DailyClose {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &DailyClose{
		bookings:   bookings,
		counter:    counter,
		log:        cfg.Log,
		loc:        loc,
		cutoffHour: cfg.BusinessDayCutoff,
		retention:  time.Duration(cfg.CounterRetentionDays) * 24 * time.Hour,
		now:        time.Now,
	}
}

func (j *DailyClose) Start() error {
	j.cron = cron.New(cron.WithLocation(j.loc))
	spec := fmt.Sprintf("0 %d * * *", j.cutoffHour)
	if _, err := j.cron.AddFunc(spec, func() {
		if _, err := j.Run(context.Background()); err != nil {
			j.log.Error("daily close failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule daily close: %w", err)
	}
	j.cron.Start()
	j.log.Info("daily close scheduler started", "schedule", spec, "timezone", j.loc.String())
	return nil
}

// Stop halts the scheduler and waits for a running job
func (j *DailyClose) Stop() {
	if j.cron != nil {
		<-j.cron.Stop().Done()
	}
}

// CurrentBusinessDay is the date code bookings are billed under right now
func (j *DailyClose) CurrentBusinessDay() string {
	return utils.DateCode(utils.BusinessDate(j.now(), j.cutoffHour, j.loc))
}

func (j *DailyClose) Summarize(ctx context.Context, dateCode string) (repository.DaySummary, error) {
	if _, err := utils.ParseDateCode(dateCode, j.loc); err != nil {
		return repository.DaySummary{}, invalid("date", "must be ddmmyyyy")
	}
	return j.bookings.SummarizeDay(ctx, dateCode)
}

// Run closes the business day that ended most recently
func (j *DailyClose) Run(ctx context.Context) (*CloseReport, error) {
	now := j.now()
	closed := utils.BusinessDate(now, j.cutoffHour, j.loc).AddDate(0, 0, -1)
	code := utils.DateCode(closed)
	openedAt, closedAt := utils.BusinessDayWindow(closed, j.cutoffHour)

	summary, err := j.bookings.SummarizeDay(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", code, err)
	}
	pruned, err := j.counter.PruneBefore(ctx, now.Add(-j.retention))
	if err != nil {
		return nil, fmt.Errorf("prune bill counters: %w", err)
	}

	j.log.Info("business day closed",
		"date", code,
		"opened_at", openedAt,
		"closed_at", closedAt,
		"bookings", summary.Count,
		"revenue_vnd", summary.TotalVND,
		"revenue_usd", summary.TotalUSD,
		"pruned_counters", pruned,
	)
	return &CloseReport{Summary: summary, OpenedAt: openedAt, ClosedAt: closedAt, PrunedCounters: pruned}, nil
}
