package services

import (
	"context"
	"encoding/json"
	"time"

	"hotel-manager/models"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const dashboardCacheKey = "hotel:dashboard:summary"

type DashboardSummary struct {
	TotalRooms     int64           `json:"total_rooms"`
	AvailableRooms int64           `json:"available_rooms"`
	OccupiedRooms  int64           `json:"occupied_rooms"`
	CleaningRooms  int64           `json:"cleaning_rooms"`
	WeeklyBookings int64           `json:"weekly_reservations"`
	WeeklyIncome   decimal.Decimal `json:"weekly_income"`
	WeekStart      time.Time       `json:"week_start"`
	WeekEnd        time.Time       `json:"week_end"`
}

// DashboardCache stores the summary in Redis. A nil client disables it.
type DashboardCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func (c *DashboardCache) enabled() bool {
	return c != nil && c.Client != nil && c.TTL > 0
}

func (c *DashboardCache) get(ctx context.Context) (*DashboardSummary, bool) {
	if !c.enabled() {
		return nil, false
	}
	raw, err := c.Client.Get(ctx, dashboardCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).Warn("dashboard cache read failed")
		}
		return nil, false
	}
	var s DashboardSummary
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	return &s, true
}

func (c *DashboardCache) set(ctx context.Context, s DashboardSummary) {
	if !c.enabled() {
		return
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.Client.Set(ctx, dashboardCacheKey, raw, c.TTL).Err(); err != nil {
		log.WithError(err).Warn("dashboard cache write failed")
	}
}

// Invalidate drops the cached summary after room or reservation changes.
func (c *DashboardCache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.Client.Del(ctx, dashboardCacheKey).Err(); err != nil {
		log.WithError(err).Warn("dashboard cache invalidate failed")
	}
}

type DashboardService struct {
	DB       *gorm.DB
	Cache    *DashboardCache
	Location *time.Location
	now      func() time.Time
}

func NewDashboardService(db *gorm.DB, cache *DashboardCache, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{DB: db, Cache: cache, Location: loc, now: time.Now}
}

// WeekBounds returns Monday 00:00 of t's week and the following Monday, in loc.
func WeekBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	offset := (int(local.Weekday()) + 6) % 7
	start := time.Date(local.Year(), local.Month(), local.Day()-offset, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 7)
}

func (s *DashboardService) Summary(ctx context.Context) (DashboardSummary, error) {
	if cached, ok := s.Cache.get(ctx); ok {
		return *cached, nil
	}

	start, end := WeekBounds(s.now(), s.Location)
	out := DashboardSummary{WeekStart: start, WeekEnd: end}

	g, gctx := errgroup.WithContext(ctx)
	countRooms := func(dst *int64, status models.RoomStatus) {
		g.Go(func() error {
			q := s.DB.WithContext(gctx).Model(&models.Room{})
			if status != "" {
				q = q.Where("status = ?", status)
			}
			return errors.Wrap(q.Count(dst).Error, "count rooms")
		})
	}
	countRooms(&out.TotalRooms, "")
	countRooms(&out.AvailableRooms, models.RoomAvailable)
	countRooms(&out.OccupiedRooms, models.RoomOccupied)
	countRooms(&out.CleaningRooms, models.RoomCleaning)

	g.Go(func() error {
		var row struct {
			Count int64
			Total decimal.NullDecimal
		}
		err := s.DB.WithContext(gctx).Model(&models.Reservation{}).
			Select("COUNT(*) AS count, SUM(total_cost) AS total").
			Where("check_in_at >= ? AND check_in_at < ?", start.UTC(), end.UTC()).
			Where("status <> ?", models.ReservationCancelled).
			Scan(&row).Error
		if err != nil {
			return errors.Wrap(err, "weekly reservations")
		}
		out.WeeklyBookings = row.Count
		out.WeeklyIncome = decimal.Zero
		if row.Total.Valid {
			out.WeeklyIncome = row.Total.Decimal.Round(2)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return DashboardSummary{}, err
	}

	s.Cache.set(ctx, out)
	return out, nil
}
