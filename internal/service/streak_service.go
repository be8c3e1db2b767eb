package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gymflow/gym-app/internal/domain"
	"gymflow/gym-app/internal/repository"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// streakLookbackDays bounds the backward walk so an ancient,
	// never-broken streak cannot turn into an unbounded scan.
	streakLookbackDays = 365

	// maxEmptyRun is how many consecutive rest/empty days a client
	// streak survives before it breaks.
	maxEmptyRun = 3

	streakCacheExpireSeconds = 60
)

// StreakResult is the computed streak for one owner.
type StreakResult struct {
	Streak     int       `json:"streak"`
	ComputedAt time.Time `json:"computedAt"`
}

// StreakService computes consecutive-workout streaks by walking the
// schedule backwards from today.
type StreakService interface {
	GetStreak(ctx context.Context, kind domain.OwnerKind, ownerID primitive.ObjectID) (*StreakResult, error)
}

type streakService struct {
	scheduleRepo repository.ScheduleRepository
	cache        *freecache.Cache
	now          func() time.Time
}

// NewStreakService creates a new instance of streakService. The cache
// is optional; pass nil to compute every call.
func NewStreakService(scheduleRepo repository.ScheduleRepository, cache *freecache.Cache) StreakService {
	return &streakService{
		scheduleRepo: scheduleRepo,
		cache:        cache,
		now:          time.Now,
	}
}

// GetStreak returns the current streak, served from cache when a fresh
// value exists. The cache is purely advisory: a miss or a decode
// failure falls through to a full recompute.
func (s *streakService) GetStreak(ctx context.Context, kind domain.OwnerKind, ownerID primitive.ObjectID) (*StreakResult, error) {
	today := domain.DayOf(s.now())
	cacheKey := []byte(fmt.Sprintf("streak:%s:%s:%s", kind, ownerID.Hex(), today.Format("2006-01-02")))

	if s.cache != nil {
		if raw, err := s.cache.Get(cacheKey); err == nil {
			var cached StreakResult
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	streak, err := s.computeStreak(ctx, kind, ownerID, today)
	if err != nil {
		return nil, err
	}

	result := &StreakResult{Streak: streak, ComputedAt: s.now()}
	if s.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(cacheKey, raw, streakCacheExpireSeconds); err != nil {
				log.WithError(err).Warn("failed to cache streak")
			}
		}
	}
	return result, nil
}

// computeStreak walks backwards one day at a time.
//
// Client rules: a day whose workout entries are all completed extends
// the streak. A past day with an incomplete workout breaks it. Today
// with an incomplete workout neither counts nor breaks, since the day
// is still open. Days without workout entries are tolerated up to
// maxEmptyRun in a row before the streak breaks.
//
// Trainer rules are the same minus the empty-day limit: trainers plan
// around irregular client bookings, so gaps of any length are skipped
// until the lookback window runs out.
func (s *streakService) computeStreak(ctx context.Context, kind domain.OwnerKind, ownerID primitive.ObjectID, today time.Time) (int, error) {
	// One range query instead of 365 point reads.
	from := today.AddDate(0, 0, -streakLookbackDays)
	entries, err := s.scheduleRepo.ListByOwnerAndDateRange(ctx, kind, ownerID, from, today)
	if err != nil {
		return 0, err
	}

	type dayState struct {
		hasWorkout   bool
		allCompleted bool
	}
	days := make(map[time.Time]*dayState)
	for i := range entries {
		if !entries[i].IsWorkout() {
			continue
		}
		d := domain.DayOf(entries[i].Date)
		st, ok := days[d]
		if !ok {
			st = &dayState{hasWorkout: true, allCompleted: true}
			days[d] = st
		}
		if !entries[i].Completed {
			st.allCompleted = false
		}
	}

	streak := 0
	emptyRun := 0
	for offset := 0; offset <= streakLookbackDays; offset++ {
		day := today.AddDate(0, 0, -offset)
		st := days[day]

		if st == nil || !st.hasWorkout {
			if offset == 0 {
				// Today is still open: an empty today neither counts
				// toward the gap limit nor breaks, the same way an
				// unfinished workout today is ignored.
				continue
			}
			emptyRun++
			if kind == domain.OwnerClient && emptyRun > maxEmptyRun {
				break
			}
			continue
		}

		if !st.allCompleted {
			if offset == 0 {
				continue // today's workout may yet be finished
			}
			break
		}

		streak++
		emptyRun = 0
	}
	return streak, nil
}
