package service

import (
	"context"
	"errors"
	"math"
	"time"

	"gymflow/gym-app/internal/domain"
	"gymflow/gym-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Health score component weights. Calories and protein dominate; carbs
// and fat act as tie-breakers.
const (
	weightCalories = 0.45
	weightProtein  = 0.35
	weightCarbs    = 0.10
	weightFat      = 0.10
)

// DailyScore is one day of the weekly health-score view.
type DailyScore struct {
	Date  time.Time `json:"date"`
	Score int       `json:"score"`
	Today bool      `json:"today"`
}

// DietService tracks daily macro intake against targets and turns the
// ratio into a 0-100 health score. Day boundaries are handled lazily:
// the first access on a new calendar day archives the previous day
// into an immutable summary and zeroes the running counters.
type DietService interface {
	// GetSettings returns the client's counters and targets for today,
	// rolling the day over first when needed.
	GetSettings(ctx context.Context, clientID primitive.ObjectID) (*domain.DietSettings, error)

	// UpdateTargets replaces the client's macro targets.
	UpdateTargets(ctx context.Context, clientID primitive.ObjectID, target domain.MacroSet) (*domain.DietSettings, error)

	// AddIntake increments today's running counters.
	AddIntake(ctx context.Context, clientID primitive.ObjectID, intake domain.MacroSet) (*domain.DietSettings, error)

	// GetHealthScore returns today's live score.
	GetHealthScore(ctx context.Context, clientID primitive.ObjectID) (int, error)

	// GetWeeklyHealthScores returns seven scores for the Monday-anchored
	// week containing today. Past days come from archived summaries,
	// today is computed live, future days are zero.
	GetWeeklyHealthScores(ctx context.Context, clientID primitive.ObjectID) ([]DailyScore, error)
}

type dietService struct {
	dietRepo repository.DietRepository
	now      func() time.Time
}

// NewDietService creates a new instance of dietService.
func NewDietService(dietRepo repository.DietRepository) DietService {
	return &dietService{dietRepo: dietRepo, now: time.Now}
}

func (s *dietService) GetSettings(ctx context.Context, clientID primitive.ObjectID) (*domain.DietSettings, error) {
	return s.loadRolledOver(ctx, clientID)
}

func (s *dietService) UpdateTargets(ctx context.Context, clientID primitive.ObjectID, target domain.MacroSet) (*domain.DietSettings, error) {
	settings, err := s.loadRolledOver(ctx, clientID)
	if err != nil {
		return nil, err
	}
	settings.Target = target
	settings.UpdatedAt = s.now()
	if err := s.dietRepo.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *dietService) AddIntake(ctx context.Context, clientID primitive.ObjectID, intake domain.MacroSet) (*domain.DietSettings, error) {
	settings, err := s.loadRolledOver(ctx, clientID)
	if err != nil {
		return nil, err
	}
	settings.Current.Calories += intake.Calories
	settings.Current.Protein += intake.Protein
	settings.Current.Carbs += intake.Carbs
	settings.Current.Fat += intake.Fat
	settings.Current.Hydration += intake.Hydration
	settings.UpdatedAt = s.now()
	if err := s.dietRepo.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *dietService) GetHealthScore(ctx context.Context, clientID primitive.ObjectID) (int, error) {
	settings, err := s.loadRolledOver(ctx, clientID)
	if err != nil {
		return 0, err
	}
	return HealthScore(settings.Current, settings.Target), nil
}

func (s *dietService) GetWeeklyHealthScores(ctx context.Context, clientID primitive.ObjectID) ([]DailyScore, error) {
	settings, err := s.loadRolledOver(ctx, clientID)
	if err != nil {
		return nil, err
	}

	today := domain.DayOf(s.now())
	monday := mondayOf(today)
	sunday := monday.AddDate(0, 0, 6)

	summaries, err := s.dietRepo.ListSummariesInRange(ctx, clientID, monday, sunday)
	if err != nil {
		return nil, err
	}
	byDate := make(map[time.Time]domain.DailyDietSummary, len(summaries))
	for _, sum := range summaries {
		byDate[domain.DayOf(sum.Date)] = sum
	}

	scores := make([]DailyScore, 0, 7)
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		ds := DailyScore{Date: day}
		switch {
		case day.Equal(today):
			ds.Score = HealthScore(settings.Current, settings.Target)
			ds.Today = true
		case day.Before(today):
			if sum, ok := byDate[day]; ok {
				ds.Score = sum.Score
			}
			// No summary means no data was recorded; score stays 0.
		}
		scores = append(scores, ds)
	}
	return scores, nil
}

// loadRolledOver fetches (or initializes) the client's settings and
// applies the lazy day rollover.
func (s *dietService) loadRolledOver(ctx context.Context, clientID primitive.ObjectID) (*domain.DietSettings, error) {
	today := domain.DayOf(s.now())

	settings, err := s.dietRepo.GetSettings(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		settings = &domain.DietSettings{
			ClientID:      clientID,
			LastResetDate: today,
			UpdatedAt:     s.now(),
		}
		if err := s.dietRepo.SaveSettings(ctx, settings); err != nil {
			return nil, err
		}
		return settings, nil
	}
	if err != nil {
		return nil, err
	}

	last := domain.DayOf(settings.LastResetDate)
	if !last.Before(today) {
		return settings, nil
	}

	// Archive the finished day before zeroing, but only if anything
	// was actually tracked. Days with zero recorded calories leave no
	// summary behind.
	if settings.Current.Calories > 0 {
		summary := &domain.DailyDietSummary{
			ClientID:  clientID,
			Date:      last,
			Current:   settings.Current,
			Target:    settings.Target,
			Score:     HealthScore(settings.Current, settings.Target),
			CreatedAt: s.now(),
		}
		if err := s.dietRepo.InsertSummary(ctx, summary); err != nil {
			if !errors.Is(err, repository.ErrDuplicate) {
				return nil, err
			}
			// A concurrent request already archived this day. The
			// unique (client, date) index makes the race harmless.
			log.WithField("client", clientID.Hex()).Debug("diet summary already archived")
		}
	}

	settings.Current = domain.MacroSet{}
	settings.LastResetDate = today
	settings.UpdatedAt = s.now()
	if err := s.dietRepo.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// HealthScore computes the weighted 0-100 adherence score. Each
// component is capped at 100 so overeating one macro cannot compensate
// for missing another. A macro with no target contributes nothing.
func HealthScore(current, target domain.MacroSet) int {
	score := weightCalories*componentScore(current.Calories, target.Calories) +
		weightProtein*componentScore(current.Protein, target.Protein) +
		weightCarbs*componentScore(current.Carbs, target.Carbs) +
		weightFat*componentScore(current.Fat, target.Fat)
	return int(math.Round(score))
}

func componentScore(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Min(100, current/target*100)
}

// mondayOf returns the Monday of the week containing day.
func mondayOf(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}
