package service

import (
	"context"
	"errors"
	"time"

	"gymflow/gym-app/internal/domain"
	"gymflow/gym-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrClientNotFound        = errors.New("client user not found")
	ErrClientNotRole         = errors.New("user found but is not a client")
	ErrClientAlreadyAssigned = errors.New("client is already assigned to a trainer")
	ErrClientNotManaged      = errors.New("client is not managed by this trainer")
)

// TrainerService covers the trainer's roster and client-progress views.
type TrainerService interface {
	// Client Management
	AddClientByEmail(ctx context.Context, trainerID primitive.ObjectID, clientEmail string) (*domain.User, error)
	GetManagedClients(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)

	// GetClientLogs returns a managed client's logged sets over a date
	// range, for progress review.
	GetClientLogs(ctx context.Context, trainerID, clientID primitive.ObjectID, from, to time.Time) ([]domain.ExerciseLogEntry, error)
}

// trainerService implements the TrainerService interface.
type trainerService struct {
	userRepo repository.UserRepository
	logRepo  repository.ExerciseLogRepository
}

// NewTrainerService creates a new instance of trainerService.
func NewTrainerService(userRepo repository.UserRepository, logRepo repository.ExerciseLogRepository) TrainerService {
	return &trainerService{
		userRepo: userRepo,
		logRepo:  logRepo,
	}
}

// AddClientByEmail finds a client by email and assigns them to the trainer.
func (s *trainerService) AddClientByEmail(ctx context.Context, trainerID primitive.ObjectID, clientEmail string) (*domain.User, error) {
	// 1. Validate input
	if trainerID == primitive.NilObjectID || clientEmail == "" {
		return nil, errors.New("trainer ID and client email are required")
	}

	// 2. Find the potential client user
	client, err := s.userRepo.GetByEmail(ctx, clientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	// 3. Verify the user is actually a client
	if client.Role != domain.RoleClient {
		return nil, ErrClientNotRole
	}

	// 4. Check if the client is already assigned to a trainer
	if client.TrainerID != nil && *client.TrainerID != primitive.NilObjectID {
		if *client.TrainerID == trainerID {
			// Already managed by this trainer; idempotent success.
			return client, nil
		}
		return nil, ErrClientAlreadyAssigned
	}

	// 5. Link both records
	if err := s.userRepo.AddClientIDToTrainer(ctx, trainerID, client.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetTrainerForClient(ctx, client.ID, trainerID); err != nil {
		return nil, err
	}

	client.TrainerID = &trainerID
	return client, nil
}

// GetManagedClients retrieves the list of clients managed by the trainer.
func (s *trainerService) GetManagedClients(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	clients, err := s.userRepo.GetClientsByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	if clients == nil {
		clients = []domain.User{}
	}
	return clients, nil
}

// GetClientLogs returns a managed client's set logs for a date range.
func (s *trainerService) GetClientLogs(ctx context.Context, trainerID, clientID primitive.ObjectID, from, to time.Time) ([]domain.ExerciseLogEntry, error) {
	if err := s.verifyManages(ctx, trainerID, clientID); err != nil {
		return nil, err
	}
	entries, err := s.logRepo.ListByOwnerAndDateRange(ctx, clientID, domain.DayOf(from), domain.DayOf(to))
	if err != nil {
		return nil, err
	}
	return BackfillSets(entries), nil
}

// verifyManages checks the trainer/client link from the client's side.
func (s *trainerService) verifyManages(ctx context.Context, trainerID, clientID primitive.ObjectID) error {
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClientNotFound
		}
		return err
	}
	if client.TrainerID == nil || *client.TrainerID != trainerID {
		return ErrClientNotManaged
	}
	return nil
}
