package service

import (
	"context"
	"errors"

	"gymflow/gym-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccessService answers the gym door turnstile: may this member enter?
type AccessService interface {
	// VerifyMembership reports whether the member's subscription is
	// active. Unknown members are a plain deny, not an error.
	VerifyMembership(ctx context.Context, memberID primitive.ObjectID) (bool, error)

	// SetMembershipActive toggles a member's subscription state.
	SetMembershipActive(ctx context.Context, memberID primitive.ObjectID, active bool) error
}

type accessService struct {
	userRepo repository.UserRepository
}

// NewAccessService creates a new instance of accessService.
func NewAccessService(userRepo repository.UserRepository) AccessService {
	return &accessService{userRepo: userRepo}
}

func (s *accessService) VerifyMembership(ctx context.Context, memberID primitive.ObjectID) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.WithField("member", memberID.Hex()).Info("turnstile denied unknown member")
			return false, nil
		}
		return false, err
	}
	return user.MembershipActive, nil
}

func (s *accessService) SetMembershipActive(ctx context.Context, memberID primitive.ObjectID, active bool) error {
	err := s.userRepo.SetMembershipActive(ctx, memberID, active)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
