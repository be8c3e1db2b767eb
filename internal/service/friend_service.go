package service

import (
	"context"
	"errors"

	"gymflow/gym-app/internal/domain"
	"gymflow/gym-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrAlreadyFriends   = errors.New("users are already friends")
	ErrRequestPending   = errors.New("friend request already pending")
	ErrNoPendingRequest = errors.New("no pending friend request from that user")
	ErrSelfFriendship   = errors.New("cannot befriend yourself")
)

// FriendService manages the symmetric friendship edges that co-op
// completions require. An edge only exists once both sides carry it.
type FriendService interface {
	// RequestFriend records a pending request on the recipient.
	RequestFriend(ctx context.Context, fromUserID, toUserID primitive.ObjectID) error

	// AcceptFriend consumes a pending request and writes the edge on
	// both users.
	AcceptFriend(ctx context.Context, userID, fromUserID primitive.ObjectID) error

	// AreFriends reports whether the accepted edge exists on both sides.
	AreFriends(ctx context.Context, a, b primitive.ObjectID) (bool, error)

	// ListFriends returns the user's accepted friends.
	ListFriends(ctx context.Context, userID primitive.ObjectID) ([]domain.User, error)
}

type friendService struct {
	userRepo repository.UserRepository
}

// NewFriendService creates a new instance of friendService.
func NewFriendService(userRepo repository.UserRepository) FriendService {
	return &friendService{userRepo: userRepo}
}

func (s *friendService) RequestFriend(ctx context.Context, fromUserID, toUserID primitive.ObjectID) error {
	if fromUserID == toUserID {
		return ErrSelfFriendship
	}

	from, err := s.getUser(ctx, fromUserID)
	if err != nil {
		return err
	}
	to, err := s.getUser(ctx, toUserID)
	if err != nil {
		return err
	}

	if from.HasFriend(toUserID) && to.HasFriend(fromUserID) {
		return ErrAlreadyFriends
	}
	for _, pending := range to.PendingFriendRequests {
		if pending == fromUserID {
			return ErrRequestPending
		}
	}

	// A crossed request (the recipient already asked us) short-circuits
	// straight to acceptance.
	for _, pending := range from.PendingFriendRequests {
		if pending == toUserID {
			return s.AcceptFriend(ctx, fromUserID, toUserID)
		}
	}

	return s.userRepo.AddPendingFriendRequest(ctx, toUserID, fromUserID)
}

func (s *friendService) AcceptFriend(ctx context.Context, userID, fromUserID primitive.ObjectID) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	found := false
	for _, pending := range user.PendingFriendRequests {
		if pending == fromUserID {
			found = true
			break
		}
	}
	if !found {
		return ErrNoPendingRequest
	}

	if err := s.userRepo.RemovePendingFriendRequest(ctx, userID, fromUserID); err != nil {
		return err
	}
	// Both directions; the co-op check requires the edge on both users.
	return s.userRepo.AddFriendEdge(ctx, userID, fromUserID)
}

func (s *friendService) AreFriends(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	userA, err := s.getUser(ctx, a)
	if err != nil {
		return false, err
	}
	userB, err := s.getUser(ctx, b)
	if err != nil {
		return false, err
	}
	return userA.HasFriend(b) && userB.HasFriend(a), nil
}

func (s *friendService) ListFriends(ctx context.Context, userID primitive.ObjectID) ([]domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	friends := make([]domain.User, 0, len(user.Friends))
	for _, id := range user.Friends {
		friend, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue // deleted account, edge left dangling
			}
			return nil, err
		}
		friends = append(friends, *friend)
	}
	return friends, nil
}

func (s *friendService) getUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
