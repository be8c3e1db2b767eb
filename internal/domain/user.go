package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleOwner   Role = "owner"
	RoleTrainer Role = "trainer"
	RoleClient  Role = "client"
)

// User represents a user in the system (gym owner, trainer or client).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Gems are the in-app currency awarded for completed workouts.
	Gems int `bson:"gems" json:"gems"`

	// Friends holds accepted friendship edges. The edge is symmetric:
	// a is in b's list iff b is in a's list. Pending requests live in
	// PendingFriendRequests until accepted.
	Friends               []primitive.ObjectID `bson:"friends,omitempty" json:"friends,omitempty"`
	PendingFriendRequests []primitive.ObjectID `bson:"pendingFriendRequests,omitempty" json:"pendingFriendRequests,omitempty"`

	// MembershipActive gates the turnstile/shower access verify endpoint.
	MembershipActive bool `bson:"membershipActive" json:"membershipActive"`

	// --- Trainer-specific ---
	// Stores ObjectIDs of Clients managed by this Trainer.
	ClientIDs []primitive.ObjectID `bson:"clientIds,omitempty" json:"clientIds,omitempty"`

	// --- Client-specific ---
	// Stores the ObjectID of the Trainer managing this Client.
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

// HasFriend reports whether the given user is an accepted friend.
func (u *User) HasFriend(other primitive.ObjectID) bool {
	for _, f := range u.Friends {
		if f == other {
			return true
		}
	}
	return false
}
