package service

import (
	"context"
	"testing"

	"gymflow/gym-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendship_RequestThenAccept(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewFriendService(users)
	a := users.add(&domain.User{Role: domain.RoleClient})
	b := users.add(&domain.User{Role: domain.RoleClient})

	require.NoError(t, svc.RequestFriend(context.Background(), a.ID, b.ID))

	ok, err := svc.AreFriends(context.Background(), a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok, "pending is not accepted")

	require.NoError(t, svc.AcceptFriend(context.Background(), b.ID, a.ID))

	ok, err = svc.AreFriends(context.Background(), a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, b.PendingFriendRequests)
}

func TestFriendship_CrossedRequestsAutoAccept(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewFriendService(users)
	a := users.add(&domain.User{Role: domain.RoleClient})
	b := users.add(&domain.User{Role: domain.RoleClient})

	require.NoError(t, svc.RequestFriend(context.Background(), a.ID, b.ID))
	// B requesting back completes the edge without an explicit accept.
	require.NoError(t, svc.RequestFriend(context.Background(), b.ID, a.ID))

	ok, err := svc.AreFriends(context.Background(), a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFriendship_Rejections(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewFriendService(users)
	a := users.add(&domain.User{Role: domain.RoleClient})
	b := users.add(&domain.User{Role: domain.RoleClient})

	assert.ErrorIs(t, svc.RequestFriend(context.Background(), a.ID, a.ID), ErrSelfFriendship)
	assert.ErrorIs(t, svc.AcceptFriend(context.Background(), b.ID, a.ID), ErrNoPendingRequest)

	require.NoError(t, svc.RequestFriend(context.Background(), a.ID, b.ID))
	assert.ErrorIs(t, svc.RequestFriend(context.Background(), a.ID, b.ID), ErrRequestPending)

	require.NoError(t, svc.AcceptFriend(context.Background(), b.ID, a.ID))
	assert.ErrorIs(t, svc.RequestFriend(context.Background(), a.ID, b.ID), ErrAlreadyFriends)
}

func TestListFriends_SkipsDeletedAccounts(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewFriendService(users)
	a := users.add(&domain.User{Role: domain.RoleClient})
	b := users.add(&domain.User{Role: domain.RoleClient, Name: "Bea"})
	ghost := users.add(&domain.User{Role: domain.RoleClient})

	require.NoError(t, users.AddFriendEdge(context.Background(), a.ID, b.ID))
	require.NoError(t, users.AddFriendEdge(context.Background(), a.ID, ghost.ID))
	delete(users.users, ghost.ID)

	friends, err := svc.ListFriends(context.Background(), a.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, b.ID, friends[0].ID)
}
