package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"desafioconcurso-go/internal/db"
	"desafioconcurso-go/internal/models"
)

type socialFixture struct {
	service     *SocialService
	profiles    *fakeProfileRepo
	requests    *fakeRequestRepo
	friendships *fakeFriendshipRepo
	answers     *fakeAnswerRepo
}

func newSocialFixture() *socialFixture {
	profiles := newFakeProfileRepo()
	friendships := newFakeFriendshipRepo()
	requests := newFakeRequestRepo()
	requests.friendships = friendships
	answers := &fakeAnswerRepo{}
	return &socialFixture{
		service:     NewSocialService(profiles, requests, friendships, answers, zap.NewNop()),
		profiles:    profiles,
		requests:    requests,
		friendships: friendships,
		answers:     answers,
	}
}

func TestUpdateBioOwnerOnly(t *testing.T) {
	f := newSocialFixture()
	f.profiles.profiles["uid-1"] = &models.Profile{ID: "uid-1"}

	err := f.service.UpdateBio(context.Background(), "uid-2", "uid-1", "nova bio")

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, KindPermission, userErr.Kind)
	assert.Empty(t, f.profiles.bioUpdates)
}

func TestUpdateBioTrimsAndRejectsEmpty(t *testing.T) {
	f := newSocialFixture()
	f.profiles.profiles["uid-1"] = &models.Profile{ID: "uid-1"}

	require.NoError(t, f.service.UpdateBio(context.Background(), "uid-1", "uid-1", "  estudando muito  "))
	require.Equal(t, []string{"estudando muito"}, f.profiles.bioUpdates)

	err := f.service.UpdateBio(context.Background(), "uid-1", "uid-1", "   ")
	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, KindValidation, userErr.Kind)
}

func TestAggregateStatistics(t *testing.T) {
	f := newSocialFixture()
	f.answers.events = []*models.AnswerEvent{
		{UID: "uid-1", Subject: "Matemática", Correct: true},
		{UID: "uid-1", Subject: "Matemática", Correct: true},
		{UID: "uid-1", Subject: "Português", Correct: false},
		{UID: "uid-other", Subject: "Matemática", Correct: true},
	}

	stats, err := f.service.AggregateStatistics(context.Background(), "uid-1")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Correct)
	assert.Equal(t, 1, stats.Incorrect)
	assert.Equal(t, 67, stats.HitPercent)

	assert.Equal(t, SubjectStatistics{Total: 2, Correct: 2, HitPercent: 100}, stats.BySubject["Matemática"])
	assert.Equal(t, SubjectStatistics{Total: 1, Incorrect: 1}, stats.BySubject["Português"])
}

func TestAggregateStatisticsNoAnswers(t *testing.T) {
	f := newSocialFixture()

	stats, err := f.service.AggregateStatistics(context.Background(), "uid-1")
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.HitPercent)
	assert.Empty(t, stats.BySubject)
}

func TestSendFriendRequest(t *testing.T) {
	f := newSocialFixture()

	require.NoError(t, f.service.SendFriendRequest(context.Background(), "uid-1", "uid-2"))
	require.Len(t, f.requests.requests, 1)

	err := f.service.SendFriendRequest(context.Background(), "uid-1", "uid-2")
	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, KindValidation, userErr.Kind)
	assert.Len(t, f.requests.requests, 1, "duplicate pending request must not be written")
}

func TestSendFriendRequestToSelf(t *testing.T) {
	f := newSocialFixture()

	err := f.service.SendFriendRequest(context.Background(), "uid-1", "uid-1")

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, KindValidation, userErr.Kind)
}

func TestPendingRequestsResolvesRequesters(t *testing.T) {
	f := newSocialFixture()
	f.profiles.profiles["uid-1"] = &models.Profile{ID: "uid-1", DisplayName: "Ana"}
	_, err := f.requests.Create(context.Background(), "uid-1", "uid-2")
	require.NoError(t, err)
	_, err = f.requests.Create(context.Background(), "uid-ghost", "uid-2")
	require.NoError(t, err)

	pending, err := f.service.PendingRequests(context.Background(), "uid-2")
	require.NoError(t, err)
	require.Len(t, pending, 2)

	byFrom := make(map[string]*models.FriendRequest, len(pending))
	for _, request := range pending {
		byFrom[request.FromUID] = request
	}
	require.NotNil(t, byFrom["uid-1"].FromUser)
	assert.Equal(t, "Ana", byFrom["uid-1"].FromUser.DisplayName)
	assert.Nil(t, byFrom["uid-ghost"].FromUser)
}

func TestAcceptFriendRequestWritesAllThree(t *testing.T) {
	f := newSocialFixture()
	id, err := f.requests.Create(context.Background(), "uid-1", "uid-2")
	require.NoError(t, err)
	request := f.requests.requests[id]

	require.NoError(t, f.service.AcceptFriendRequest(context.Background(), request, "Bruna"))

	assert.Equal(t, models.RequestAccepted, f.requests.requests[id].Status)

	pairID := db.PairID("uid-1", "uid-2")
	friendship, ok := f.friendships.friendships[pairID]
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"uid-1", "uid-2"}, friendship.Users)

	require.Len(t, f.requests.notices, 1)
	notification := f.requests.notices[0]
	assert.Equal(t, "uid-1", notification.UID)
	assert.Equal(t, models.NotificationFriendshipAccepted, notification.Type)
	assert.Equal(t, "Bruna accepted your friend request!", notification.Message)
}

func TestAcceptFriendRequestAnonymousAccepter(t *testing.T) {
	f := newSocialFixture()
	id, err := f.requests.Create(context.Background(), "uid-1", "uid-2")
	require.NoError(t, err)

	require.NoError(t, f.service.AcceptFriendRequest(context.Background(), f.requests.requests[id], ""))

	require.Len(t, f.requests.notices, 1)
	assert.Equal(t, "Someone accepted your friend request!", f.requests.notices[0].Message)
}

func TestAcceptFriendRequestFailureLeavesNothingBehind(t *testing.T) {
	f := newSocialFixture()
	id, err := f.requests.Create(context.Background(), "uid-1", "uid-2")
	require.NoError(t, err)
	f.requests.acceptErr = assert.AnError

	err = f.service.AcceptFriendRequest(context.Background(), f.requests.requests[id], "Bruna")
	require.Error(t, err)

	assert.Equal(t, models.RequestPending, f.requests.requests[id].Status)
	assert.Empty(t, f.friendships.friendships)
	assert.Empty(t, f.requests.notices)
}

func TestAcceptFriendRequestAlreadyResolved(t *testing.T) {
	f := newSocialFixture()
	id, err := f.requests.Create(context.Background(), "uid-1", "uid-2")
	require.NoError(t, err)
	request := f.requests.requests[id]
	require.NoError(t, f.service.AcceptFriendRequest(context.Background(), request, "Bruna"))

	err = f.service.AcceptFriendRequest(context.Background(), request, "Bruna")
	require.Error(t, err)
	assert.Len(t, f.requests.notices, 1, "a resolved request must not be resolved twice")
}

func TestRejectFriendRequest(t *testing.T) {
	f := newSocialFixture()
	id, err := f.requests.Create(context.Background(), "uid-1", "uid-2")
	require.NoError(t, err)

	require.NoError(t, f.service.RejectFriendRequest(context.Background(), id))

	assert.Equal(t, models.RequestRejected, f.requests.requests[id].Status)
	assert.Empty(t, f.friendships.friendships)
	assert.Empty(t, f.requests.notices)
}

func TestFriendsResolvesProfilesAndSkipsCleared(t *testing.T) {
	f := newSocialFixture()
	f.profiles.profiles["uid-2"] = &models.Profile{ID: "uid-2", DisplayName: "Carla"}
	f.friendships.seed("uid-1", "uid-2")
	f.friendships.seed("uid-1", "uid-3")
	require.NoError(t, f.friendships.ClearMembers(context.Background(), db.PairID("uid-1", "uid-3")))

	friends, err := f.service.Friends(context.Background(), "uid-1")
	require.NoError(t, err)

	require.Len(t, friends, 1)
	assert.Equal(t, "Carla", friends[0].DisplayName)
}

func TestRemoveFriendClearsPairDocument(t *testing.T) {
	f := newSocialFixture()
	f.friendships.seed("uid-2", "uid-1")

	require.NoError(t, f.service.RemoveFriend(context.Background(), "uid-1", "uid-2"))

	assert.Equal(t, []string{"uid-1_uid-2"}, f.friendships.cleared)
	assert.Empty(t, f.friendships.friendships["uid-1_uid-2"].Users)
}
