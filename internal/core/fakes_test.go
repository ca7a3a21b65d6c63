package core

import (
	"context"
	"errors"
	"fmt"

	"desafioconcurso-go/internal/auth"
	"desafioconcurso-go/internal/db"
	"desafioconcurso-go/internal/models"
)

// In-memory repository fakes shared across the service tests. They record
// calls so tests can assert on write order and payloads.

type fakeProfileRepo struct {
	profiles    map[string]*models.Profile
	created     []*models.Profile
	merged      []map[string]interface{}
	bioUpdates  []string
	getErr      error
	createErr   error
	bioErr      error
	listenCalls int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*models.Profile)}
}

func (f *fakeProfileRepo) GetByID(_ context.Context, uid string) (*models.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	profile, ok := f.profiles[uid]
	if !ok {
		return nil, fmt.Errorf("profile '%s': %w", uid, db.ErrNotFound)
	}
	return profile, nil
}

func (f *fakeProfileRepo) Create(_ context.Context, profile *models.Profile) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, profile)
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeProfileRepo) MergeFields(_ context.Context, uid string, fields map[string]interface{}) error {
	f.merged = append(f.merged, fields)
	return nil
}

func (f *fakeProfileRepo) UpdateBio(_ context.Context, uid, bio string) error {
	if f.bioErr != nil {
		return f.bioErr
	}
	f.bioUpdates = append(f.bioUpdates, bio)
	if profile, ok := f.profiles[uid]; ok {
		profile.Bio = bio
	}
	return nil
}

func (f *fakeProfileRepo) Listen(_ context.Context, uid string, fn func(*models.Profile)) (*db.Subscription, error) {
	f.listenCalls++
	fn(f.profiles[uid])
	return nil, nil
}

type fakeAuthProvider struct {
	identity  *auth.Identity
	signInErr error
	signUpErr error
}

func (f *fakeAuthProvider) SignIn(_ context.Context, email, password string) (*auth.Identity, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.identity, nil
}

func (f *fakeAuthProvider) SignUp(_ context.Context, displayName, email, password string) (*auth.Identity, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &auth.Identity{UID: "new-uid", DisplayName: displayName, Email: email}, nil
}

type fakeQuestionRepo struct {
	cards   map[string][]*models.Flashcard
	loadErr error
	loaded  []string
}

func (f *fakeQuestionRepo) LoadBySubject(_ context.Context, subject string) ([]*models.Flashcard, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	f.loaded = append(f.loaded, subject)
	return f.cards[subject], nil
}

type fakeAnswerRepo struct {
	events    []*models.AnswerEvent
	createErr error
}

func (f *fakeAnswerRepo) Create(_ context.Context, event *models.AnswerEvent) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.events = append(f.events, event)
	return fmt.Sprintf("event-%d", len(f.events)), nil
}

func (f *fakeAnswerRepo) ListByUser(_ context.Context, uid string) ([]*models.AnswerEvent, error) {
	var out []*models.AnswerEvent
	for _, event := range f.events {
		if event.UID == uid {
			out = append(out, event)
		}
	}
	return out, nil
}

type fakePrefs struct {
	lastSubject string
	setErr      error
}

func (f *fakePrefs) LastSubject() (string, bool) {
	return f.lastSubject, f.lastSubject != ""
}

func (f *fakePrefs) SetLastSubject(subject string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.lastSubject = subject
	return nil
}

type fakePostRepo struct {
	posts        []*models.Post
	comments     map[string][]*models.Comment
	listComments int
	createErr    error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{comments: make(map[string][]*models.Comment)}
}

func (f *fakePostRepo) Create(_ context.Context, post *models.Post) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	post.ID = fmt.Sprintf("post-%d", len(f.posts)+1)
	f.posts = append(f.posts, post)
	return post.ID, nil
}

func (f *fakePostRepo) ListenLatest(_ context.Context, limit int, fn func([]*models.Post, error)) (*db.Subscription, error) {
	if len(f.posts) > limit {
		fn(f.posts[:limit], nil)
	} else {
		fn(f.posts, nil)
	}
	return nil, nil
}

func (f *fakePostRepo) CreateComment(_ context.Context, postID string, comment *models.Comment) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	comment.ID = fmt.Sprintf("comment-%d", len(f.comments[postID])+1)
	f.comments[postID] = append(f.comments[postID], comment)
	return comment.ID, nil
}

func (f *fakePostRepo) ListComments(_ context.Context, postID string) ([]*models.Comment, error) {
	f.listComments++
	return f.comments[postID], nil
}

type fakeRequestRepo struct {
	requests    map[string]*models.FriendRequest
	friendships *fakeFriendshipRepo
	notices     []*models.Notification
	statusLog   []string
	createErr   error
	pendingErr  error
	acceptErr   error
	nextID      int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]*models.FriendRequest)}
}

func (f *fakeRequestRepo) Create(_ context.Context, fromUID, toUID string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	id := fmt.Sprintf("request-%d", f.nextID)
	f.requests[id] = &models.FriendRequest{ID: id, FromUID: fromUID, ToUID: toUID, Status: models.RequestPending}
	return id, nil
}

func (f *fakeRequestRepo) ListPendingFor(_ context.Context, uid string) ([]*models.FriendRequest, error) {
	var out []*models.FriendRequest
	for _, request := range f.requests {
		if request.ToUID == uid && request.Status == models.RequestPending {
			out = append(out, request)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) HasPendingBetween(_ context.Context, fromUID, toUID string) (bool, error) {
	if f.pendingErr != nil {
		return false, f.pendingErr
	}
	for _, request := range f.requests {
		if request.FromUID == fromUID && request.ToUID == toUID && request.Status == models.RequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRequestRepo) SetStatus(_ context.Context, requestID string, status models.RequestStatus) error {
	request, ok := f.requests[requestID]
	if !ok {
		return errors.New("request not found")
	}
	request.Status = status
	f.statusLog = append(f.statusLog, fmt.Sprintf("%s=%s", requestID, status))
	return nil
}

func (f *fakeRequestRepo) Accept(_ context.Context, request *models.FriendRequest, message string) error {
	if f.acceptErr != nil {
		return f.acceptErr
	}
	stored, ok := f.requests[request.ID]
	if !ok || stored.Status != models.RequestPending {
		return errors.New("request is not pending")
	}
	stored.Status = models.RequestAccepted
	if f.friendships != nil {
		f.friendships.seed(request.FromUID, request.ToUID)
	}
	f.notices = append(f.notices, &models.Notification{
		UID:     request.FromUID,
		Type:    models.NotificationFriendshipAccepted,
		Message: message,
	})
	return nil
}

type fakeFriendshipRepo struct {
	friendships map[string]*models.Friendship
	cleared     []string
}

func newFakeFriendshipRepo() *fakeFriendshipRepo {
	return &fakeFriendshipRepo{friendships: make(map[string]*models.Friendship)}
}

// seed plants a friendship document directly, standing in for a completed
// acceptance transaction.
func (f *fakeFriendshipRepo) seed(uidA, uidB string) {
	id := db.PairID(uidA, uidB)
	f.friendships[id] = &models.Friendship{ID: id, Users: []string{uidA, uidB}}
}

func (f *fakeFriendshipRepo) ListForUser(_ context.Context, uid string) ([]*models.Friendship, error) {
	var out []*models.Friendship
	for _, friendship := range f.friendships {
		for _, member := range friendship.Users {
			if member == uid {
				out = append(out, friendship)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeFriendshipRepo) ClearMembers(_ context.Context, friendshipID string) error {
	f.cleared = append(f.cleared, friendshipID)
	if friendship, ok := f.friendships[friendshipID]; ok {
		friendship.Users = []string{}
	}
	return nil
}
