package core

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"desafioconcurso-go/internal/db"
	"desafioconcurso-go/internal/models"
)

// SocialService covers profile viewing and editing, the friend graph and the
// per-user answer statistics shown on profiles.
type SocialService struct {
	profiles    db.ProfileRepository
	requests    db.FriendRequestRepository
	friendships db.FriendshipRepository
	answers     db.AnswerRepository
	logger      *zap.Logger
}

func NewSocialService(
	profiles db.ProfileRepository,
	requests db.FriendRequestRepository,
	friendships db.FriendshipRepository,
	answers db.AnswerRepository,
	logger *zap.Logger,
) *SocialService {
	return &SocialService{
		profiles:    profiles,
		requests:    requests,
		friendships: friendships,
		answers:     answers,
		logger:      logger,
	}
}

// Statistics aggregates a user's full answer history, overall and broken down
// by subject. Values are recomputed from the event log on every request;
// nothing incremental is stored.
type Statistics struct {
	Total      int
	Correct    int
	Incorrect  int
	HitPercent int
	BySubject  map[string]SubjectStatistics
}

// SubjectStatistics is the per-subject slice of a user's answer history.
type SubjectStatistics struct {
	Total      int
	Correct    int
	Incorrect  int
	HitPercent int
}

// LoadProfile fetches any user's profile by UID.
func (s *SocialService) LoadProfile(ctx context.Context, uid string) (*models.Profile, error) {
	if uid == "" {
		return nil, validationErr("Check your input.")
	}
	profile, err := s.profiles.GetByID(ctx, uid)
	if err != nil {
		return nil, storageErr(err)
	}
	return profile, nil
}

// UpdateBio writes the caller's own bio. The text is trimmed and must be
// non-empty; only the profile owner edits it.
func (s *SocialService) UpdateBio(ctx context.Context, callerUID, profileUID, bio string) error {
	if callerUID == "" {
		return validationErr("Check that you are logged in.")
	}
	if callerUID != profileUID {
		return &UserError{Kind: KindPermission, Message: msgPermission}
	}
	trimmed := strings.TrimSpace(bio)
	if trimmed == "" {
		return validationErr("Write something for your bio.")
	}
	if err := s.profiles.UpdateBio(ctx, callerUID, trimmed); err != nil {
		return storageErr(err)
	}
	return nil
}

// AggregateStatistics recomputes the caller's hit rate over every answer event
// they have ever written. The percentage is rounded to the nearest integer and
// zero when no questions were answered.
func (s *SocialService) AggregateStatistics(ctx context.Context, uid string) (*Statistics, error) {
	events, err := s.answers.ListByUser(ctx, uid)
	if err != nil {
		return nil, storageErr(err)
	}

	stats := &Statistics{Total: len(events), BySubject: make(map[string]SubjectStatistics)}
	for _, event := range events {
		subject := stats.BySubject[event.Subject]
		subject.Total++
		if event.Correct {
			stats.Correct++
			subject.Correct++
		}
		subject.Incorrect = subject.Total - subject.Correct
		subject.HitPercent = hitPercent(subject.Correct, subject.Total)
		stats.BySubject[event.Subject] = subject
	}
	stats.Incorrect = stats.Total - stats.Correct
	stats.HitPercent = hitPercent(stats.Correct, stats.Total)
	return stats, nil
}

// hitPercent rounds 100*correct/total to the nearest integer, zero when no
// questions were answered.
func hitPercent(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// SendFriendRequest creates a pending request from the caller to another
// user. Self-requests and duplicate pending requests are rejected locally.
func (s *SocialService) SendFriendRequest(ctx context.Context, fromUID, toUID string) error {
	if fromUID == "" {
		return validationErr("Check that you are logged in.")
	}
	if toUID == "" || toUID == fromUID {
		return validationErr("Check your input.")
	}

	pending, err := s.requests.HasPendingBetween(ctx, fromUID, toUID)
	if err != nil {
		return storageErr(err)
	}
	if pending {
		return validationErr("A friend request is already pending.")
	}

	if _, err := s.requests.Create(ctx, fromUID, toUID); err != nil {
		return storageErr(err)
	}
	return nil
}

// PendingRequests lists the requests waiting on the caller, newest first,
// with requester profiles resolved for display.
func (s *SocialService) PendingRequests(ctx context.Context, uid string) ([]*models.FriendRequest, error) {
	requests, err := s.requests.ListPendingFor(ctx, uid)
	if err != nil {
		return nil, storageErr(err)
	}
	for _, request := range requests {
		profile, err := s.profiles.GetByID(ctx, request.FromUID)
		if err != nil {
			s.logger.Warn("failed to resolve requester profile",
				zap.String("uid", request.FromUID), zap.Error(err))
			continue
		}
		request.FromUser = profile
	}
	return requests, nil
}

// AcceptFriendRequest resolves a pending request: the request flips to
// accepted, the friendship document is written at the pair ID, and the
// requester is notified. The three writes run in a single transaction, so a
// failure leaves no accepted request without its friendship.
func (s *SocialService) AcceptFriendRequest(ctx context.Context, request *models.FriendRequest, accepterName string) error {
	if request == nil || request.ID == "" {
		return validationErr("Check your input.")
	}

	if accepterName == "" {
		accepterName = "Someone"
	}
	message := fmt.Sprintf("%s accepted your friend request!", accepterName)
	if err := s.requests.Accept(ctx, request, message); err != nil {
		s.logger.Error("failed to accept friend request",
			zap.String("requestId", request.ID), zap.Error(err))
		return storageErr(err)
	}
	return nil
}

// RejectFriendRequest flips a pending request to rejected. Nothing else is
// written.
func (s *SocialService) RejectFriendRequest(ctx context.Context, requestID string) error {
	if requestID == "" {
		return validationErr("Check your input.")
	}
	if err := s.requests.SetStatus(ctx, requestID, models.RequestRejected); err != nil {
		return storageErr(err)
	}
	return nil
}

// Friends resolves the caller's friendships into profile records. Friendships
// whose member set was cleared are skipped.
func (s *SocialService) Friends(ctx context.Context, uid string) ([]*models.Profile, error) {
	friendships, err := s.friendships.ListForUser(ctx, uid)
	if err != nil {
		return nil, storageErr(err)
	}

	friends := make([]*models.Profile, 0, len(friendships))
	for _, friendship := range friendships {
		otherUID := otherMember(friendship, uid)
		if otherUID == "" {
			continue
		}
		profile, err := s.profiles.GetByID(ctx, otherUID)
		if err != nil {
			s.logger.Warn("failed to resolve friend profile",
				zap.String("uid", otherUID), zap.Error(err))
			continue
		}
		friends = append(friends, profile)
	}
	return friends, nil
}

// RemoveFriend empties the member set of the pair's friendship document.
func (s *SocialService) RemoveFriend(ctx context.Context, uid, friendUID string) error {
	if uid == "" {
		return validationErr("Check that you are logged in.")
	}
	if friendUID == "" || friendUID == uid {
		return validationErr("Check your input.")
	}
	if err := s.friendships.ClearMembers(ctx, db.PairID(uid, friendUID)); err != nil {
		return storageErr(err)
	}
	return nil
}

func otherMember(friendship *models.Friendship, uid string) string {
	for _, member := range friendship.Users {
		if member != uid {
			return member
		}
	}
	return ""
}
