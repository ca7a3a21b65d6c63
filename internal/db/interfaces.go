package db

import (
	"context"

	"desafioconcurso-go/internal/models"
)

// ProfileRepository defines storage operations for user profile documents.
type ProfileRepository interface {
	GetByID(ctx context.Context, uid string) (*models.Profile, error)
	// Create writes a full profile document keyed by the auth UID.
	Create(ctx context.Context, profile *models.Profile) error
	// MergeFields merge-writes the given fields, creating the document if it
	// does not exist and leaving every other field untouched.
	MergeFields(ctx context.Context, uid string, fields map[string]interface{}) error
	UpdateBio(ctx context.Context, uid, bio string) error
	// Listen opens a live subscription on a profile document. The handler
	// receives nil when the document does not exist.
	Listen(ctx context.Context, uid string, fn func(*models.Profile)) (*Subscription, error)
}

// PostRepository defines storage operations for forum posts and their nested
// comments.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) (string, error)
	// ListenLatest opens a live subscription on the most recent posts,
	// ordered by creation time descending and capped at limit.
	ListenLatest(ctx context.Context, limit int, fn func([]*models.Post, error)) (*Subscription, error)
	CreateComment(ctx context.Context, postID string, comment *models.Comment) (string, error)
	// ListComments fetches a post's comments ordered by creation time ascending.
	ListComments(ctx context.Context, postID string) ([]*models.Comment, error)
}

// AnswerRepository defines storage operations for the append-only answer
// event collection.
type AnswerRepository interface {
	Create(ctx context.Context, event *models.AnswerEvent) (string, error)
	// ListByUser fetches all of a user's answer events, newest first.
	ListByUser(ctx context.Context, uid string) ([]*models.AnswerEvent, error)
}

// FriendRequestRepository defines storage operations for friend requests.
type FriendRequestRepository interface {
	Create(ctx context.Context, fromUID, toUID string) (string, error)
	ListPendingFor(ctx context.Context, uid string) ([]*models.FriendRequest, error)
	HasPendingBetween(ctx context.Context, fromUID, toUID string) (bool, error)
	SetStatus(ctx context.Context, requestID string, status models.RequestStatus) error
	// Accept resolves a pending request atomically: the status flips to
	// accepted, the friendship document is upserted at the sorted-pair ID and
	// the requester is notified. No partial state survives a failure.
	Accept(ctx context.Context, request *models.FriendRequest, message string) error
}

// FriendshipRepository defines storage operations for friendship documents,
// keyed by the sorted pair of the two member UIDs. Friendship creation has no
// standalone write; the document is only ever written inside the
// friend-request acceptance transaction.
type FriendshipRepository interface {
	ListForUser(ctx context.Context, uid string) ([]*models.Friendship, error)
	// ClearMembers overwrites the member set to empty. The document itself is
	// kept so a later re-friending reuses the same pair ID.
	ClearMembers(ctx context.Context, friendshipID string) error
}

// QuestionRepository reads externally sourced flashcard collections.
type QuestionRepository interface {
	// LoadBySubject resolves the subject label to its question collection and
	// loads the full set. An empty result is not an error.
	LoadBySubject(ctx context.Context, subject string) ([]*models.Flashcard, error)
}
