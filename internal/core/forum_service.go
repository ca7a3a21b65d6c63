package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"desafioconcurso-go/internal/db"
	"desafioconcurso-go/internal/models"
)

const (
	feedLimit     = 50
	maxPostLen    = 500
	maxCommentLen = 200

	anonymousAuthor = "Anonymous"
)

// ForumService runs the live forum feed and the post/comment write paths.
// Content is redacted before storage, never on read: whatever is persisted is
// already clean.
type ForumService struct {
	posts    db.PostRepository
	profiles db.ProfileRepository
	logger   *zap.Logger

	mu       sync.Mutex
	authors  map[string]*models.Profile
	comments map[string][]*models.Comment
}

func NewForumService(posts db.PostRepository, profiles db.ProfileRepository, logger *zap.Logger) *ForumService {
	return &ForumService{
		posts:    posts,
		profiles: profiles,
		logger:   logger,
		authors:  make(map[string]*models.Profile),
		comments: make(map[string][]*models.Comment),
	}
}

// WatchFeed opens a live subscription on the newest posts. Every snapshot is
// delivered with author profiles resolved; a missing or unreadable author
// leaves Author nil and the presentation name falls back to Anonymous.
func (f *ForumService) WatchFeed(ctx context.Context, fn func([]*models.Post, error)) (*db.Subscription, error) {
	sub, err := f.posts.ListenLatest(ctx, feedLimit, func(posts []*models.Post, listenErr error) {
		if listenErr != nil {
			fn(nil, storageErr(listenErr))
			return
		}
		f.resolveAuthors(ctx, posts)
		fn(posts, nil)
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return sub, nil
}

// CreatePost validates, redacts and stores a new post. Posting requires an
// identity with a display name and a selected subject; empty or
// whitespace-only content is rejected. All checks run before any write
// happens.
func (f *ForumService) CreatePost(ctx context.Context, uid, displayName, subject, content string) error {
	if uid == "" || displayName == "" {
		return validationErr("Check that you are logged in.")
	}
	if subject == "" {
		return validationErr("Pick a subject for your post.")
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return validationErr("Write something before posting.")
	}
	if utf8.RuneCountInString(trimmed) > maxPostLen {
		return validationErr(fmt.Sprintf("Posts are limited to %d characters.", maxPostLen))
	}

	post := &models.Post{
		UID:     uid,
		Subject: subject,
		Content: Redact(trimmed),
	}
	if _, err := f.posts.Create(ctx, post); err != nil {
		return storageErr(err)
	}
	return nil
}

// Comments returns a post's comment thread oldest-first. Threads are fetched
// once per post and then served from cache; comments written through this
// service are appended to the cached thread.
func (f *ForumService) Comments(ctx context.Context, postID string) ([]*models.Comment, error) {
	f.mu.Lock()
	cached, ok := f.comments[postID]
	f.mu.Unlock()
	if ok {
		return cached, nil
	}

	comments, err := f.posts.ListComments(ctx, postID)
	if err != nil {
		return nil, storageErr(err)
	}

	f.resolveCommentAuthors(ctx, comments)

	f.mu.Lock()
	f.comments[postID] = comments
	f.mu.Unlock()
	return comments, nil
}

// CreateComment validates, redacts and stores a comment under a post, then
// appends it to the cached thread so the next Comments call sees it without a
// refetch.
func (f *ForumService) CreateComment(ctx context.Context, postID, uid, content string) error {
	if uid == "" {
		return validationErr("Check that you are logged in.")
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return validationErr("Write something before commenting.")
	}
	if utf8.RuneCountInString(trimmed) > maxCommentLen {
		return validationErr(fmt.Sprintf("Comments are limited to %d characters.", maxCommentLen))
	}

	comment := &models.Comment{
		UID:     uid,
		Content: Redact(trimmed),
	}
	commentID, err := f.posts.CreateComment(ctx, postID, comment)
	if err != nil {
		return storageErr(err)
	}
	comment.ID = commentID
	// The stored timestamp is server-side; approximate it locally for the
	// cached copy.
	comment.CreatedAt = time.Now()
	comment.Author = f.authorProfile(ctx, uid)

	f.mu.Lock()
	if cached, ok := f.comments[postID]; ok {
		f.comments[postID] = append(cached, comment)
	}
	f.mu.Unlock()
	return nil
}

// AuthorName returns the display name shown for a post or comment author.
func AuthorName(author *models.Profile) string {
	if author == nil || author.DisplayName == "" {
		return anonymousAuthor
	}
	return author.DisplayName
}

// RelativeTime renders a timestamp as a coarse age relative to now:
// "agora" under a minute, then whole minutes, hours and days.
func RelativeTime(ts, now time.Time) string {
	elapsed := now.Sub(ts)
	switch {
	case elapsed < time.Minute:
		return "agora"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dmin", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh", int(elapsed.Hours()))
	default:
		return fmt.Sprintf("%dd", int(elapsed.Hours()/24))
	}
}

func (f *ForumService) resolveAuthors(ctx context.Context, posts []*models.Post) {
	for _, post := range posts {
		post.Author = f.authorProfile(ctx, post.UID)
	}
}

func (f *ForumService) resolveCommentAuthors(ctx context.Context, comments []*models.Comment) {
	for _, comment := range comments {
		comment.Author = f.authorProfile(ctx, comment.UID)
	}
}

// authorProfile resolves a UID to its profile through a session-lifetime
// cache. Lookups that fail are logged and cached as nil so a broken profile
// does not get refetched on every snapshot.
func (f *ForumService) authorProfile(ctx context.Context, uid string) *models.Profile {
	f.mu.Lock()
	profile, ok := f.authors[uid]
	f.mu.Unlock()
	if ok {
		return profile
	}

	profile, err := f.profiles.GetByID(ctx, uid)
	if err != nil {
		f.logger.Warn("failed to resolve author profile", zap.String("uid", uid), zap.Error(err))
		profile = nil
	}

	f.mu.Lock()
	f.authors[uid] = profile
	f.mu.Unlock()
	return profile
}
