package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"desafioconcurso-go/internal/models"
)

const (
	postsCollection       = "forumPosts"
	commentsSubcollection = "comments"
)

// firestorePostRepository implements PostRepository using Firestore.
type firestorePostRepository struct {
	client *firestore.Client
}

// NewFirestorePostRepository creates a new instance of firestorePostRepository.
func NewFirestorePostRepository(client *firestore.Client) PostRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for PostRepository.")
	}
	return &firestorePostRepository{client: client}
}

// Create adds a new post document with an auto-generated ID and sets post.ID.
func (r *firestorePostRepository) Create(ctx context.Context, post *models.Post) (string, error) {
	docRef := r.client.Collection(postsCollection).NewDoc()
	post.ID = docRef.ID

	_, err := docRef.Create(ctx, post)
	if err != nil {
		return "", fmt.Errorf("failed to create post: %w", classify(err))
	}
	return docRef.ID, nil
}

// ListenLatest opens a live query subscription on the newest posts, ordered by
// creation time descending and capped at limit. Every backend snapshot invokes
// fn with the full decoded result set; decode failures on individual documents
// are logged and skipped rather than failing the whole feed.
func (r *firestorePostRepository) ListenLatest(ctx context.Context, limit int, fn func([]*models.Post, error)) (*Subscription, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive for ListenLatest operation")
	}

	query := r.client.Collection(postsCollection).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit)

	listenCtx, cancel := context.WithCancel(ctx)
	iter := query.Snapshots(listenCtx)
	sub := newSubscription(cancel)

	go func() {
		defer sub.markDone()
		defer iter.Stop()
		for {
			qsnap, err := iter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					log.Printf("post listener stopped: %v", err)
					fn(nil, classify(err))
				}
				return
			}

			docs, err := qsnap.Documents.GetAll()
			if err != nil {
				fn(nil, fmt.Errorf("failed to read post snapshot: %w", classify(err)))
				continue
			}

			posts := make([]*models.Post, 0, len(docs))
			for _, doc := range docs {
				var post models.Post
				if err := doc.DataTo(&post); err != nil {
					log.Printf("failed to decode post '%s': %v. Skipping.", doc.Ref.ID, err)
					continue
				}
				post.ID = doc.Ref.ID
				posts = append(posts, &post)
			}
			fn(posts, nil)
		}
	}()

	return sub, nil
}

// CreateComment adds a comment under a post's comments subcollection.
func (r *firestorePostRepository) CreateComment(ctx context.Context, postID string, comment *models.Comment) (string, error) {
	if postID == "" {
		return "", errors.New("postID cannot be empty for CreateComment operation")
	}
	docRef := r.client.Collection(postsCollection).Doc(postID).Collection(commentsSubcollection).NewDoc()
	comment.ID = docRef.ID

	_, err := docRef.Create(ctx, comment)
	if err != nil {
		return "", fmt.Errorf("failed to create comment on post '%s': %w", postID, classify(err))
	}
	return docRef.ID, nil
}

// ListComments fetches a post's comments ordered by creation time ascending.
func (r *firestorePostRepository) ListComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	if postID == "" {
		return nil, errors.New("postID cannot be empty for ListComments operation")
	}

	iter := r.client.Collection(postsCollection).Doc(postID).Collection(commentsSubcollection).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var comments []*models.Comment
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate comments for post '%s': %w", postID, classify(err))
		}

		var comment models.Comment
		if err := doc.DataTo(&comment); err != nil {
			log.Printf("failed to decode comment '%s' on post '%s': %v. Skipping.", doc.Ref.ID, postID, err)
			continue
		}
		comment.ID = doc.Ref.ID
		comments = append(comments, &comment)
	}

	return comments, nil
}
