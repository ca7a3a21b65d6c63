package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"desafioconcurso-go/internal/models"
)

const answersCollection = "answers"

// firestoreAnswerRepository implements AnswerRepository using Firestore.
// The collection is append-only; events are never updated or deleted.
type firestoreAnswerRepository struct {
	client *firestore.Client
}

// NewFirestoreAnswerRepository creates a new instance of firestoreAnswerRepository.
func NewFirestoreAnswerRepository(client *firestore.Client) AnswerRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for AnswerRepository.")
	}
	return &firestoreAnswerRepository{client: client}
}

// Create appends a new answer event with an auto-generated ID.
func (r *firestoreAnswerRepository) Create(ctx context.Context, event *models.AnswerEvent) (string, error) {
	if event.UID == "" {
		return "", errors.New("event UID cannot be empty for Create operation")
	}
	docRef := r.client.Collection(answersCollection).NewDoc()
	event.ID = docRef.ID

	_, err := docRef.Create(ctx, event)
	if err != nil {
		return "", fmt.Errorf("failed to create answer event: %w", classify(err))
	}
	return docRef.ID, nil
}

// ListByUser fetches all answer events for a user, newest first. Statistics
// are derived by full re-aggregation over this result, never incrementally.
func (r *firestoreAnswerRepository) ListByUser(ctx context.Context, uid string) ([]*models.AnswerEvent, error) {
	if uid == "" {
		return nil, errors.New("uid cannot be empty for ListByUser operation")
	}

	iter := r.client.Collection(answersCollection).
		Where("uid", "==", uid).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var events []*models.AnswerEvent
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate answer events for '%s': %w", uid, classify(err))
		}

		var event models.AnswerEvent
		if err := doc.DataTo(&event); err != nil {
			log.Printf("failed to decode answer event '%s': %v. Skipping.", doc.Ref.ID, err)
			continue
		}
		event.ID = doc.Ref.ID
		events = append(events, &event)
	}

	return events, nil
}
