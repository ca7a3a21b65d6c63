package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"desafioconcurso-go/internal/models"
)

const usersCollection = "users"

// firestoreProfileRepository implements ProfileRepository using Firestore.
type firestoreProfileRepository struct {
	client *firestore.Client
}

// NewFirestoreProfileRepository creates a new instance of firestoreProfileRepository.
func NewFirestoreProfileRepository(client *firestore.Client) ProfileRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ProfileRepository.")
	}
	return &firestoreProfileRepository{client: client}
}

// GetByID retrieves a profile document by its auth UID.
func (r *firestoreProfileRepository) GetByID(ctx context.Context, uid string) (*models.Profile, error) {
	if uid == "" {
		return nil, errors.New("uid cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile '%s': %w", uid, classify(err))
	}

	var profile models.Profile
	if err := docSnap.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile data for '%s': %w", uid, err)
	}
	profile.ID = docSnap.Ref.ID

	return &profile, nil
}

// Create writes a full profile document. The auth UID is the document ID;
// CreatedAt/UpdatedAt/LastLogin are populated server-side via their
// serverTimestamp tags.
func (r *firestoreProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		return errors.New("profile ID cannot be empty for Create operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(profile.ID).Set(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to create profile '%s': %w", profile.ID, classify(err))
	}
	return nil
}

// MergeFields merge-writes the given fields into the profile document,
// creating it when absent. Fields not named stay untouched, which is what
// preserves user-edited values like the bio across login provisioning.
func (r *firestoreProfileRepository) MergeFields(ctx context.Context, uid string, fields map[string]interface{}) error {
	if uid == "" {
		return errors.New("uid cannot be empty for MergeFields operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(uid).Set(ctx, fields, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to merge profile fields for '%s': %w", uid, classify(err))
	}
	return nil
}

// UpdateBio overwrites the bio field only.
func (r *firestoreProfileRepository) UpdateBio(ctx context.Context, uid, bio string) error {
	if uid == "" {
		return errors.New("uid cannot be empty for UpdateBio operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "bio", Value: bio},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return fmt.Errorf("failed to update bio for '%s': %w", uid, classify(err))
	}
	return nil
}

// Listen opens a live snapshot subscription on a profile document. Each remote
// change invokes fn with the latest decoded profile, or nil when the document
// does not exist. The returned Subscription must be stopped by the owner.
func (r *firestoreProfileRepository) Listen(ctx context.Context, uid string, fn func(*models.Profile)) (*Subscription, error) {
	if uid == "" {
		return nil, errors.New("uid cannot be empty for Listen operation")
	}

	listenCtx, cancel := context.WithCancel(ctx)
	iter := r.client.Collection(usersCollection).Doc(uid).Snapshots(listenCtx)
	sub := newSubscription(cancel)

	go func() {
		defer sub.markDone()
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					log.Printf("profile listener for '%s' stopped: %v", uid, err)
				}
				return
			}
			if !snap.Exists() {
				fn(nil)
				continue
			}
			var profile models.Profile
			if err := snap.DataTo(&profile); err != nil {
				log.Printf("failed to decode profile snapshot for '%s': %v", uid, err)
				continue
			}
			profile.ID = snap.Ref.ID
			fn(&profile)
		}
	}()

	return sub, nil
}
