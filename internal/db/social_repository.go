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

const (
	friendRequestsCollection = "friendRequests"
	friendshipsCollection    = "friendships"
	notificationsCollection  = "notifications"
)

// PairID derives the deterministic friendship document ID for an unordered
// pair of UIDs. Deriving from (a, b) and (b, a) yields the same ID, so a pair
// maps to at most one friendship document.
func PairID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}

// firestoreFriendRequestRepository implements FriendRequestRepository using Firestore.
type firestoreFriendRequestRepository struct {
	client *firestore.Client
}

// NewFirestoreFriendRequestRepository creates a new instance of firestoreFriendRequestRepository.
func NewFirestoreFriendRequestRepository(client *firestore.Client) FriendRequestRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for FriendRequestRepository.")
	}
	return &firestoreFriendRequestRepository{client: client}
}

// Create adds a new pending friend request with an auto-generated ID.
func (r *firestoreFriendRequestRepository) Create(ctx context.Context, fromUID, toUID string) (string, error) {
	if fromUID == "" || toUID == "" {
		return "", errors.New("fromUID and toUID cannot be empty for Create operation")
	}
	docRef := r.client.Collection(friendRequestsCollection).NewDoc()
	request := &models.FriendRequest{
		FromUID: fromUID,
		ToUID:   toUID,
		Status:  models.RequestPending,
	}
	_, err := docRef.Create(ctx, request)
	if err != nil {
		return "", fmt.Errorf("failed to create friend request: %w", classify(err))
	}
	return docRef.ID, nil
}

// ListPendingFor fetches the pending incoming requests for a user, newest first.
func (r *firestoreFriendRequestRepository) ListPendingFor(ctx context.Context, uid string) ([]*models.FriendRequest, error) {
	if uid == "" {
		return nil, errors.New("uid cannot be empty for ListPendingFor operation")
	}

	iter := r.client.Collection(friendRequestsCollection).
		Where("toUid", "==", uid).
		Where("status", "==", string(models.RequestPending)).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var requests []*models.FriendRequest
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate friend requests for '%s': %w", uid, classify(err))
		}

		var request models.FriendRequest
		if err := doc.DataTo(&request); err != nil {
			log.Printf("failed to decode friend request '%s': %v. Skipping.", doc.Ref.ID, err)
			continue
		}
		request.ID = doc.Ref.ID
		requests = append(requests, &request)
	}

	return requests, nil
}

// HasPendingBetween reports whether a pending request from fromUID to toUID
// already exists.
func (r *firestoreFriendRequestRepository) HasPendingBetween(ctx context.Context, fromUID, toUID string) (bool, error) {
	iter := r.client.Collection(friendRequestsCollection).
		Where("fromUid", "==", fromUID).
		Where("toUid", "==", toUID).
		Where("status", "==", string(models.RequestPending)).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check pending request: %w", classify(err))
	}
	return true, nil
}

// SetStatus updates a request's status field. A request transitions away from
// pending at most once; nothing deletes or reopens it.
func (r *firestoreFriendRequestRepository) SetStatus(ctx context.Context, requestID string, statusValue models.RequestStatus) error {
	if requestID == "" {
		return errors.New("requestID cannot be empty for SetStatus operation")
	}
	_, err := r.client.Collection(friendRequestsCollection).Doc(requestID).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(statusValue)},
	})
	if err != nil {
		return fmt.Errorf("failed to set status of friend request '%s': %w", requestID, classify(err))
	}
	return nil
}

// Accept runs the acceptance write set in one Firestore transaction: request
// status, friendship document and requester notification all land together or
// not at all. The request is re-read inside the transaction so a request that
// was already resolved by a concurrent session is not resolved twice.
func (r *firestoreFriendRequestRepository) Accept(ctx context.Context, request *models.FriendRequest, message string) error {
	if request == nil || request.ID == "" {
		return errors.New("request with ID is required for Accept operation")
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		requestRef := r.client.Collection(friendRequestsCollection).Doc(request.ID)
		snap, err := tx.Get(requestRef)
		if err != nil {
			return err
		}
		var current models.FriendRequest
		if err := snap.DataTo(&current); err != nil {
			return err
		}
		if current.Status != models.RequestPending {
			return fmt.Errorf("friend request '%s' is already %s", request.ID, current.Status)
		}

		if err := tx.Update(requestRef, []firestore.Update{
			{Path: "status", Value: string(models.RequestAccepted)},
		}); err != nil {
			return err
		}

		friendshipRef := r.client.Collection(friendshipsCollection).Doc(PairID(request.FromUID, request.ToUID))
		if err := tx.Set(friendshipRef, map[string]interface{}{
			"users":     []string{request.FromUID, request.ToUID},
			"createdAt": firestore.ServerTimestamp,
		}); err != nil {
			return err
		}

		noticeRef := r.client.Collection(notificationsCollection).NewDoc()
		return tx.Create(noticeRef, &models.Notification{
			UID:     request.FromUID,
			Type:    models.NotificationFriendshipAccepted,
			Message: message,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to accept friend request '%s': %w", request.ID, classify(err))
	}
	return nil
}

// firestoreFriendshipRepository implements FriendshipRepository using Firestore.
type firestoreFriendshipRepository struct {
	client *firestore.Client
}

// NewFirestoreFriendshipRepository creates a new instance of firestoreFriendshipRepository.
func NewFirestoreFriendshipRepository(client *firestore.Client) FriendshipRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for FriendshipRepository.")
	}
	return &firestoreFriendshipRepository{client: client}
}

// ListForUser fetches all friendship documents containing the user.
func (r *firestoreFriendshipRepository) ListForUser(ctx context.Context, uid string) ([]*models.Friendship, error) {
	if uid == "" {
		return nil, errors.New("uid cannot be empty for ListForUser operation")
	}

	iter := r.client.Collection(friendshipsCollection).
		Where("users", "array-contains", uid).
		Documents(ctx)
	defer iter.Stop()

	var friendships []*models.Friendship
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate friendships for '%s': %w", uid, classify(err))
		}

		var friendship models.Friendship
		if err := doc.DataTo(&friendship); err != nil {
			log.Printf("failed to decode friendship '%s': %v. Skipping.", doc.Ref.ID, err)
			continue
		}
		friendship.ID = doc.Ref.ID
		friendships = append(friendships, &friendship)
	}

	return friendships, nil
}

// ClearMembers overwrites the friendship's member set to empty. The document
// itself stays under its pair-derived ID so a later re-friending of the same
// pair lands on the same document.
func (r *firestoreFriendshipRepository) ClearMembers(ctx context.Context, friendshipID string) error {
	if friendshipID == "" {
		return errors.New("friendshipID cannot be empty for ClearMembers operation")
	}
	_, err := r.client.Collection(friendshipsCollection).Doc(friendshipID).Update(ctx, []firestore.Update{
		{Path: "users", Value: []string{}},
	})
	if err != nil {
		return fmt.Errorf("failed to clear members of friendship '%s': %w", friendshipID, classify(err))
	}
	return nil
}
