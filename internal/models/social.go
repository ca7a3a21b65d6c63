package models

import "time"

// RequestStatus is the lifecycle state of a friend request. A request
// transitions away from pending at most once and is never deleted or reopened.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// FriendRequest is created by the requester and resolved by the recipient.
type FriendRequest struct {
	ID        string        `json:"id" firestore:"-"`
	FromUID   string        `json:"fromUid" firestore:"fromUid"`
	ToUID     string        `json:"toUid" firestore:"toUid"`
	Status    RequestStatus `json:"status" firestore:"status"`
	CreatedAt time.Time     `json:"createdAt" firestore:"createdAt,serverTimestamp"`

	// FromUser is the requester's profile, resolved for display on the
	// recipient's pending list. Nil when the profile is missing.
	FromUser *Profile `json:"fromUser,omitempty" firestore:"-"`
}

// Friendship holds exactly two user IDs. The document ID is the sorted pair of
// the two UIDs joined by an underscore, so an unordered pair maps to at most
// one document.
type Friendship struct {
	ID        string    `json:"id" firestore:"-"`
	Users     []string  `json:"users" firestore:"users"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

// Notification is written as a side effect of friend-request acceptance. No
// inbox flow reads these back in this app.
type Notification struct {
	ID        string    `json:"id" firestore:"-"`
	UID       string    `json:"uid" firestore:"uid"`
	Type      string    `json:"type" firestore:"type"`
	Message   string    `json:"message" firestore:"message"`
	Read      bool      `json:"read" firestore:"read"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

// NotificationFriendshipAccepted is the only notification type this app emits.
const NotificationFriendshipAccepted = "friendship_accepted"
