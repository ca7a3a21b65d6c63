package models

import "time"

// Profile is the mutable user document stored alongside the Firebase Auth
// identity. The auth UID is the document ID.
type Profile struct {
	ID          string    `json:"id" firestore:"-"`
	DisplayName string    `json:"displayName" firestore:"displayName"`
	Email       string    `json:"email" firestore:"email"`
	PhotoURL    *string   `json:"photoURL" firestore:"photoURL"`
	Bio         string    `json:"bio" firestore:"bio"`
	Active      bool      `json:"active" firestore:"active"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
	LastLogin   time.Time `json:"lastLogin" firestore:"lastLogin,serverTimestamp"`
}
