package models

import "time"

// Post is a forum post. Posts are immutable once written; there is no edit or
// delete flow.
type Post struct {
	ID        string    `json:"id" firestore:"-"`
	UID       string    `json:"uid" firestore:"uid"`
	Content   string    `json:"content" firestore:"content"`
	Subject   string    `json:"materia" firestore:"materia"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`

	// Author is resolved from the users collection after the post is read.
	// Nil when the author profile is missing.
	Author *Profile `json:"author,omitempty" firestore:"-"`
}

// Comment is nested under a post's comments subcollection.
type Comment struct {
	ID        string    `json:"id" firestore:"-"`
	UID       string    `json:"uid" firestore:"uid"`
	Content   string    `json:"content" firestore:"content"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`

	Author *Profile `json:"author,omitempty" firestore:"-"`
}
