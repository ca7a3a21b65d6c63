package models

import "time"

// AnswerEvent records a single answered quiz question. Events are append-only
// and never corrected; statistics re-aggregate over all of a user's events.
type AnswerEvent struct {
	ID             string    `json:"id" firestore:"-"`
	UID            string    `json:"uid" firestore:"uid"`
	Subject        string    `json:"materia" firestore:"materia"`
	Question       string    `json:"pergunta" firestore:"pergunta"`
	SelectedLetter string    `json:"respostaSelecionada" firestore:"respostaSelecionada"`
	CorrectLetter  string    `json:"respostaCorreta" firestore:"respostaCorreta"`
	Correct        bool      `json:"correct" firestore:"correct"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}
