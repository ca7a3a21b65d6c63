package models

// Choice is one answer option of a flashcard, keyed by its letter.
type Choice struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// Flashcard is a multiple-choice question read from an externally sourced
// subject collection. Cards are immutable; the app never writes them.
//
// The source data stores the alternatives either as an ordered array or as a
// letter-keyed map. That variance is resolved at load time: Choices always
// holds the canonical ordered representation.
type Flashcard struct {
	ID            string   `json:"id"`
	Question      string   `json:"pergunta"`
	CorrectLetter string   `json:"correta"`
	Choices       []Choice `json:"alternativas"`
	Translation   string   `json:"traducao,omitempty"`
	Note          string   `json:"observacao,omitempty"`
	Subject       string   `json:"materia,omitempty"`
	Order         int      `json:"ordem,omitempty"`
}
