package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"desafioconcurso-go/internal/models"
)

// subjectCollections maps subject labels to their dedicated question
// collections. The collection names are fixed by the externally maintained
// data set and are not derived from the labels.
var subjectCollections = map[string]string{
	"Inglês nivel 1":         "Inglês nivel 1",
	"Atualidades":            "atualidades_questoes",
	"Conhecimentos Gerais":   "conhecimentos_gerais",
	"Contabilidade":          "contabilidade_questoes",
	"Direito Administrativo": "direito_administrativo",
	"Direito Constitucional": "direito_constitucional",
	"Informática":            "informatica",
	"Inglês":                 "ingles_questoes",
	"Matemática":             "matematica",
	"Português":              "portugues_questoes",
	"Raciocínio Lógico":      "raciocinio_Logico",
}

// fallbackQuestionCollection holds questions for subjects without a dedicated
// collection, partitioned by a materia field.
const fallbackQuestionCollection = "flashcards"

// firestoreQuestionRepository implements QuestionRepository using Firestore.
// Question collections are read-only from the app's point of view.
type firestoreQuestionRepository struct {
	client *firestore.Client
}

// NewFirestoreQuestionRepository creates a new instance of firestoreQuestionRepository.
func NewFirestoreQuestionRepository(client *firestore.Client) QuestionRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for QuestionRepository.")
	}
	return &firestoreQuestionRepository{client: client}
}

// LoadBySubject loads the full question set for a subject label. Subjects
// with a dedicated collection load it whole; anything else falls back to the
// generic collection filtered on subject equality. An empty result is a valid
// terminal state, not an error.
func (r *firestoreQuestionRepository) LoadBySubject(ctx context.Context, subject string) ([]*models.Flashcard, error) {
	if subject == "" {
		return nil, errors.New("subject cannot be empty for LoadBySubject operation")
	}

	var query firestore.Query
	if col, ok := subjectCollections[subject]; ok {
		query = r.client.Collection(col).Query
	} else {
		query = r.client.Collection(fallbackQuestionCollection).Where("materia", "==", subject)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var cards []*models.Flashcard
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate questions for subject '%s': %w", subject, classify(err))
		}

		card, err := decodeFlashcard(doc)
		if err != nil {
			log.Printf("failed to decode flashcard '%s' for subject '%s': %v. Skipping.", doc.Ref.ID, subject, err)
			continue
		}
		cards = append(cards, card)
	}

	return cards, nil
}

// flashcardDoc is the raw wire shape. The alternatives field arrives either
// as an ordered array or as a letter-keyed map, depending on the collection.
type flashcardDoc struct {
	Question     string      `firestore:"pergunta"`
	Correct      string      `firestore:"correta"`
	Alternatives interface{} `firestore:"alternativas"`
	Translation  string      `firestore:"traducao"`
	Note         string      `firestore:"observacao"`
	Subject      string      `firestore:"materia"`
	Order        int         `firestore:"ordem"`
}

func decodeFlashcard(doc *firestore.DocumentSnapshot) (*models.Flashcard, error) {
	var raw flashcardDoc
	if err := doc.DataTo(&raw); err != nil {
		return nil, err
	}
	choices, err := canonicalChoices(raw.Alternatives)
	if err != nil {
		return nil, err
	}
	return &models.Flashcard{
		ID:            doc.Ref.ID,
		Question:      raw.Question,
		CorrectLetter: raw.Correct,
		Choices:       choices,
		Translation:   raw.Translation,
		Note:          raw.Note,
		Subject:       raw.Subject,
		Order:         raw.Order,
	}, nil
}

// canonicalChoices resolves the polymorphic alternatives value into a single
// ordered choice list. Arrays are lettered A, B, C... by position; maps are
// sorted by their letter keys.
func canonicalChoices(alternatives interface{}) ([]models.Choice, error) {
	switch v := alternatives.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		choices := make([]models.Choice, 0, len(v))
		for i, raw := range v {
			text, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("alternative %d is not a string", i)
			}
			choices = append(choices, models.Choice{
				Letter: string(rune('A' + i)),
				Text:   text,
			})
		}
		return choices, nil
	case map[string]interface{}:
		choices := make([]models.Choice, 0, len(v))
		for letter, raw := range v {
			text, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("alternative '%s' is not a string", letter)
			}
			choices = append(choices, models.Choice{Letter: letter, Text: text})
		}
		sort.Slice(choices, func(i, j int) bool { return choices[i].Letter < choices[j].Letter })
		return choices, nil
	default:
		return nil, fmt.Errorf("unsupported alternatives shape %T", alternatives)
	}
}
