package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"desafioconcurso-go/internal/db"
	"desafioconcurso-go/internal/models"
	"desafioconcurso-go/internal/prefs"
)

// revealMarker is the choice text that flips the card instead of answering it.
// Cards carrying it act as self-study flashcards rather than graded questions.
const revealMarker = "MOSTRAR"

// translatedSubjects are the subjects whose cards carry a translation line
// under the question text.
var translatedSubjects = map[string]bool{
	"Inglês":         true,
	"Inglês nivel 1": true,
	"Inglês nível 2": true,
}

// QuizService starts quiz sessions over the per-subject question banks.
type QuizService struct {
	questions db.QuestionRepository
	answers   db.AnswerRepository
	prefs     prefs.Store
	logger    *zap.Logger
}

func NewQuizService(questions db.QuestionRepository, answers db.AnswerRepository, prefStore prefs.Store, logger *zap.Logger) *QuizService {
	return &QuizService{questions: questions, answers: answers, prefs: prefStore, logger: logger}
}

// StartSession loads the question bank for subject and returns a session over
// it. An empty subject falls back to the last subject remembered on this
// device; the chosen subject is remembered for next time.
func (s *QuizService) StartSession(ctx context.Context, uid, subject string) (*QuizSession, error) {
	if uid == "" {
		return nil, validationErr("Check that you are logged in.")
	}
	if subject == "" {
		stored, ok := s.prefs.LastSubject()
		if !ok {
			return nil, validationErr("Pick a subject to study.")
		}
		subject = stored
	}

	cards, err := s.questions.LoadBySubject(ctx, subject)
	if err != nil {
		return nil, storageErr(fmt.Errorf("failed to load questions for subject '%s': %w", subject, err))
	}
	if len(cards) == 0 {
		return nil, validationErr("No questions available for this subject yet.")
	}

	if err := s.prefs.SetLastSubject(subject); err != nil {
		// Losing the remembered subject never blocks the quiz itself.
		s.logger.Warn("failed to persist last subject", zap.String("subject", subject), zap.Error(err))
	}

	return &QuizSession{
		service:  s,
		uid:      uid,
		subject:  subject,
		cards:    cards,
		answers:  make(map[int]string),
		revealed: make(map[int]bool),
	}, nil
}

// QuizSession is one pass over a loaded question set. It is a per-screen
// object owned by a single goroutine; it is not safe for concurrent use.
type QuizSession struct {
	service         *QuizService
	uid             string
	subject         string
	cards           []*models.Flashcard
	cursor          int
	answers         map[int]string
	revealed        map[int]bool
	showTranslation bool
}

// SelectionResult describes the outcome of answering the current card.
type SelectionResult struct {
	Correct       bool
	CorrectLetter string
	Revealed      bool
}

// Summary aggregates a finished (or abandoned) session.
type Summary struct {
	Total     int
	Answered  int
	Correct   int
	Incorrect int
}

// Subject returns the resolved subject this session runs over.
func (q *QuizSession) Subject() string { return q.subject }

// Translated reports whether cards in this session carry a translation line.
func (q *QuizSession) Translated() bool { return translatedSubjects[q.subject] }

// Len returns the number of cards in the session.
func (q *QuizSession) Len() int { return len(q.cards) }

// Position returns the zero-based cursor.
func (q *QuizSession) Position() int { return q.cursor }

// Current returns the card under the cursor.
func (q *QuizSession) Current() *models.Flashcard { return q.cards[q.cursor] }

// AtEnd reports whether the cursor sits on the last card.
func (q *QuizSession) AtEnd() bool { return q.cursor == len(q.cards)-1 }

// Next advances the cursor, clamped at the last card. Returns false when
// already at the end. The translation toggle resets on navigation.
func (q *QuizSession) Next() bool {
	if q.AtEnd() {
		return false
	}
	q.cursor++
	q.showTranslation = false
	return true
}

// Prev moves the cursor back, clamped at the first card. Returns false when
// already at the start.
func (q *QuizSession) Prev() bool {
	if q.cursor == 0 {
		return false
	}
	q.cursor--
	q.showTranslation = false
	return true
}

// ToggleTranslation flips the per-card translation visibility.
func (q *QuizSession) ToggleTranslation() { q.showTranslation = !q.showTranslation }

// ShowTranslation reports whether the current card's translation line should
// be rendered. Always false for subjects without translations.
func (q *QuizSession) ShowTranslation() bool { return q.showTranslation && q.Translated() }

// SelectedLetter returns the answer recorded for the current card, if any.
func (q *QuizSession) SelectedLetter() (string, bool) {
	letter, ok := q.answers[q.cursor]
	return letter, ok
}

// IsRevealed reports whether the current card was flipped via the reveal
// choice.
func (q *QuizSession) IsRevealed() bool { return q.revealed[q.cursor] }

// Answered reports whether the current card is resolved, either by a recorded
// answer or by the reveal action.
func (q *QuizSession) Answered() bool {
	_, answered := q.answers[q.cursor]
	return answered || q.revealed[q.cursor]
}

// Reveal resolves the current card without grading it and without a persisted
// event. No-op when the card is already resolved.
func (q *QuizSession) Reveal() {
	if q.Answered() {
		return
	}
	q.revealed[q.cursor] = true
}

// Select records the answer for the current card. Each card is resolved at
// most once: selecting on an already answered or revealed card is a no-op
// returning (nil, nil). Choosing the reveal choice marks the card answered
// without grading it and without a persisted event. Grading is local and
// immediate; a persistence failure is returned alongside the graded result
// and never rolls back the recorded answer.
func (q *QuizSession) Select(ctx context.Context, letter string) (*SelectionResult, error) {
	card := q.Current()

	choice, ok := findChoice(card.Choices, letter)
	if !ok {
		return nil, validationErr("Check your input.")
	}
	if q.Answered() {
		return nil, nil
	}
	if choice.Text == revealMarker {
		q.Reveal()
		return &SelectionResult{Revealed: true, CorrectLetter: card.CorrectLetter}, nil
	}

	q.answers[q.cursor] = letter
	correct := letter == card.CorrectLetter

	event := &models.AnswerEvent{
		UID:            q.uid,
		Subject:        q.subject,
		Question:       card.Question,
		SelectedLetter: letter,
		CorrectLetter:  card.CorrectLetter,
		Correct:        correct,
	}
	result := &SelectionResult{Correct: correct, CorrectLetter: card.CorrectLetter}
	if _, err := q.service.answers.Create(ctx, event); err != nil {
		q.service.logger.Warn("failed to persist answer event",
			zap.String("uid", q.uid),
			zap.String("subject", q.subject),
			zap.Error(err))
		return result, storageErr(err)
	}

	return result, nil
}

// Summarize tallies the session so far. Revealed cards count as answered and
// incorrect: the user saw the answer without getting it right.
func (q *QuizSession) Summarize() Summary {
	summary := Summary{Total: len(q.cards)}
	for index, letter := range q.answers {
		summary.Answered++
		if letter == q.cards[index].CorrectLetter {
			summary.Correct++
		} else {
			summary.Incorrect++
		}
	}
	for index := range q.revealed {
		if _, answered := q.answers[index]; !answered {
			summary.Answered++
			summary.Incorrect++
		}
	}
	return summary
}

func findChoice(choices []models.Choice, letter string) (models.Choice, bool) {
	for _, choice := range choices {
		if choice.Letter == letter {
			return choice, true
		}
	}
	return models.Choice{}, false
}
