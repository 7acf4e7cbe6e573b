package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// StudySheet is the structured summary returned by the model for one course upload.
// It is never mutated after it has been received.
type StudySheet struct {
	Title         string         `json:"title" validate:"required"`
	SummaryPoints []string       `json:"summaryPoints"`
	KeyConcepts   []KeyConcept   `json:"keyConcepts" validate:"dive"`
	ActivityFlow  []string       `json:"activityFlow"`
	Quiz          []QuizQuestion `json:"quiz" validate:"dive"`
}

// KeyConcept is one glossary entry of a study sheet
type KeyConcept struct {
	Term       string `json:"term" validate:"required"`
	Definition string `json:"definition" validate:"required"`
}

// QuizQuestion is a multiple-choice question. CorrectAnswer must match one of
// Options once both sides are trimmed.
type QuizQuestion struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"min=1"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required,answer_in_options"`
}

// CorrectIndex returns the index of the first option equal to the correct answer
// under trimmed comparison, or -1.
func (q QuizQuestion) CorrectIndex() int {
	want := strings.TrimSpace(q.CorrectAnswer)
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == want {
			return i
		}
	}
	return -1
}

// ExportContext carries the presentation-only inputs of an export.
type ExportContext struct {
	LogoURL            string `json:"logo_url,omitempty"`
	SequenceNumber     string `json:"sequence_number,omitempty"`
	ActivityNumber     string `json:"activity_number,omitempty"`
	BackgroundImageURL string `json:"background_image_url,omitempty"`
}

// Subtitle returns the sequence/activity line, or "" unless both labels are set.
func (c ExportContext) Subtitle() string {
	seq := strings.TrimSpace(c.SequenceNumber)
	act := strings.TrimSpace(c.ActivityNumber)
	if seq == "" || act == "" {
		return ""
	}
	return fmt.Sprintf("Séquence %s · Activité %s", seq, act)
}

// SheetRecord is a generated study sheet held for the duration of a session.
type SheetRecord struct {
	ID        uuid.UUID     `json:"id"`
	Sheet     StudySheet    `json:"sheet"`
	Context   ExportContext `json:"context"`
	CreatedAt time.Time     `json:"created_at"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("answer_in_options", func(fl validator.FieldLevel) bool {
		q, ok := fl.Parent().Interface().(QuizQuestion)
		if !ok {
			return false
		}
		return q.CorrectIndex() >= 0
	})
	return v
}

// Validate checks the StudySheet invariants the exporter relies on.
func (s *StudySheet) Validate() error {
	if s == nil {
		return errors.New("study sheet is nil")
	}
	if strings.TrimSpace(s.Title) == "" {
		return errors.New("study sheet title is empty")
	}
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid study sheet: %s failed %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid study sheet: %w", err)
	}
	return nil
}
