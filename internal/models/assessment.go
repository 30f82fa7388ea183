package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// The type of question being asked.
type QuestionType string

const (
	TypeShort   QuestionType = "short"
	TypeLong    QuestionType = "long"
	TypeSingle  QuestionType = "single"
	TypeMulti   QuestionType = "multi"
	TypeNumeric QuestionType = "numeric"
	TypeFile    QuestionType = "file"
)

// Kind is the per-type payload of a question. Only the fields that mean
// something for a type exist on its kind.
type Kind interface {
	Type() QuestionType
}

type TextKind struct {
	Long      bool
	MaxLength int // 0 means unbounded
}

func (k TextKind) Type() QuestionType {
	if k.Long {
		return TypeLong
	}
	return TypeShort
}

type ChoiceKind struct {
	Multi   bool
	Options []string
}

func (k ChoiceKind) Type() QuestionType {
	if k.Multi {
		return TypeMulti
	}
	return TypeSingle
}

type NumericRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

type NumericKind struct {
	Range NumericRange
}

func (NumericKind) Type() QuestionType { return TypeNumeric }

type FileKind struct{}

func (FileKind) Type() QuestionType { return TypeFile }

// Condition gates a question's visibility on the answer set. A nil
// Condition means the question is always shown.
type Condition interface {
	condition()
}

// EqualsCondition shows the question when the answer to QuestionID is
// strictly equal to Equals.
type EqualsCondition struct {
	QuestionID string
	Equals     any
}

func (EqualsCondition) condition() {}

// RuleCondition shows the question when Expression evaluates to true
// against the answer set.
type RuleCondition struct {
	Expression string
}

func (RuleCondition) condition() {}

type Question struct {
	ID        string
	Text      string
	Required  bool
	Kind      Kind
	Condition Condition
}

// Type reports the question type; a question without a kind is short text.
func (q Question) Type() QuestionType {
	if q.Kind == nil {
		return TypeShort
	}
	return q.Kind.Type()
}

type questionWire struct {
	ID           string          `json:"id"`
	Type         QuestionType    `json:"type"`
	Question     string          `json:"question"`
	Options      []string        `json:"options,omitempty"`
	Required     bool            `json:"required,omitempty"`
	Condition    json.RawMessage `json:"condition,omitempty"`
	NumericRange *NumericRange   `json:"numericRange,omitempty"`
	MaxLength    int             `json:"maxLength,omitempty"`
}

type conditionWire struct {
	QuestionID *string         `json:"questionId,omitempty"`
	Equals     json.RawMessage `json:"equals,omitempty"`
	Rule       *string         `json:"rule,omitempty"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	w := questionWire{
		ID:       q.ID,
		Type:     q.Type(),
		Question: q.Text,
		Required: q.Required,
	}

	switch k := q.Kind.(type) {
	case TextKind:
		w.MaxLength = k.MaxLength
	case ChoiceKind:
		w.Options = k.Options
		if w.Options == nil {
			w.Options = []string{}
		}
	case NumericKind:
		if k.Range.Min != nil || k.Range.Max != nil {
			r := k.Range
			w.NumericRange = &r
		}
	}

	switch c := q.Condition.(type) {
	case EqualsCondition:
		id := c.QuestionID
		equals, err := json.Marshal(c.Equals)
		if err != nil {
			return nil, fmt.Errorf("marshal condition of %s: %w", q.ID, err)
		}
		raw, err := json.Marshal(conditionWire{QuestionID: &id, Equals: equals})
		if err != nil {
			return nil, err
		}
		w.Condition = raw
	case RuleCondition:
		rule := c.Expression
		raw, err := json.Marshal(conditionWire{Rule: &rule})
		if err != nil {
			return nil, err
		}
		w.Condition = raw
	}

	return json.Marshal(w)
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var w questionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	kind, err := kindFromWire(w)
	if err != nil {
		return err
	}
	cond, err := conditionFromWire(w.Condition)
	if err != nil {
		return fmt.Errorf("question %s: %w", w.ID, err)
	}

	*q = Question{
		ID:        w.ID,
		Text:      w.Question,
		Required:  w.Required,
		Kind:      kind,
		Condition: cond,
	}
	return nil
}

func kindFromWire(w questionWire) (Kind, error) {
	switch w.Type {
	case TypeShort, "":
		return TextKind{MaxLength: w.MaxLength}, nil
	case TypeLong:
		return TextKind{Long: true, MaxLength: w.MaxLength}, nil
	case TypeSingle:
		return ChoiceKind{Options: w.Options}, nil
	case TypeMulti:
		return ChoiceKind{Multi: true, Options: w.Options}, nil
	case TypeNumeric:
		k := NumericKind{}
		if w.NumericRange != nil {
			k.Range = *w.NumericRange
		}
		return k, nil
	case TypeFile:
		return FileKind{}, nil
	default:
		return nil, fmt.Errorf("question %s: unknown type %q", w.ID, w.Type)
	}
}

func conditionFromWire(raw json.RawMessage) (Condition, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var c conditionWire
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return nil, fmt.Errorf("invalid condition: %w", err)
	}

	switch {
	case c.Rule != nil:
		return RuleCondition{Expression: *c.Rule}, nil
	case c.QuestionID != nil:
		// A missing equals decodes to nil, which never matches an unanswered question.
		var equals any
		if len(c.Equals) > 0 {
			if err := json.Unmarshal(c.Equals, &equals); err != nil {
				return nil, fmt.Errorf("invalid condition value: %w", err)
			}
		}
		return EqualsCondition{QuestionID: *c.QuestionID, Equals: equals}, nil
	default:
		// {} and friends carry no reference; treat as unconditional
		return nil, nil
	}
}

type Section struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Sections is persisted as a JSON column.
type Sections []Section

func (s Sections) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return valueJSON([]Section(s))
}

func (s *Sections) Scan(src any) error {
	return scanJSON(src, (*[]Section)(s))
}

// Assessment is keyed by the job it belongs to; one per job.
type Assessment struct {
	JobID     string     `db:"job_id" json:"jobId"`
	Title     string     `db:"title" json:"title"`
	Sections  Sections   `db:"sections" json:"sections"`
	UpdatedAt *time.Time `db:"updated_at" json:"updatedAt,omitempty"`
}

// Questions flattens the assessment in section order.
func (a Assessment) Questions() []Question {
	var out []Question
	for _, s := range a.Sections {
		out = append(out, s.Questions...)
	}
	return out
}

// AnswerSet maps question ids to answers: string, []any, number, a file
// handle object or nil.
type AnswerSet map[string]any

func (a AnswerSet) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	return valueJSON(map[string]any(a))
}

func (a *AnswerSet) Scan(src any) error {
	return scanJSON(src, (*map[string]any)(a))
}

type Submission struct {
	ID          string    `db:"id" json:"id"`
	JobID       string    `db:"job_id" json:"jobId"`
	CandidateID *string   `db:"candidate_id" json:"candidateId,omitempty"`
	Answers     AnswerSet `db:"answers" json:"answers"`
	SubmittedAt time.Time `db:"submitted_at" json:"submittedAt"`
}

type SubmissionDTO struct {
	JobID       string    `db:"job_id"`
	CandidateID *string   `db:"candidate_id"`
	Answers     AnswerSet `db:"answers"`
	SubmittedAt time.Time `db:"submitted_at"`
}

func (d *SubmissionDTO) ToModel(id string) any {
	return &Submission{
		ID:          id,
		JobID:       d.JobID,
		CandidateID: d.CandidateID,
		Answers:     d.Answers,
		SubmittedAt: d.SubmittedAt,
	}
}
