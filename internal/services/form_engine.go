package services

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/mrcoldpotato/talentflow-v2/internal/models"
)

// Violation codes reported by Validate.
const (
	ViolationRequired = "required"
	ViolationMin      = "min-violation"
	ViolationMax      = "max-violation"
	ViolationLength   = "length-violation"
)

// Decides which questions of an assessment are shown for a set of answers and
// checks the answers against each question's rules.
//
// Visibility is single-hop: a question only looks at the answer its own
// condition names, never at whether that question is itself shown.
type FormEngine interface {
	// Reports whether question is shown for answers.
	IsVisible(question models.Question, answers models.AnswerSet) bool
	// Returns question id -> violation code for every visible question that
	// breaks a rule. An empty map means the answers can be submitted.
	Validate(assessment models.Assessment, answers models.AnswerSet) map[string]string
	// Returns the sections with hidden questions removed.
	VisibleQuestions(assessment models.Assessment, answers models.AnswerSet) []models.Section
}

type compiledRule struct {
	program *vm.Program
	err     error
}

type formEngineImpl struct {
	mu    sync.RWMutex
	rules map[string]compiledRule
}

// Instantiate the FormEngine.
func NewFormEngine() FormEngine {
	return &formEngineImpl{rules: make(map[string]compiledRule)}
}

func (e *formEngineImpl) IsVisible(question models.Question, answers models.AnswerSet) bool {
	switch cond := question.Condition.(type) {
	case nil:
		return true
	case models.EqualsCondition:
		answer, ok := answers[cond.QuestionID]
		if !ok {
			return false
		}
		return strictEqual(answer, cond.Equals)
	case models.RuleCondition:
		match, err := e.evaluateRule(cond.Expression, answers)
		if err != nil {
			return false
		}
		return match
	default:
		return false
	}
}

func (e *formEngineImpl) Validate(assessment models.Assessment, answers models.AnswerSet) map[string]string {
	violations := make(map[string]string)

	for _, section := range assessment.Sections {
		for _, q := range section.Questions {
			if !e.IsVisible(q, answers) {
				continue
			}

			answer, answered := answers[q.ID]
			if q.Required && isEmptyAnswer(answer, answered) {
				violations[q.ID] = ViolationRequired
			}

			switch kind := q.Kind.(type) {
			case models.NumericKind:
				n, ok := toNumber(answer)
				if !answered || !ok {
					break
				}
				if kind.Range.Min != nil && n < *kind.Range.Min {
					violations[q.ID] = ViolationMin
				}
				if kind.Range.Max != nil && n > *kind.Range.Max {
					violations[q.ID] = ViolationMax
				}
			case models.TextKind:
				s, ok := answer.(string)
				// Length is counted in runes, not bytes or UTF-16 units.
				if ok && kind.MaxLength > 0 && utf8.RuneCountInString(s) > kind.MaxLength {
					violations[q.ID] = ViolationLength
				}
			}
		}
	}

	return violations
}

func (e *formEngineImpl) VisibleQuestions(assessment models.Assessment, answers models.AnswerSet) []models.Section {
	out := make([]models.Section, 0, len(assessment.Sections))
	for _, section := range assessment.Sections {
		visible := models.Section{ID: section.ID, Title: section.Title, Questions: []models.Question{}}
		for _, q := range section.Questions {
			if e.IsVisible(q, answers) {
				visible.Questions = append(visible.Questions, q)
			}
		}
		out = append(out, visible)
	}
	return out
}

func (e *formEngineImpl) program(expression string) (*vm.Program, error) {
	e.mu.RLock()
	c, ok := e.rules[expression]
	e.mu.RUnlock()
	if ok {
		return c.program, c.err
	}

	program, err := compileRule(expression)

	e.mu.Lock()
	e.rules[expression] = compiledRule{program: program, err: err}
	e.mu.Unlock()

	return program, err
}

func compileRule(expression string) (*vm.Program, error) {
	return expr.Compile(expression, expr.AllowUndefinedVariables())
}

func (e *formEngineImpl) evaluateRule(expression string, answers models.AnswerSet) (bool, error) {
	program, err := e.program(expression)
	if err != nil {
		return false, err
	}

	env := make(map[string]any, len(answers)+1)
	for id, v := range answers {
		env[id] = v
	}
	env["answers"] = map[string]any(answers)

	output, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}

	result, ok := output.(bool)
	if !ok {
		return false, errors.New("expression did not return a boolean")
	}

	return result, nil
}

// isEmptyAnswer is true for a missing, nil or empty-string answer. Empty
// multi-choice selections count as answered.
func isEmptyAnswer(answer any, answered bool) bool {
	if !answered || answer == nil {
		return true
	}
	s, ok := answer.(string)
	return ok && s == ""
}

// strictEqual compares two decoded answer values without coercion. Numbers
// of any Go kind compare by value; composite values are never equal.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if x, ok := toNumber(a); ok {
		y, ok := toNumber(b)
		return ok && x == y
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

func toNumber(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// Messages turns violation codes into the text shown under each question.
func Messages(assessment models.Assessment, violations map[string]string) map[string]string {
	questions := make(map[string]models.Question)
	for _, q := range assessment.Questions() {
		questions[q.ID] = q
	}

	out := make(map[string]string, len(violations))
	for id, code := range violations {
		q := questions[id]
		switch code {
		case ViolationRequired:
			out[id] = "This question is required"
		case ViolationMin:
			if k, ok := q.Kind.(models.NumericKind); ok && k.Range.Min != nil {
				out[id] = "Minimum value is " + formatNumber(*k.Range.Min)
				continue
			}
			out[id] = "Value is too small"
		case ViolationMax:
			if k, ok := q.Kind.(models.NumericKind); ok && k.Range.Max != nil {
				out[id] = "Maximum value is " + formatNumber(*k.Range.Max)
				continue
			}
			out[id] = "Value is too large"
		case ViolationLength:
			if k, ok := q.Kind.(models.TextKind); ok {
				out[id] = fmt.Sprintf("Max length is %d", k.MaxLength)
				continue
			}
			out[id] = "Answer is too long"
		default:
			out[id] = code
		}
	}
	return out
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
