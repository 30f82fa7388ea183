package services

import (
	"fmt"
	"strings"

	"github.com/mrcoldpotato/talentflow-v2/internal/models"
)

// LintIssue is a structural problem in an assessment definition. Warnings
// describe unfinished drafts that still evaluate safely.
type LintIssue struct {
	QuestionID string `json:"questionId,omitempty"`
	Problem    string `json:"problem"`
	Warning    bool   `json:"warning,omitempty"`
}

func (i LintIssue) String() string {
	if i.QuestionID == "" {
		return i.Problem
	}
	return i.QuestionID + ": " + i.Problem
}

// Lint checks an assessment before it is saved. Conditions must not point at
// their own question or form a loop, since visibility is evaluated one hop at
// a time. A condition on a question that no longer exists only warns: it
// hides its question.
func Lint(a models.Assessment) []LintIssue {
	var issues []LintIssue
	add := func(id, format string, args ...any) {
		issues = append(issues, LintIssue{QuestionID: id, Problem: fmt.Sprintf(format, args...)})
	}
	warn := func(id, format string, args ...any) {
		issues = append(issues, LintIssue{QuestionID: id, Problem: fmt.Sprintf(format, args...), Warning: true})
	}

	byID := make(map[string]models.Question)
	for _, q := range a.Questions() {
		if strings.TrimSpace(q.ID) == "" {
			add("", "question %q has no id", q.Text)
			continue
		}
		if _, dup := byID[q.ID]; dup {
			add(q.ID, "duplicate question id")
			continue
		}
		byID[q.ID] = q
	}

	for _, q := range a.Questions() {
		if q.ID == "" {
			continue
		}

		switch k := q.Kind.(type) {
		case models.ChoiceKind:
			if len(k.Options) == 0 {
				warn(q.ID, "%s question needs at least one option", k.Type())
			}
		case models.NumericKind:
			if k.Range.Min != nil && k.Range.Max != nil && *k.Range.Min > *k.Range.Max {
				add(q.ID, "numeric range min %s is greater than max %s", formatNumber(*k.Range.Min), formatNumber(*k.Range.Max))
			}
		case models.TextKind:
			if k.MaxLength < 0 {
				add(q.ID, "max length cannot be negative")
			}
		}

		switch c := q.Condition.(type) {
		case models.EqualsCondition:
			switch {
			case c.QuestionID == q.ID:
				add(q.ID, "condition references the question itself")
			case !hasQuestion(byID, c.QuestionID):
				warn(q.ID, "condition references unknown question %q", c.QuestionID)
			case conditionLoops(byID, q.ID):
				add(q.ID, "conditions form a loop")
			}
		case models.RuleCondition:
			if _, err := compileRule(c.Expression); err != nil {
				add(q.ID, "invalid rule: %v", err)
			}
		}
	}

	return issues
}

// Blocking returns the issues that prevent saving.
func Blocking(issues []LintIssue) []LintIssue {
	var out []LintIssue
	for _, issue := range issues {
		if !issue.Warning {
			out = append(out, issue)
		}
	}
	return out
}

func hasQuestion(byID map[string]models.Question, id string) bool {
	_, ok := byID[id]
	return ok
}

// conditionLoops follows equals-condition references from start and reports
// whether they lead back to it.
func conditionLoops(byID map[string]models.Question, start string) bool {
	current := start
	for range len(byID) {
		q, ok := byID[current]
		if !ok {
			return false
		}
		c, ok := q.Condition.(models.EqualsCondition)
		if !ok {
			return false
		}
		if c.QuestionID == start {
			return true
		}
		current = c.QuestionID
	}
	return false
}
