package services

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mrcoldpotato/talentflow-v2/internal/models"
)

func float(f float64) *float64 { return &f }

// screeningAssessment holds Q1 (numeric, required, 1..10) and Q2 shown only
// when Q1 equals 5.
func screeningAssessment(q2Required bool) models.Assessment {
	return models.Assessment{
		JobID: "job-1",
		Title: "Screening",
		Sections: models.Sections{
			{
				ID:    "s1",
				Title: "Basics",
				Questions: []models.Question{
					{
						ID:       "Q1",
						Text:     "Years of experience",
						Required: true,
						Kind:     models.NumericKind{Range: models.NumericRange{Min: float(1), Max: float(10)}},
					},
					{
						ID:        "Q2",
						Text:      "Why exactly five?",
						Required:  q2Required,
						Kind:      models.TextKind{},
						Condition: models.EqualsCondition{QuestionID: "Q1", Equals: float64(5)},
					},
				},
			},
		},
	}
}

func TestIsVisible_NoCondition(t *testing.T) {
	engine := NewFormEngine()
	question := models.Question{ID: "q1", Kind: models.TextKind{}}

	answerSets := []models.AnswerSet{
		nil,
		{},
		{"q1": "yes"},
		{"other": []any{"a"}},
	}
	for _, answers := range answerSets {
		if !engine.IsVisible(question, answers) {
			t.Errorf("expected unconditional question to be visible for %v", answers)
		}
	}
}

func TestIsVisible_EqualsCondition(t *testing.T) {
	engine := NewFormEngine()

	tests := []struct {
		name     string
		equals   any
		answers  models.AnswerSet
		expected bool
	}{
		{"matching string", "yes", models.AnswerSet{"q1": "yes"}, true},
		{"different string", "yes", models.AnswerSet{"q1": "no"}, false},
		{"array never equals string", "yes", models.AnswerSet{"q1": []any{"yes"}}, false},
		{"array never equals array", []any{"yes"}, models.AnswerSet{"q1": []any{"yes"}}, false},
		{"missing answer", "yes", models.AnswerSet{}, false},
		{"number against json number", float64(5), models.AnswerSet{"q1": float64(5)}, true},
		{"int against float of same value", float64(5), models.AnswerSet{"q1": 5}, true},
		{"number against numeric string", float64(5), models.AnswerSet{"q1": "5"}, false},
		{"bool", true, models.AnswerSet{"q1": true}, true},
		{"bool against string", true, models.AnswerSet{"q1": "true"}, false},
		{"nil equals nil", nil, models.AnswerSet{"q1": nil}, true},
		{"nil does not match missing", nil, models.AnswerSet{}, false},
		{"empty string is a value", "", models.AnswerSet{"q1": ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := models.Question{
				ID:        "q2",
				Kind:      models.TextKind{},
				Condition: models.EqualsCondition{QuestionID: "q1", Equals: tt.equals},
			}
			if got := engine.IsVisible(q, tt.answers); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestIsVisible_ConditionWithoutEquals(t *testing.T) {
	engine := NewFormEngine()

	var q models.Question
	if err := json.Unmarshal([]byte(`{"id": "q2", "type": "short", "question": "Why?", "condition": {"questionId": "q1"}}`), &q); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if engine.IsVisible(q, models.AnswerSet{}) {
		t.Error("a condition without equals must not match an unanswered question")
	}
	if !engine.IsVisible(q, models.AnswerSet{"q1": nil}) {
		t.Error("a condition without equals should match an explicit null answer")
	}
}

func TestIsVisible_UnknownReferenceIsHidden(t *testing.T) {
	engine := NewFormEngine()
	q := models.Question{
		ID:        "q2",
		Condition: models.EqualsCondition{QuestionID: "does-not-exist", Equals: "x"},
	}
	if engine.IsVisible(q, models.AnswerSet{"q1": "x"}) {
		t.Error("expected question referencing an unknown id to be hidden")
	}
}

func TestIsVisible_SingleHop(t *testing.T) {
	engine := NewFormEngine()

	// q2 is hidden because q1 is not "yes", but its stale answer still gates q3.
	a := models.Assessment{Sections: models.Sections{{
		ID: "s1",
		Questions: []models.Question{
			{ID: "q1", Kind: models.ChoiceKind{Options: []string{"yes", "no"}}},
			{ID: "q2", Kind: models.TextKind{}, Condition: models.EqualsCondition{QuestionID: "q1", Equals: "yes"}},
			{ID: "q3", Kind: models.TextKind{}, Condition: models.EqualsCondition{QuestionID: "q2", Equals: "stale"}},
		},
	}}}
	answers := models.AnswerSet{"q1": "no", "q2": "stale"}

	qs := a.Questions()
	if engine.IsVisible(qs[1], answers) {
		t.Fatal("expected q2 to be hidden")
	}
	if !engine.IsVisible(qs[2], answers) {
		t.Error("expected q3 to be visible from q2's stale answer")
	}
}

func TestIsVisible_RuleCondition(t *testing.T) {
	engine := NewFormEngine()

	tests := []struct {
		name     string
		rule     string
		answers  models.AnswerSet
		expected bool
	}{
		{"numeric comparison", `q1 > 3`, models.AnswerSet{"q1": float64(4)}, true},
		{"numeric comparison false", `q1 > 3`, models.AnswerSet{"q1": float64(2)}, false},
		{"membership in multi choice", `"go" in q1`, models.AnswerSet{"q1": []any{"rust", "go"}}, true},
		{"answers map lookup", `answers["q-1"] == "yes"`, models.AnswerSet{"q-1": "yes"}, true},
		{"missing answer is nil", `q1 == nil`, models.AnswerSet{}, true},
		{"non boolean result", `q1`, models.AnswerSet{"q1": "text"}, false},
		{"does not compile", `q1 ===`, models.AnswerSet{"q1": "x"}, false},
		{"runtime error", `q1 > 3`, models.AnswerSet{"q1": "text"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := models.Question{ID: "q2", Condition: models.RuleCondition{Expression: tt.rule}}
			if got := engine.IsVisible(q, tt.answers); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
			// second evaluation goes through the compiled rule cache
			if got := engine.IsVisible(q, tt.answers); got != tt.expected {
				t.Errorf("cached: expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestValidate_Scenario(t *testing.T) {
	engine := NewFormEngine()

	tests := []struct {
		name       string
		q2Required bool
		answers    models.AnswerSet
		expected   map[string]string
	}{
		{
			name:     "above max hides dependent question",
			answers:  models.AnswerSet{"Q1": float64(12)},
			expected: map[string]string{"Q1": ViolationMax},
		},
		{
			name:     "below min",
			answers:  models.AnswerSet{"Q1": float64(0)},
			expected: map[string]string{"Q1": ViolationMin},
		},
		{
			name:       "matching answer reveals required question",
			q2Required: true,
			answers:    models.AnswerSet{"Q1": float64(5)},
			expected:   map[string]string{"Q2": ViolationRequired},
		},
		{
			name:       "revealed question answered",
			q2Required: true,
			answers:    models.AnswerSet{"Q1": float64(5), "Q2": "because"},
			expected:   map[string]string{},
		},
		{
			name:     "required numeric missing",
			answers:  models.AnswerSet{},
			expected: map[string]string{"Q1": ViolationRequired},
		},
		{
			name:     "required numeric empty string",
			answers:  models.AnswerSet{"Q1": ""},
			expected: map[string]string{"Q1": ViolationRequired},
		},
		{
			name:     "bounds are inclusive",
			answers:  models.AnswerSet{"Q1": float64(10)},
			expected: map[string]string{},
		},
		{
			name:     "non numeric answer is not range checked",
			answers:  models.AnswerSet{"Q1": "twelve"},
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Validate(screeningAssessment(tt.q2Required), tt.answers)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("violations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate_HiddenQuestionsAreSkipped(t *testing.T) {
	engine := NewFormEngine()

	a := models.Assessment{Sections: models.Sections{{
		ID: "s1",
		Questions: []models.Question{
			{ID: "gate", Kind: models.ChoiceKind{Options: []string{"yes", "no"}}},
			{
				ID:        "hidden-required",
				Required:  true,
				Kind:      models.TextKind{MaxLength: 2},
				Condition: models.EqualsCondition{QuestionID: "gate", Equals: "yes"},
			},
			{
				ID:        "hidden-range",
				Kind:      models.NumericKind{Range: models.NumericRange{Max: float(1)}},
				Condition: models.EqualsCondition{QuestionID: "gate", Equals: "yes"},
			},
		},
	}}}

	got := engine.Validate(a, models.AnswerSet{"gate": "no", "hidden-required": "far too long", "hidden-range": float64(100)})
	if len(got) != 0 {
		t.Errorf("expected no violations for hidden questions, got %v", got)
	}
}

func TestValidate_TextLength(t *testing.T) {
	engine := NewFormEngine()

	a := models.Assessment{Sections: models.Sections{{
		ID: "s1",
		Questions: []models.Question{
			{ID: "short", Kind: models.TextKind{MaxLength: 5}},
			{ID: "long", Kind: models.TextKind{Long: true, MaxLength: 3}},
			{ID: "unbounded", Kind: models.TextKind{}},
		},
	}}}

	tests := []struct {
		name     string
		answers  models.AnswerSet
		expected map[string]string
	}{
		{"within limit", models.AnswerSet{"short": "hello", "long": "abc"}, map[string]string{}},
		{"over limit", models.AnswerSet{"short": "hello!", "long": "abcd"}, map[string]string{"short": ViolationLength, "long": ViolationLength}},
		{"counts characters not bytes", models.AnswerSet{"short": "héllo"}, map[string]string{}},
		{"counts runes not utf16 units", models.AnswerSet{"short": "😀😀😀"}, map[string]string{}},
		{"unbounded", models.AnswerSet{"unbounded": "a very long answer indeed"}, map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Validate(a, tt.answers)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("violations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate_RequiredChoiceAndFile(t *testing.T) {
	engine := NewFormEngine()

	a := models.Assessment{Sections: models.Sections{{
		ID: "s1",
		Questions: []models.Question{
			{ID: "multi", Required: true, Kind: models.ChoiceKind{Multi: true, Options: []string{"a", "b"}}},
			{ID: "file", Required: true, Kind: models.FileKind{}},
		},
	}}}

	got := engine.Validate(a, models.AnswerSet{
		"multi": []any{},
		"file":  map[string]any{"name": "cv.pdf", "size": float64(1024)},
	})
	if len(got) != 0 {
		t.Errorf("expected answered choice and file to pass, got %v", got)
	}

	got = engine.Validate(a, models.AnswerSet{"multi": nil})
	want := map[string]string{"multi": ViolationRequired, "file": ViolationRequired}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestVisibleQuestions(t *testing.T) {
	engine := NewFormEngine()

	sections := engine.VisibleQuestions(screeningAssessment(true), models.AnswerSet{"Q1": float64(3)})
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	var ids []string
	for _, q := range sections[0].Questions {
		ids = append(ids, q.ID)
	}
	if diff := cmp.Diff([]string{"Q1"}, ids); diff != "" {
		t.Errorf("visible questions mismatch (-want +got):\n%s", diff)
	}
}

func TestMessages(t *testing.T) {
	a := screeningAssessment(true)
	a.Sections[0].Questions = append(a.Sections[0].Questions, models.Question{
		ID:   "Q3",
		Kind: models.TextKind{MaxLength: 20},
	})

	got := Messages(a, map[string]string{
		"Q1": ViolationMax,
		"Q2": ViolationRequired,
		"Q3": ViolationLength,
	})
	want := map[string]string{
		"Q1": "Maximum value is 10",
		"Q2": "This question is required",
		"Q3": "Max length is 20",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}

	got = Messages(a, map[string]string{"Q1": ViolationMin})
	if got["Q1"] != "Minimum value is 1" {
		t.Errorf("expected min message, got %q", got["Q1"])
	}
}
