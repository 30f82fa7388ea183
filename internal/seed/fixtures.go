package seed

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mrcoldpotato/talentflow-v2/internal/models"
)

// Fixtures replaces the generated assessments with hand written ones.
//
//	assessments:
//	  - job: senior-engineer-1
//	    title: Backend screening
//	    sections:
//	      - id: basics
//	        title: Basics
//	        questions:
//	          - {id: q1, type: numeric, question: Years of Go?, required: true, numericRange: {min: 0, max: 40}}
//	          - {id: q2, type: long, question: Tell us more, condition: {questionId: q1, equals: 0}}
//
// Questions use the same field names as the JSON API.
type Fixtures struct {
	Assessments []AssessmentFixture `yaml:"assessments"`
}

type AssessmentFixture struct {
	// Slug of the seeded job the assessment belongs to.
	Job      string `yaml:"job"`
	Title    string `yaml:"title"`
	Sections []any  `yaml:"sections"`
}

func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures file: %w", err)
	}
	return ParseFixtures(data)
}

func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fixtures YAML: %w", err)
	}
	return &f, nil
}

// Assessment decodes the fixture sections through the JSON question codec.
func (f AssessmentFixture) Assessment(jobID string) (models.Assessment, error) {
	raw, err := json.Marshal(f.Sections)
	if err != nil {
		return models.Assessment{}, fmt.Errorf("fixture %q: %w", f.Title, err)
	}

	var sections models.Sections
	if err := json.Unmarshal(raw, &sections); err != nil {
		return models.Assessment{}, fmt.Errorf("fixture %q: %w", f.Title, err)
	}

	return models.Assessment{JobID: jobID, Title: f.Title, Sections: sections}, nil
}
