package models

import (
	"database/sql/driver"
	"time"
)

type Stage string

const (
	StageApplied  Stage = "applied"
	StageScreen   Stage = "screen"
	StageTech     Stage = "tech"
	StageOffer    Stage = "offer"
	StageHired    Stage = "hired"
	StageRejected Stage = "rejected"
)

// Stages lists the pipeline in board order.
var Stages = []Stage{StageApplied, StageScreen, StageTech, StageOffer, StageHired, StageRejected}

func (s Stage) Valid() bool {
	for _, st := range Stages {
		if s == st {
			return true
		}
	}
	return false
}

// Notes is persisted as a JSON array column.
type Notes []string

func (n Notes) Value() (driver.Value, error) {
	if n == nil {
		return "[]", nil
	}
	return valueJSON([]string(n))
}

func (n *Notes) Scan(src any) error {
	return scanJSON(src, (*[]string)(n))
}

type Candidate struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	JobID     *string   `db:"job_id" json:"jobId,omitempty"`
	Stage     Stage     `db:"stage" json:"stage"`
	Notes     Notes     `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type CreateCandidateDTO struct {
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	JobID     *string   `db:"job_id"`
	Stage     Stage     `db:"stage"`
	Notes     Notes     `db:"notes"`
	CreatedAt time.Time `db:"created_at"`
}

func (d *CreateCandidateDTO) ToModel(id string) any {
	return &Candidate{
		ID:        id,
		Name:      d.Name,
		Email:     d.Email,
		JobID:     d.JobID,
		Stage:     d.Stage,
		Notes:     d.Notes,
		CreatedAt: d.CreatedAt,
	}
}

// CandidateStageDTO moves a candidate; From is only carried to the save hooks.
type CandidateStageDTO struct {
	Stage Stage `db:"stage"`
	From  Stage `db:"-"`
}

func (d *CandidateStageDTO) ToModel(id string) any {
	return &Candidate{ID: id, Stage: d.Stage}
}

// CandidateNotesDTO replaces the note list; Added is the note being appended.
type CandidateNotesDTO struct {
	Notes Notes  `db:"notes"`
	Added string `db:"-"`
}

func (d *CandidateNotesDTO) ToModel(id string) any {
	return &Candidate{ID: id, Notes: d.Notes}
}
