package models

import "time"

type EventType string

const (
	EventStage EventType = "stage"
	EventNote  EventType = "note"
)

type TimelineEvent struct {
	ID          string    `db:"id" json:"id"`
	CandidateID string    `db:"candidate_id" json:"candidateId"`
	Type        EventType `db:"event_type" json:"type"`
	From        string    `db:"from_stage" json:"from,omitempty"`
	To          string    `db:"to_stage" json:"to,omitempty"`
	Note        string    `db:"note" json:"note,omitempty"`
	TS          time.Time `db:"ts" json:"ts"`
}

type TimelineEventDTO struct {
	CandidateID string    `db:"candidate_id"`
	Type        EventType `db:"event_type"`
	From        string    `db:"from_stage"`
	To          string    `db:"to_stage"`
	Note        string    `db:"note"`
	TS          time.Time `db:"ts"`
}

func (d *TimelineEventDTO) ToModel(id string) any {
	return &TimelineEvent{
		ID:          id,
		CandidateID: d.CandidateID,
		Type:        d.Type,
		From:        d.From,
		To:          d.To,
		Note:        d.Note,
		TS:          d.TS,
	}
}
