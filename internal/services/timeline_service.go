package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mrcoldpotato/talentflow-v2/internal/models"
	"github.com/mrcoldpotato/talentflow-v2/internal/pkg/store"
	"github.com/mrcoldpotato/talentflow-v2/pkg/fault"
)

type TimelineInput struct {
	CandidateID string           `json:"candidateId"`
	Type        models.EventType `json:"type"`
	From        string           `json:"from"`
	To          string           `json:"to"`
	Note        string           `json:"note"`
}

type TimelineService interface {
	// Events of a candidate, oldest first.
	ListEvents(ctx context.Context, candidateID string) ([]models.TimelineEvent, error)
	AppendEvent(ctx context.Context, input TimelineInput) (*models.TimelineEvent, error)
}

type timelineServiceImpl struct {
	store store.Datastorer[models.TimelineEvent]
}

// Instantiate the TimelineService.
func NewTimelineService(db *sqlx.DB) TimelineService {
	return &timelineServiceImpl{store: store.NewDataStore[models.TimelineEvent](db, "timeline_events")}
}

func (s *timelineServiceImpl) ListEvents(ctx context.Context, candidateID string) ([]models.TimelineEvent, error) {
	if strings.TrimSpace(candidateID) == "" {
		return nil, fault.NewClientError("candidateId is required", fault.ErrInvalidInput)
	}

	return s.store.Select(ctx,
		"SELECT id, candidate_id, event_type, from_stage, to_stage, note, ts FROM timeline_events WHERE candidate_id = ? ORDER BY ts, id",
		candidateID,
	)
}

func (s *timelineServiceImpl) AppendEvent(ctx context.Context, input TimelineInput) (*models.TimelineEvent, error) {
	if strings.TrimSpace(input.CandidateID) == "" {
		return nil, fault.NewClientError("candidateId is required", fault.ErrInvalidInput)
	}

	eventType := input.Type
	if eventType == "" {
		eventType = models.EventNote
	}
	if eventType != models.EventNote && eventType != models.EventStage {
		return nil, fault.NewClientError("type must be stage or note", fault.ErrInvalidInput)
	}

	model, err := s.store.Create(ctx, &models.TimelineEventDTO{
		CandidateID: input.CandidateID,
		Type:        eventType,
		From:        input.From,
		To:          input.To,
		Note:        input.Note,
		TS:          time.Now().UTC(),
	})
	if errors.Is(err, fault.ErrForeignKeyViolation) {
		return nil, fault.NewClientError("Candidate does not exist", err)
	}
	if err != nil {
		return nil, err
	}
	return model.(*models.TimelineEvent), nil
}
