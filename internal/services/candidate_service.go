package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mrcoldpotato/talentflow-v2/internal/models"
	"github.com/mrcoldpotato/talentflow-v2/internal/pkg/store"
	"github.com/mrcoldpotato/talentflow-v2/pkg/fault"
)

const candidateColumns = "id, name, email, job_id, stage, notes, created_at"

type CandidateFilter struct {
	JobID  string
	Search string
	Stage  models.Stage
}

type CandidateInput struct {
	Name  string       `json:"name"`
	Email string       `json:"email"`
	JobID *string      `json:"jobId"`
	Stage models.Stage `json:"stage"`
}

// Handles candidates and the timeline events their changes produce.
type CandidateService interface {
	ListCandidates(ctx context.Context, filter CandidateFilter) ([]models.Candidate, error)
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	CreateCandidate(ctx context.Context, input CandidateInput) (*models.Candidate, error)
	// Moves the candidate to stage and records a stage event.
	UpdateStage(ctx context.Context, id string, stage models.Stage) (*models.Candidate, error)
	// Appends note to the candidate and records a note event.
	AddNote(ctx context.Context, id string, note string) (*models.Candidate, error)
	// Groups the candidates of jobID (all candidates when empty) per stage.
	Board(ctx context.Context, jobID string) (*Board, error)
}

type candidateServiceImpl struct {
	store store.Datastorer[models.Candidate]
	log   *zap.Logger
}

// Instantiate the CandidateService.
func NewCandidateService(db *sqlx.DB, log *zap.Logger) CandidateService {
	ds := store.NewDataStore[models.Candidate](db, "candidates")
	ds.SetHooks(store.Hooks{
		PostSave: []func(ctx context.Context, tx *sqlx.Tx, data store.DTO, model any, isNew bool) error{
			recordTimelineEvent,
		},
	})

	return &candidateServiceImpl{store: ds, log: log}
}

// recordTimelineEvent writes the event matching a candidate change in the
// same transaction as the change itself.
func recordTimelineEvent(ctx context.Context, tx *sqlx.Tx, data store.DTO, model any, isNew bool) error {
	var (
		candidateID string
		event       *models.TimelineEventDTO
	)

	switch dto := data.(type) {
	case *models.CreateCandidateDTO:
		c := model.(*models.Candidate)
		candidateID = c.ID
		event = &models.TimelineEventDTO{Type: models.EventNote, Note: dto.Name + " added"}
	case *models.CandidateStageDTO:
		c := model.(*models.Candidate)
		candidateID = c.ID
		event = &models.TimelineEventDTO{
			Type: models.EventStage,
			From: string(dto.From),
			To:   string(dto.Stage),
			Note: "Stage changed to " + string(dto.Stage),
		}
	case *models.CandidateNotesDTO:
		c := model.(*models.Candidate)
		candidateID = c.ID
		event = &models.TimelineEventDTO{Type: models.EventNote, Note: dto.Added}
	default:
		return nil
	}

	event.CandidateID = candidateID
	event.TS = time.Now().UTC()
	return store.InsertTx(ctx, tx, "timeline_events", uuid.NewString(), event)
}

func (s *candidateServiceImpl) ListCandidates(ctx context.Context, filter CandidateFilter) ([]models.Candidate, error) {
	var (
		where []string
		args  []any
	)

	if filter.JobID != "" {
		where = append(where, "job_id = ?")
		args = append(args, filter.JobID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)")
		pattern := "%" + strings.ToLower(search) + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Stage != "" {
		if !filter.Stage.Valid() {
			return nil, invalidStage(filter.Stage)
		}
		where = append(where, "stage = ?")
		args = append(args, filter.Stage)
	}

	query := "SELECT " + candidateColumns + " FROM candidates"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	return s.store.Select(ctx, query, args...)
}

func (s *candidateServiceImpl) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	c, err := s.store.Get(ctx, "SELECT "+candidateColumns+" FROM candidates WHERE id = ?", id)
	if errors.Is(err, fault.ErrNotFound) {
		return nil, candidateNotFound()
	}
	return c, err
}

func (s *candidateServiceImpl) CreateCandidate(ctx context.Context, input CandidateInput) (*models.Candidate, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "Unnamed"
	}

	stage := input.Stage
	if stage == "" {
		stage = models.StageApplied
	}
	if !stage.Valid() {
		return nil, invalidStage(stage)
	}

	jobID := input.JobID
	if jobID != nil && strings.TrimSpace(*jobID) == "" {
		jobID = nil
	}

	model, err := s.store.Create(ctx, &models.CreateCandidateDTO{
		Name:      name,
		Email:     strings.TrimSpace(input.Email),
		JobID:     jobID,
		Stage:     stage,
		Notes:     models.Notes{},
		CreatedAt: time.Now().UTC(),
	})
	if errors.Is(err, fault.ErrForeignKeyViolation) {
		return nil, fault.NewClientError("Job does not exist", err)
	}
	if err != nil {
		return nil, err
	}

	c := model.(*models.Candidate)
	s.log.Debug("candidate created", zap.String("id", c.ID), zap.String("stage", string(c.Stage)))
	return c, nil
}

func (s *candidateServiceImpl) UpdateStage(ctx context.Context, id string, stage models.Stage) (*models.Candidate, error) {
	if !stage.Valid() {
		return nil, invalidStage(stage)
	}

	current, err := s.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, id, &models.CandidateStageDTO{Stage: stage, From: current.Stage})
	if errors.Is(err, fault.ErrNotFound) {
		return nil, candidateNotFound()
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("candidate stage changed",
		zap.String("id", id),
		zap.String("from", string(current.Stage)),
		zap.String("to", string(stage)),
	)
	return updated, nil
}

func (s *candidateServiceImpl) AddNote(ctx context.Context, id string, note string) (*models.Candidate, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, fault.NewClientError("Note is required", fault.ErrInvalidInput)
	}

	current, err := s.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}

	notes := append(models.Notes{}, current.Notes...)
	notes = append(notes, note)

	updated, err := s.store.Update(ctx, id, &models.CandidateNotesDTO{Notes: notes, Added: note})
	if errors.Is(err, fault.ErrNotFound) {
		return nil, candidateNotFound()
	}
	return updated, err
}

func (s *candidateServiceImpl) Board(ctx context.Context, jobID string) (*Board, error) {
	candidates, err := s.ListCandidates(ctx, CandidateFilter{JobID: jobID})
	if err != nil {
		return nil, err
	}
	return BuildBoard(candidates)
}

func candidateNotFound() error {
	return fault.NewClientError("Candidate not found", fault.ErrNotFound)
}

func invalidStage(stage models.Stage) error {
	return fault.NewClientError(fmt.Sprintf("invalid stage %q", stage), fault.ErrInvalidInput)
}
