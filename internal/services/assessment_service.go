package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mrcoldpotato/talentflow-v2/internal/models"
	"github.com/mrcoldpotato/talentflow-v2/internal/pkg/store"
	"github.com/mrcoldpotato/talentflow-v2/internal/pkg/workerpool"
	"github.com/mrcoldpotato/talentflow-v2/pkg/fault"
)

const DefaultAssessmentTitle = "New Assessment"

// Preview is what a candidate would see for a set of answers.
type Preview struct {
	Sections   []models.Section  `json:"sections"`
	Violations map[string]string `json:"violations"`
	Errors     map[string]string `json:"errors"`
}

type SubmitRequest struct {
	CandidateID *string          `json:"candidateId"`
	Answers     models.AnswerSet `json:"answers"`
}

// Handles assessment definitions and the answers submitted against them.
type AssessmentService interface {
	// Returns the saved assessment, or an empty default one.
	GetAssessment(ctx context.Context, jobID string) (*models.Assessment, error)
	// Overwrites the assessment of jobID. Definitions with blocking Lint issues are refused.
	SaveAssessment(ctx context.Context, jobID string, assessment models.Assessment) (*models.Assessment, error)
	Preview(ctx context.Context, jobID string, answers models.AnswerSet) (*Preview, error)
	// Validates the answers and hands the submission to the worker pool.
	// Invalid answers fail with a *ValidationError.
	Submit(ctx context.Context, jobID string, req SubmitRequest) (*models.Submission, error)
	ListSubmissions(ctx context.Context, jobID string) ([]models.Submission, error)
}

// Controls how submissions are written in the background.
type SubmissionOptions struct {
	Retries    int
	RetryDelay time.Duration
}

type assessmentServiceImpl struct {
	assessments store.Datastorer[models.Assessment]
	submissions store.Datastorer[models.Submission]
	engine      FormEngine
	pool        *workerpool.WorkerPool
	opts        SubmissionOptions
	log         *zap.Logger
}

// Instantiate the AssessmentService.
func NewAssessmentService(db *sqlx.DB, engine FormEngine, pool *workerpool.WorkerPool, opts SubmissionOptions, log *zap.Logger) AssessmentService {
	return &assessmentServiceImpl{
		assessments: store.NewDataStore[models.Assessment](db, "assessments"),
		submissions: store.NewDataStore[models.Submission](db, "submissions"),
		engine:      engine,
		pool:        pool,
		opts:        opts,
		log:         log,
	}
}

func (s *assessmentServiceImpl) GetAssessment(ctx context.Context, jobID string) (*models.Assessment, error) {
	a, err := s.assessments.Get(ctx, "SELECT job_id, title, sections, updated_at FROM assessments WHERE job_id = ?", jobID)
	if errors.Is(err, fault.ErrNotFound) {
		return &models.Assessment{JobID: jobID, Title: DefaultAssessmentTitle, Sections: models.Sections{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if a.Sections == nil {
		a.Sections = models.Sections{}
	}
	return a, nil
}

func (s *assessmentServiceImpl) SaveAssessment(ctx context.Context, jobID string, assessment models.Assessment) (*models.Assessment, error) {
	if err := s.ensureJob(ctx, jobID); err != nil {
		return nil, err
	}

	assessment.JobID = jobID
	assessment.Title = strings.TrimSpace(assessment.Title)
	if assessment.Title == "" {
		assessment.Title = DefaultAssessmentTitle
	}
	if assessment.Sections == nil {
		assessment.Sections = models.Sections{}
	}

	issues := Lint(assessment)
	if blocking := Blocking(issues); len(blocking) > 0 {
		problems := make([]string, 0, len(blocking))
		for _, issue := range blocking {
			problems = append(problems, issue.String())
		}
		return nil, fault.NewClientError("Assessment is invalid: "+strings.Join(problems, "; "), fault.ErrInvalidInput)
	}
	for _, issue := range issues {
		s.log.Debug("assessment draft warning", zap.String("job_id", jobID), zap.String("issue", issue.String()))
	}

	now := time.Now().UTC()
	assessment.UpdatedAt = &now

	db := s.assessments.Base()
	query := db.Rebind(`INSERT INTO assessments (job_id, title, sections, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (job_id) DO UPDATE SET title = excluded.title, sections = excluded.sections, updated_at = excluded.updated_at`)
	if _, err := db.ExecContext(ctx, query, assessment.JobID, assessment.Title, assessment.Sections, now); err != nil {
		return nil, fault.NewInternalError("failed to save assessment", err)
	}

	s.log.Info("assessment saved", zap.String("job_id", jobID), zap.Int("questions", len(assessment.Questions())))
	return &assessment, nil
}

func (s *assessmentServiceImpl) Preview(ctx context.Context, jobID string, answers models.AnswerSet) (*Preview, error) {
	assessment, err := s.GetAssessment(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if answers == nil {
		answers = models.AnswerSet{}
	}

	violations := s.engine.Validate(*assessment, answers)
	return &Preview{
		Sections:   s.engine.VisibleQuestions(*assessment, answers),
		Violations: violations,
		Errors:     Messages(*assessment, violations),
	}, nil
}

func (s *assessmentServiceImpl) Submit(ctx context.Context, jobID string, req SubmitRequest) (*models.Submission, error) {
	assessment, err := s.GetAssessment(ctx, jobID)
	if err != nil {
		return nil, err
	}

	answers := req.Answers
	if answers == nil {
		answers = models.AnswerSet{}
	}

	if violations := s.engine.Validate(*assessment, answers); len(violations) > 0 {
		return nil, &ValidationError{
			Violations: violations,
			Messages:   Messages(*assessment, violations),
		}
	}

	candidateID := req.CandidateID
	if candidateID != nil && strings.TrimSpace(*candidateID) == "" {
		candidateID = nil
	}

	dto := &models.SubmissionDTO{
		JobID:       jobID,
		CandidateID: candidateID,
		Answers:     answers,
		SubmittedAt: time.Now().UTC(),
	}
	id := newSubmissionID()
	submission := dto.ToModel(id).(*models.Submission)

	s.persist(ctx, id, dto)
	return submission, nil
}

func (s *assessmentServiceImpl) ListSubmissions(ctx context.Context, jobID string) ([]models.Submission, error) {
	return s.submissions.Select(ctx,
		"SELECT id, job_id, candidate_id, answers, submitted_at FROM submissions WHERE job_id = ? ORDER BY submitted_at, id",
		jobID,
	)
}

func (s *assessmentServiceImpl) ensureJob(ctx context.Context, jobID string) error {
	_, err := s.assessments.QueryRow(ctx, "SELECT id FROM jobs WHERE id = ?", jobID)
	if errors.Is(err, fault.ErrNotFound) {
		return fault.NewClientError("Job not found", fault.ErrNotFound)
	}
	return err
}
