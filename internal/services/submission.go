package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrcoldpotato/talentflow-v2/internal/models"
	"github.com/mrcoldpotato/talentflow-v2/internal/pkg/workerpool"
	"github.com/mrcoldpotato/talentflow-v2/pkg/fault"
)

// ValidationError rejects a submission. Violations holds the codes from
// Validate and Messages the matching human text, both keyed by question id.
type ValidationError struct {
	Violations map[string]string
	Messages   map[string]string
}

func (e *ValidationError) Error() string {
	ids := make([]string, 0, len(e.Violations))
	for id := range e.Violations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return fmt.Sprintf("submission has %d invalid answers: %v", len(ids), ids)
}

func (e *ValidationError) Unwrap() error {
	return fault.ErrInvalidInput
}

func newSubmissionID() string {
	return uuid.NewString()
}

// persist writes the submission on the worker pool, retrying on failure.
// When the pool refuses the job the write happens inline.
func (s *assessmentServiceImpl) persist(ctx context.Context, id string, dto *models.SubmissionDTO) {
	log := s.log.With(zap.String("submission_id", id), zap.String("job_id", dto.JobID))

	write := func(ctx context.Context) error {
		_, err := s.submissions.Insert(ctx, id, dto)
		return err
	}
	onFailure := func(err error) {
		log.Error("submission lost", zap.Error(err))
	}

	if s.pool != nil && s.pool.Submit(workerpool.WithRetry(log, s.opts.Retries, s.opts.RetryDelay, write, onFailure)) {
		return
	}

	log.Warn("writing submission inline")
	workerpool.WithRetry(log, s.opts.Retries, s.opts.RetryDelay, write, onFailure)(context.WithoutCancel(ctx))
}
