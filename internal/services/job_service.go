package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mrcoldpotato/talentflow-v2/internal/models"
	"github.com/mrcoldpotato/talentflow-v2/internal/pkg/paginator"
	"github.com/mrcoldpotato/talentflow-v2/internal/pkg/store"
	"github.com/mrcoldpotato/talentflow-v2/pkg/fault"
)

const jobColumns = "id, title, slug, status, tags, sort_order, created_at, updated_at"

var errSlugTaken = fault.NewClientError("Slug must be unique", fault.ErrUniqueViolation)

type JobFilter struct {
	Search   string
	Status   models.JobStatus
	Page     int
	PageSize int
}

type JobInput struct {
	Title  string           `json:"title"`
	Slug   string           `json:"slug"`
	Status models.JobStatus `json:"status"`
	Tags   []string         `json:"tags"`
}

// JobPatch is a partial update; nil fields are left untouched.
type JobPatch struct {
	Title  *string           `json:"title"`
	Slug   *string           `json:"slug"`
	Status *models.JobStatus `json:"status"`
	Tags   *[]string         `json:"tags"`
}

// Handles the jobs list and its ordering.
type JobService interface {
	ListJobs(ctx context.Context, filter JobFilter) (*paginator.PaginatedResponse[models.Job], error)
	// All jobs sorted by order.
	AllJobs(ctx context.Context) ([]models.Job, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
	CreateJob(ctx context.Context, input JobInput) (*models.Job, error)
	UpdateJob(ctx context.Context, id string, patch JobPatch) (*models.Job, error)
	// Moves the job at fromOrder to toOrder and persists the renumbered
	// orders of every job in one transaction.
	Reorder(ctx context.Context, fromOrder, toOrder int) ([]models.Job, error)
}

type jobServiceImpl struct {
	store     store.Datastorer[models.Job]
	paginator paginator.Paginator[models.Job]
	log       *zap.Logger
}

// Instantiate the JobService.
func NewJobService(db *sqlx.DB, log *zap.Logger) JobService {
	ds := store.NewDataStore[models.Job](db, "jobs")
	ds.SetHooks(store.Hooks{
		PreSave: []func(ctx context.Context, tx *sqlx.Tx, id string, data store.DTO, isNew bool) error{
			appendToOrder,
		},
	})

	return &jobServiceImpl{
		store:     ds,
		paginator: paginator.NewPaginator[models.Job](ds),
		log:       log,
	}
}

// appendToOrder places a new job at the end of the list.
func appendToOrder(ctx context.Context, tx *sqlx.Tx, _ string, data store.DTO, isNew bool) error {
	dto, ok := data.(*models.CreateJobDTO)
	if !isNew || !ok {
		return nil
	}

	var count int
	if err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM jobs"); err != nil {
		return err
	}
	dto.Order = count
	return nil
}

func (s *jobServiceImpl) ListJobs(ctx context.Context, filter JobFilter) (*paginator.PaginatedResponse[models.Job], error) {
	var (
		where []string
		args  []any
	)

	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, "LOWER(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, fault.NewClientError("status must be active or archived", fault.ErrInvalidInput)
		}
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	query := "SELECT " + jobColumns + " FROM jobs"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY sort_order"

	return s.paginator.PaginateQuery(ctx, query, args, filter.Page, filter.PageSize)
}

func (s *jobServiceImpl) AllJobs(ctx context.Context) ([]models.Job, error) {
	return s.store.Select(ctx, "SELECT "+jobColumns+" FROM jobs ORDER BY sort_order")
}

func (s *jobServiceImpl) GetJob(ctx context.Context, id string) (*models.Job, error) {
	job, err := s.store.Get(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	if errors.Is(err, fault.ErrNotFound) {
		return nil, fault.NewClientError("Job not found", fault.ErrNotFound)
	}
	return job, err
}

func (s *jobServiceImpl) CreateJob(ctx context.Context, input JobInput) (*models.Job, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fault.NewClientError("Title is required", fault.ErrInvalidInput)
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return nil, fault.NewClientError("Slug is required", fault.ErrInvalidInput)
	}

	status := input.Status
	if status == "" {
		status = models.JobActive
	}
	if !status.Valid() {
		return nil, fault.NewClientError("status must be active or archived", fault.ErrInvalidInput)
	}

	if err := s.ensureSlugFree(ctx, slug, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	model, err := s.store.Create(ctx, &models.CreateJobDTO{
		Title:     title,
		Slug:      slug,
		Status:    status,
		Tags:      cleanTags(input.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, fault.ErrUniqueViolation) {
		return nil, errSlugTaken
	}
	if err != nil {
		return nil, err
	}

	job := model.(*models.Job)
	s.log.Info("job created", zap.String("id", job.ID), zap.String("slug", job.Slug), zap.Int("order", job.Order))
	return job, nil
}

func (s *jobServiceImpl) UpdateJob(ctx context.Context, id string, patch JobPatch) (*models.Job, error) {
	dto := &models.UpdateJobDTO{UpdatedAt: time.Now().UTC()}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fault.NewClientError("Title is required", fault.ErrInvalidInput)
		}
		dto.Title = &title
	}
	if patch.Slug != nil {
		slug := strings.TrimSpace(*patch.Slug)
		if slug == "" {
			return nil, fault.NewClientError("Slug is required", fault.ErrInvalidInput)
		}
		if err := s.ensureSlugFree(ctx, slug, id); err != nil {
			return nil, err
		}
		dto.Slug = &slug
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, fault.NewClientError("status must be active or archived", fault.ErrInvalidInput)
		}
		dto.Status = patch.Status
	}
	if patch.Tags != nil {
		tags := cleanTags(*patch.Tags)
		dto.Tags = &tags
	}

	job, err := s.store.Update(ctx, id, dto)
	switch {
	case errors.Is(err, fault.ErrUniqueViolation):
		return nil, errSlugTaken
	case errors.Is(err, fault.ErrNotFound):
		return nil, fault.NewClientError("Job not found", fault.ErrNotFound)
	case err != nil:
		return nil, err
	}
	return job, nil
}

func (s *jobServiceImpl) Reorder(ctx context.Context, fromOrder, toOrder int) ([]models.Job, error) {
	jobs, err := s.AllJobs(ctx)
	if err != nil {
		return nil, err
	}

	reordered, err := Reorder(jobs, fromOrder, toOrder)
	if err != nil {
		return nil, err
	}

	rows := make([][]any, 0, len(reordered))
	for _, job := range reordered {
		rows = append(rows, []any{job.Order, job.ID})
	}
	if err := s.store.BulkUpdate(ctx, "UPDATE jobs SET sort_order = ? WHERE id = ?", rows); err != nil {
		return nil, fault.NewInternalError("failed to persist job order", err)
	}

	s.log.Info("jobs reordered", zap.Int("from", fromOrder), zap.Int("to", toOrder), zap.Int("count", len(reordered)))
	return reordered, nil
}

// ensureSlugFree fails when another job than exceptID already uses slug.
func (s *jobServiceImpl) ensureSlugFree(ctx context.Context, slug, exceptID string) error {
	existing, err := s.store.Get(ctx, "SELECT "+jobColumns+" FROM jobs WHERE slug = ?", slug)
	if errors.Is(err, fault.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != exceptID {
		return errSlugTaken
	}
	return nil
}

// cleanTags trims tags and drops blanks and duplicates, keeping first-seen order.
func cleanTags(tags []string) models.Tags {
	out := models.Tags{}
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
