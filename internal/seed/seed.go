// Package seed fills an empty database with demo jobs, candidates and
// assessments.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mrcoldpotato/talentflow-v2/internal/config"
	"github.com/mrcoldpotato/talentflow-v2/internal/models"
	"github.com/mrcoldpotato/talentflow-v2/internal/pkg/store"
	"github.com/mrcoldpotato/talentflow-v2/internal/services"
)

var (
	levels   = []string{"Senior", "Junior", "Lead", "Principal"}
	roles    = []string{"Engineer", "Designer", "Manager"}
	tagsPool = []string{"frontend", "backend", "devops", "design", "prod", "hr", "fullstack"}

	generatedQuestionTypes = []models.QuestionType{models.TypeSingle, models.TypeShort, models.TypeNumeric}
)

// generatedAssessments is how many of the first jobs get a generated assessment.
const generatedAssessments = 3

type Seeder struct {
	db          *sqlx.DB
	assessments services.AssessmentService
	log         *zap.Logger
	rng         *rand.Rand
	now         func() time.Time
}

func NewSeeder(db *sqlx.DB, assessments services.AssessmentService, log *zap.Logger, rng *rand.Rand) *Seeder {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x7a1e))
	}
	return &Seeder{db: db, assessments: assessments, log: log, rng: rng, now: time.Now}
}

// SeedIfEmpty writes the demo data unless jobs already exist. It reports
// whether anything was written.
func (s *Seeder) SeedIfEmpty(ctx context.Context, cfg config.SeedConfig) (bool, error) {
	if !cfg.Enabled {
		return false, nil
	}

	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM jobs"); err != nil {
		return false, fmt.Errorf("count jobs: %w", err)
	}
	if count > 0 {
		s.log.Debug("Database already seeded", zap.Int("jobs", count))
		return false, nil
	}

	var fixtures *Fixtures
	if cfg.Fixtures != "" {
		f, err := LoadFixtures(cfg.Fixtures)
		if err != nil {
			return false, err
		}
		fixtures = f
	}

	jobs := s.buildJobs(cfg.Jobs)
	assessments, err := s.buildAssessments(jobs, fixtures)
	if err != nil {
		return false, err
	}

	if err := s.insertPipeline(ctx, jobs, cfg.Candidates); err != nil {
		return false, err
	}

	for _, a := range assessments {
		if _, err := s.assessments.SaveAssessment(ctx, a.JobID, a); err != nil {
			return false, fmt.Errorf("seed assessment for job %s: %w", a.JobID, err)
		}
	}

	s.log.Info("Database seeded",
		zap.Int("jobs", len(jobs)),
		zap.Int("candidates", cfg.Candidates),
		zap.Int("assessments", len(assessments)),
	)
	return true, nil
}

func (s *Seeder) buildJobs(count int) []*models.Job {
	now := s.now().UTC()
	jobs := make([]*models.Job, 0, count)
	for i := range count {
		title := fmt.Sprintf("%s %s %d", levels[i%len(levels)], roles[i%len(roles)], i+1)
		status := models.JobActive
		if s.rng.Float64() <= 0.3 {
			status = models.JobArchived
		}
		created := now.AddDate(0, 0, -i)
		jobs = append(jobs, &models.Job{
			ID:        uuid.NewString(),
			Title:     title,
			Slug:      services.Slugify(title),
			Status:    status,
			Tags:      models.Tags{tagsPool[i%len(tagsPool)]},
			Order:     i,
			CreatedAt: created,
			UpdatedAt: created,
		})
	}
	return jobs
}

// insertPipeline writes jobs, generated candidates and their first timeline
// event in a single transaction.
func (s *Seeder) insertPipeline(ctx context.Context, jobs []*models.Job, candidateCount int) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	now := s.now().UTC()

	for _, job := range jobs {
		dto := &models.CreateJobDTO{
			Title:     job.Title,
			Slug:      job.Slug,
			Status:    job.Status,
			Tags:      job.Tags,
			Order:     job.Order,
			CreatedAt: job.CreatedAt,
			UpdatedAt: job.UpdatedAt,
		}
		if err = store.InsertTx(ctx, tx, "jobs", job.ID, dto); err != nil {
			return fmt.Errorf("seed job %q: %w", job.Title, err)
		}
	}

	for i := range candidateCount {
		name := fmt.Sprintf("Candidate %d", i+1)
		dto := &models.CreateCandidateDTO{
			Name:      name,
			Email:     fmt.Sprintf("candidate%d@example.com", i+1),
			Stage:     models.Stages[s.rng.IntN(len(models.Stages))],
			Notes:     models.Notes{},
			CreatedAt: now.AddDate(0, 0, -s.rng.IntN(366)),
		}
		if len(jobs) > 0 && s.rng.Float64() > 0.2 {
			jobID := jobs[s.rng.IntN(len(jobs))].ID
			dto.JobID = &jobID
		}

		id := uuid.NewString()
		if err = store.InsertTx(ctx, tx, "candidates", id, dto); err != nil {
			return fmt.Errorf("seed candidate %d: %w", i+1, err)
		}
		event := &models.TimelineEventDTO{
			CandidateID: id,
			Type:        models.EventNote,
			Note:        name + " added",
			TS:          dto.CreatedAt,
		}
		if err = store.InsertTx(ctx, tx, "timeline_events", uuid.NewString(), event); err != nil {
			return fmt.Errorf("seed timeline of candidate %d: %w", i+1, err)
		}
	}

	return nil
}

// buildAssessments resolves the fixture assessments against the jobs about
// to be seeded, or generates one for each of the first jobs.
func (s *Seeder) buildAssessments(jobs []*models.Job, fixtures *Fixtures) ([]models.Assessment, error) {
	var assessments []models.Assessment

	if fixtures == nil {
		for _, job := range jobs[:min(generatedAssessments, len(jobs))] {
			assessments = append(assessments, generateAssessment(job))
		}
		return assessments, nil
	}

	bySlug := make(map[string]string, len(jobs))
	for _, j := range jobs {
		bySlug[j.Slug] = j.ID
	}
	for _, f := range fixtures.Assessments {
		jobID, ok := bySlug[f.Job]
		if !ok {
			return nil, fmt.Errorf("fixture assessment %q: no seeded job with slug %q", f.Title, f.Job)
		}
		a, err := f.Assessment(jobID)
		if err != nil {
			return nil, err
		}
		if issues := services.Blocking(services.Lint(a)); len(issues) > 0 {
			return nil, fmt.Errorf("fixture assessment %q: %s", f.Title, issues[0])
		}
		assessments = append(assessments, a)
	}
	return assessments, nil
}

func generateAssessment(job *models.Job) models.Assessment {
	questions := make([]models.Question, 0, 10)
	for qi := range 10 {
		q := models.Question{
			ID:       fmt.Sprintf("q%d", qi+1),
			Text:     fmt.Sprintf("Question %d", qi+1),
			Required: qi%2 == 0,
		}
		switch generatedQuestionTypes[qi%len(generatedQuestionTypes)] {
		case models.TypeSingle:
			q.Kind = models.ChoiceKind{Options: []string{"Yes", "No", "Maybe"}}
		case models.TypeNumeric:
			q.Kind = models.NumericKind{}
		default:
			q.Kind = models.TextKind{}
		}
		questions = append(questions, q)
	}

	return models.Assessment{
		JobID: job.ID,
		Title: job.Title + " Assessment",
		Sections: models.Sections{{
			ID:        "general",
			Title:     "General",
			Questions: questions,
		}},
	}
}
