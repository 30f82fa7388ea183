package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrcoldpotato/talentflow-v2/internal/database/databasetest"
	"github.com/mrcoldpotato/talentflow-v2/internal/models"
	"github.com/mrcoldpotato/talentflow-v2/internal/router"
	"github.com/mrcoldpotato/talentflow-v2/internal/services"
)

func newTestServer(t *testing.T, titles ...string) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := databasetest.Open(t)
	log := zap.NewNop()
	jobs := services.NewJobService(db, log)
	for _, title := range titles {
		if _, err := jobs.CreateJob(context.Background(), services.JobInput{Title: title}); err != nil {
			t.Fatalf("create job: %v", err)
		}
	}

	srv := httptest.NewServer(router.Setup(log, router.Services{
		Jobs:        jobs,
		Candidates:  services.NewCandidateService(db, log),
		Timeline:    services.NewTimelineService(db),
		Assessments: services.NewAssessmentService(db, services.NewFormEngine(), nil, services.SubmissionOptions{}, log),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientAgainstServer(t *testing.T) {
	srv := newTestServer(t, "Alpha", "Beta", "Gamma")
	api := New(srv.URL+"/", nil)
	ctx := context.Background()

	c := NewCoordinator(api)
	if err := c.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := c.Move(ctx, 2, 0); err != nil {
		t.Fatalf("move: %v", err)
	}

	var titles []string
	for _, j := range c.Jobs() {
		titles = append(titles, j.Title)
	}
	if len(titles) != 3 || titles[0] != "Gamma" || titles[1] != "Alpha" || titles[2] != "Beta" {
		t.Errorf("unexpected order after move: %v", titles)
	}

	job, err := api.SetJobStatus(ctx, c.Jobs()[0].ID, models.JobArchived)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if job.Status != models.JobArchived {
		t.Errorf("expected archived, got %s", job.Status)
	}

	err = api.ReorderJob(ctx, job.ID, 0, 7)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 api error, got %v", err)
	}

	_, err = api.SetJobStatus(ctx, "missing", models.JobActive)
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound || apiErr.Message != "Job not found" {
		t.Errorf("expected 404 api error, got %v", err)
	}
}
