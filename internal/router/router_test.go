package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/mrcoldpotato/talentflow-v2/internal/database/databasetest"
	"github.com/mrcoldpotato/talentflow-v2/internal/models"
	"github.com/mrcoldpotato/talentflow-v2/internal/pkg/workerpool"
	"github.com/mrcoldpotato/talentflow-v2/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(t *testing.T) (*gin.Engine, *workerpool.WorkerPool) {
	t.Helper()
	db := databasetest.Open(t)
	log := zap.NewNop()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	pool := workerpool.NewWorkerPool(ctx, log, 1, 8)

	return Setup(log, Services{
		Jobs:        services.NewJobService(db, log),
		Candidates:  services.NewCandidateService(db, log),
		Timeline:    services.NewTimelineService(db),
		Assessments: services.NewAssessmentService(db, services.NewFormEngine(), pool, services.SubmissionOptions{Retries: 1}, log),
	}), pool
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func TestJobsAPI(t *testing.T) {
	r, _ := setupTestRouter(t)

	var ids []string
	for _, title := range []string{"Job A", "Job B", "Job C"} {
		w := do(t, r, http.MethodPost, "/api/jobs", map[string]any{"title": title, "tags": []string{"remote"}})
		if w.Code != http.StatusCreated {
			t.Fatalf("create %s: %d %s", title, w.Code, w.Body.String())
		}
		ids = append(ids, decode[models.Job](t, w).ID)
	}

	w := do(t, r, http.MethodPost, "/api/jobs", map[string]any{"title": "Other", "slug": "job-a"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate slug, got %d", w.Code)
	}
	if diff := cmp.Diff(map[string]string{"error": "Slug must be unique"}, decode[map[string]string](t, w)); diff != "" {
		t.Errorf("error body mismatch (-want +got):\n%s", diff)
	}

	w = do(t, r, http.MethodPatch, "/api/jobs/"+ids[0]+"/reorder", map[string]int{"fromOrder": 0, "toOrder": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("reorder: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/jobs?page=1&pageSize=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}
	list := decode[struct {
		Items []models.Job `json:"items"`
		Total int          `json:"total"`
	}](t, w)
	var got []string
	for _, j := range list.Items {
		got = append(got, j.ID)
	}
	if diff := cmp.Diff([]string{ids[1], ids[2], ids[0]}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if list.Total != 3 {
		t.Errorf("expected total 3, got %d", list.Total)
	}

	w = do(t, r, http.MethodPatch, "/api/jobs/"+ids[0]+"/reorder", map[string]int{"fromOrder": 0, "toOrder": 9})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for out of range reorder, got %d", w.Code)
	}
	w = do(t, r, http.MethodPatch, "/api/jobs/"+ids[0]+"/reorder", map[string]int{"fromOrder": 0})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing toOrder, got %d", w.Code)
	}

	w = do(t, r, http.MethodPut, "/api/jobs/"+ids[1], map[string]string{"status": "archived"})
	if w.Code != http.StatusOK || decode[models.Job](t, w).Status != models.JobArchived {
		t.Errorf("archive: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/jobs/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if decode[map[string]string](t, w)["error"] != "Job not found" {
		t.Errorf("unexpected error body %s", w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/jobs?page=abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad page, got %d", w.Code)
	}
}

func TestCandidatesAndTimelineAPI(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/candidates", map[string]string{"name": "Ada", "email": "ada@example.com"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	candidate := decode[models.Candidate](t, w)

	w = do(t, r, http.MethodPatch, "/api/candidates/"+candidate.ID+"/stage", map[string]string{"stage": "tech"})
	if w.Code != http.StatusOK || decode[models.Candidate](t, w).Stage != models.StageTech {
		t.Fatalf("stage: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPatch, "/api/candidates/"+candidate.ID+"/stage", map[string]string{"stage": "limbo"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown stage, got %d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/timeline", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without candidateId, got %d", w.Code)
	}

	w = do(t, r, http.MethodPost, "/api/timeline", map[string]string{"candidateId": candidate.ID, "note": "Called"})
	if w.Code != http.StatusCreated {
		t.Fatalf("append: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/timeline?candidateId="+candidate.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("timeline: %d", w.Code)
	}
	var notes []string
	for _, e := range decode[[]models.TimelineEvent](t, w) {
		notes = append(notes, e.Note)
	}
	if diff := cmp.Diff([]string{"Ada added", "Stage changed to tech", "Called"}, notes); diff != "" {
		t.Errorf("timeline mismatch (-want +got):\n%s", diff)
	}

	w = do(t, r, http.MethodGet, "/api/candidates/board", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("board: %d", w.Code)
	}
	board := decode[services.Board](t, w)
	if board.Total != 1 || board.Columns[2].Stage != models.StageTech || board.Columns[2].Share != 100 {
		t.Errorf("unexpected board: %+v", board)
	}

	w = do(t, r, http.MethodGet, "/api/candidates/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestAssessmentsAPI(t *testing.T) {
	r, pool := setupTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/jobs", map[string]string{"title": "Engineer"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create job: %d", w.Code)
	}
	jobID := decode[models.Job](t, w).ID

	w = do(t, r, http.MethodGet, "/api/assessments/"+jobID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get default: %d", w.Code)
	}
	if a := decode[models.Assessment](t, w); a.Title != "New Assessment" || len(a.Sections) != 0 {
		t.Errorf("unexpected default: %+v", a)
	}

	definition := json.RawMessage(`{
		"title": "Screening",
		"sections": [{
			"id": "s1",
			"title": "Basics",
			"questions": [
				{"id": "Q1", "type": "numeric", "question": "Years?", "required": true, "numericRange": {"min": 1, "max": 10}},
				{"id": "Q2", "type": "short", "question": "Why five?", "required": true, "condition": {"questionId": "Q1", "equals": 5}}
			]
		}]
	}`)
	w = do(t, r, http.MethodPut, "/api/assessments/"+jobID, definition)
	if w.Code != http.StatusOK {
		t.Fatalf("put: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPost, "/api/assessments/"+jobID+"/preview", map[string]any{"answers": map[string]any{"Q1": 12}})
	if w.Code != http.StatusOK {
		t.Fatalf("preview: %d", w.Code)
	}
	preview := decode[services.Preview](t, w)
	if diff := cmp.Diff(map[string]string{"Q1": "max-violation"}, preview.Violations); diff != "" {
		t.Errorf("violations mismatch (-want +got):\n%s", diff)
	}

	w = do(t, r, http.MethodPost, "/api/assessments/"+jobID+"/submit", map[string]any{"answers": map[string]any{"Q1": 5}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	rejected := decode[struct {
		Errors map[string]string `json:"errors"`
	}](t, w)
	if diff := cmp.Diff(map[string]string{"Q2": "This question is required"}, rejected.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}

	w = do(t, r, http.MethodPost, "/api/assessments/"+jobID+"/submit", map[string]any{"answers": map[string]any{"Q1": 5, "Q2": "luck"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: %d %s", w.Code, w.Body.String())
	}
	accepted := decode[struct {
		Status     string            `json:"status"`
		Submission models.Submission `json:"submission"`
	}](t, w)
	if accepted.Status != "ok" || accepted.Submission.ID == "" {
		t.Errorf("unexpected response: %+v", accepted)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool.Shutdown(ctx)

	w = do(t, r, http.MethodGet, "/api/assessments/"+jobID+"/submissions", nil)
	if subs := decode[[]models.Submission](t, w); len(subs) != 1 || subs[0].ID != accepted.Submission.ID {
		t.Errorf("unexpected stored submissions: %+v", subs)
	}

	bad := json.RawMessage(`{"sections": [{"id": "s1", "questions": [{"id": "q1", "type": "short", "question": "Pick", "condition": {"questionId": "q1", "equals": "x"}}]}]}`)
	w = do(t, r, http.MethodPut, "/api/assessments/"+jobID, bad)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected lint failure 400, got %d", w.Code)
	}
}

func TestMiddleware(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("expected X-Frame-Options DENY, got %q", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected nosniff, got %q", got)
	}

	w = do(t, r, http.MethodGet, "/nowhere", nil)
	if w.Code != http.StatusNotFound || decode[map[string]string](t, w)["error"] != "Not found" {
		t.Errorf("unexpected 404 response: %d %s", w.Code, w.Body.String())
	}
}
