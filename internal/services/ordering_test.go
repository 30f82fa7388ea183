package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mrcoldpotato/talentflow-v2/internal/models"
	"github.com/mrcoldpotato/talentflow-v2/pkg/fault"
)

func jobsInOrder(n int) []models.Job {
	jobs := make([]models.Job, n)
	for i := range n {
		jobs[i] = models.Job{ID: fmt.Sprint(i), Title: fmt.Sprintf("Job %d", i), Order: i}
	}
	return jobs
}

func ids(jobs []models.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

func TestReorder_MoveForward(t *testing.T) {
	jobs := jobsInOrder(5)

	got, err := Reorder(jobs, 0, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"1", "2", "3", "0", "4"}, ids(got)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	for i, job := range got {
		if job.Order != i {
			t.Errorf("job %s: expected order %d, got %d", job.ID, i, job.Order)
		}
	}
}

func TestReorder_DoesNotMutateInput(t *testing.T) {
	jobs := jobsInOrder(4)
	before := append([]models.Job(nil), jobs...)

	if _, err := Reorder(jobs, 3, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(before, jobs); diff != "" {
		t.Errorf("input was modified (-want +got):\n%s", diff)
	}
}

func TestReorder_DenseForEveryMove(t *testing.T) {
	const n = 6
	for from := range n {
		for to := range n {
			t.Run(fmt.Sprintf("%d->%d", from, to), func(t *testing.T) {
				jobs := jobsInOrder(n)
				got, err := Reorder(jobs, from, to)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(got) != n {
					t.Fatalf("expected %d jobs, got %d", n, len(got))
				}
				for i, job := range got {
					if job.Order != i {
						t.Errorf("position %d carries order %d", i, job.Order)
					}
				}
				if got[to].ID != jobs[from].ID {
					t.Errorf("expected job %s at %d, got %s", jobs[from].ID, to, got[to].ID)
				}
				if from == to {
					if diff := cmp.Diff(jobs, got); diff != "" {
						t.Errorf("no-op move changed the list (-want +got):\n%s", diff)
					}
				}
			})
		}
	}
}

func TestReorder_RepairsGaps(t *testing.T) {
	jobs := []models.Job{{ID: "a", Order: 3}, {ID: "b", Order: 7}, {ID: "c", Order: 9}}

	got, err := Reorder(jobs, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []models.Job{{ID: "c", Order: 0}, {ID: "a", Order: 1}, {ID: "b", Order: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReorder_OutOfRange(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		from, to int
	}{
		{"negative from", 3, -1, 0},
		{"negative to", 3, 0, -1},
		{"from past end", 3, 3, 0},
		{"to past end", 3, 0, 3},
		{"empty list", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reorder(jobsInOrder(tt.n), tt.from, tt.to)
			if err == nil {
				t.Fatalf("expected error, got %v", got)
			}
			if !errors.Is(err, fault.ErrInvalidInput) || !fault.IsClientError(err) {
				t.Errorf("expected client invalid input error, got %v", err)
			}
		})
	}
}
