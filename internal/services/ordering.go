package services

import (
	"fmt"

	"github.com/mrcoldpotato/talentflow-v2/internal/models"
	"github.com/mrcoldpotato/talentflow-v2/pkg/fault"
)

// Reorder moves the job at fromIndex to toIndex (indices after the removal,
// i.e. move and not swap) and rewrites every Order to its new position, so
// the result is always numbered 0..N-1. jobs itself is left untouched.
func Reorder(jobs []models.Job, fromIndex, toIndex int) ([]models.Job, error) {
	n := len(jobs)
	if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n {
		return nil, fault.NewClientError(
			fmt.Sprintf("reorder indices out of range: from %d to %d with %d jobs", fromIndex, toIndex, n),
			fault.ErrInvalidInput,
		)
	}

	out := make([]models.Job, 0, n)
	moved := jobs[fromIndex]
	for i, job := range jobs {
		if i != fromIndex {
			out = append(out, job)
		}
	}
	out = append(out[:toIndex], append([]models.Job{moved}, out[toIndex:]...)...)

	for i := range out {
		out[i].Order = i
	}
	return out, nil
}
