package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mrcoldpotato/talentflow-v2/internal/models"
	"github.com/mrcoldpotato/talentflow-v2/internal/services"
)

// JobsAPI is the part of the API the Coordinator needs.
type JobsAPI interface {
	ListJobs(ctx context.Context) ([]models.Job, error)
	ReorderJob(ctx context.Context, id string, fromOrder, toOrder int) error
}

// Coordinator keeps the client side job list in order. A move shows up
// immediately and is then committed; whatever the outcome the list is
// reloaded from the server afterwards.
type Coordinator struct {
	api  JobsAPI
	mu   sync.Mutex
	jobs []models.Job
}

func NewCoordinator(api JobsAPI) *Coordinator {
	return &Coordinator{api: api}
}

// Jobs returns a copy of the current list.
func (c *Coordinator) Jobs() []models.Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Job(nil), c.jobs...)
}

// Load replaces the list with the server's.
func (c *Coordinator) Load(ctx context.Context) error {
	jobs, err := c.api.ListJobs(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.jobs = jobs
	c.mu.Unlock()
	return nil
}

// Apply performs the move locally and returns the job that moved.
func (c *Coordinator) Apply(fromIndex, toIndex int) (models.Job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := services.Reorder(c.jobs, fromIndex, toIndex)
	if err != nil {
		return models.Job{}, err
	}
	c.jobs = next
	return next[toIndex], nil
}

// Commit sends a move that was already applied and reloads the list. A
// failed commit is never retried; the reload is the recovery.
func (c *Coordinator) Commit(ctx context.Context, jobID string, fromIndex, toIndex int) error {
	commitErr := c.api.ReorderJob(ctx, jobID, fromIndex, toIndex)
	reloadErr := c.Load(ctx)

	switch {
	case commitErr != nil && reloadErr != nil:
		return errors.Join(fmt.Errorf("reorder failed: %w", commitErr), fmt.Errorf("reload failed: %w", reloadErr))
	case commitErr != nil:
		return fmt.Errorf("reorder failed: %w", commitErr)
	case reloadErr != nil:
		return fmt.Errorf("reload failed: %w", reloadErr)
	}
	return nil
}

// Move applies and commits a move in one call.
func (c *Coordinator) Move(ctx context.Context, fromIndex, toIndex int) error {
	moved, err := c.Apply(fromIndex, toIndex)
	if err != nil {
		return err
	}
	return c.Commit(ctx, moved.ID, fromIndex, toIndex)
}
