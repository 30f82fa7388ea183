package models

import "time"

type JobStatus string

const (
	JobActive   JobStatus = "active"
	JobArchived JobStatus = "archived"
)

func (s JobStatus) Valid() bool {
	return s == JobActive || s == JobArchived
}

type Job struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Slug      string    `db:"slug" json:"slug"`
	Status    JobStatus `db:"status" json:"status"`
	Tags      Tags      `db:"tags" json:"tags"`
	Order     int       `db:"sort_order" json:"order"` // dense 0..N-1 across all jobs
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateJobDTO struct {
	Title     string    `db:"title"`
	Slug      string    `db:"slug"`
	Status    JobStatus `db:"status"`
	Tags      Tags      `db:"tags"`
	Order     int       `db:"sort_order"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (d *CreateJobDTO) ToModel(id string) any {
	return &Job{
		ID:        id,
		Title:     d.Title,
		Slug:      d.Slug,
		Status:    d.Status,
		Tags:      d.Tags,
		Order:     d.Order,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// UpdateJobDTO is a partial update; nil fields are left alone.
type UpdateJobDTO struct {
	Title     *string    `db:"title"`
	Slug      *string    `db:"slug"`
	Status    *JobStatus `db:"status"`
	Tags      *Tags      `db:"tags"`
	UpdatedAt time.Time  `db:"updated_at"`
}

func (d *UpdateJobDTO) ToModel(id string) any {
	return &Job{ID: id}
}
