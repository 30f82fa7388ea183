// Package client talks to the TalentFlow HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mrcoldpotato/talentflow-v2/internal/models"
)

// allJobsPageSize is large enough to fetch the whole job list in one page.
const allJobsPageSize = 1000

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the API served at baseURL, e.g. http://localhost:5050.
// A nil httpClient uses a client with a 10 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// ListJobs returns every job sorted by order.
func (c *Client) ListJobs(ctx context.Context) ([]models.Job, error) {
	q := url.Values{}
	q.Set("page", "1")
	q.Set("pageSize", fmt.Sprint(allJobsPageSize))

	var page struct {
		Items []models.Job `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/jobs?"+q.Encode(), nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// ReorderJob commits moving job id from fromOrder to toOrder.
func (c *Client) ReorderJob(ctx context.Context, id string, fromOrder, toOrder int) error {
	body := map[string]int{"fromOrder": fromOrder, "toOrder": toOrder}
	return c.do(ctx, http.MethodPatch, "/api/jobs/"+url.PathEscape(id)+"/reorder", body, nil)
}

func (c *Client) SetJobStatus(ctx context.Context, id string, status models.JobStatus) (*models.Job, error) {
	var job models.Job
	body := map[string]models.JobStatus{"status": status}
	if err := c.do(ctx, http.MethodPatch, "/api/jobs/"+url.PathEscape(id), body, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Error == "" {
			payload.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: payload.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
