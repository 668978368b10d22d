package lookout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	MatchExact      = "exact"
	MatchStartsWith = "startsWith"
	MatchContains   = "contains"

	DirectionAsc  = "ASC"
	DirectionDesc = "DESC"

	DefaultLimit = 100
)

type Filter struct {
	Field string      `json:"field"`
	Match string      `json:"match"`
	Value interface{} `json:"value"`
}

type Order struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

type JobsRequest struct {
	Filters []Filter `json:"filters"`
	Order   Order    `json:"order"`
	Take    int      `json:"take"`
	Skip    int      `json:"skip"`
}

type Run struct {
	RunId       string     `json:"runId"`
	Cluster     string     `json:"cluster"`
	JobRunState string     `json:"jobRunState"`
	Node        string     `json:"node,omitempty"`
	ExitCode    *int32     `json:"exitCode,omitempty"`
	Pending     *time.Time `json:"pending,omitempty"`
	Started     *time.Time `json:"started,omitempty"`
	Finished    *time.Time `json:"finished,omitempty"`
}

// Job is a job row as returned by Lookout. State is free text such as "RUNNING".
type Job struct {
	JobId              string     `json:"jobId"`
	JobSet             string     `json:"jobSet"`
	Queue              string     `json:"queue"`
	State              string     `json:"state"`
	Owner              string     `json:"owner"`
	Namespace          string     `json:"namespace"`
	Priority           float64    `json:"priority"`
	Submitted          time.Time  `json:"submitted"`
	LastTransitionTime *time.Time `json:"lastTransitionTime,omitempty"`
	Cancelled          *time.Time `json:"cancelled,omitempty"`
	Runs               []Run      `json:"runs,omitempty"`
}

type jobsResponse struct {
	Jobs    []Job  `json:"jobs"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Client queries the Lookout jobs endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		url:        strings.TrimSuffix(url, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) GetJobs(ctx context.Context, request JobsRequest) ([]Job, error) {
	if request.Filters == nil {
		request.Filters = []Filter{}
	}
	body, err := json.Marshal(request)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	url := c.url + "/api/v1/jobs?backend=jsonb"
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, errors.Wrapf(err, "error querying lookout at %s", c.url)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading lookout response")
	}
	parsed := &jobsResponse{}
	if err := json.Unmarshal(data, parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("lookout returned %s", resp.Status)
		}
		return nil, errors.Wrapf(err, "error parsing lookout response")
	}
	if parsed.Message != "" && (parsed.Code != 0 || resp.StatusCode != http.StatusOK) {
		return nil, fmt.Errorf("lookout api error: %s", parsed.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookout returned %s", resp.Status)
	}
	return parsed.Jobs, nil
}

// JobSetsInQueue returns the distinct job sets among the most recently submitted jobs of a queue, sorted.
func (c *Client) JobSetsInQueue(ctx context.Context, queue string, limit int) ([]string, error) {
	jobs, err := c.SearchJobs(ctx, queue, "", "", limit)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	jobSets := []string{}
	for _, job := range jobs {
		if !seen[job.JobSet] {
			seen[job.JobSet] = true
			jobSets = append(jobSets, job.JobSet)
		}
	}
	sort.Strings(jobSets)
	return jobSets, nil
}

func (c *Client) JobsInJobSet(ctx context.Context, queue string, jobSetId string, limit int) ([]Job, error) {
	return c.SearchJobs(ctx, queue, jobSetId, "", limit)
}

// SearchJobs returns jobs, newest first, matching every non-empty argument exactly.
func (c *Client) SearchJobs(ctx context.Context, queue string, jobSet string, state string, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	filters := []Filter{}
	if queue != "" {
		filters = append(filters, Filter{Field: "queue", Match: MatchExact, Value: queue})
	}
	if jobSet != "" {
		filters = append(filters, Filter{Field: "jobSet", Match: MatchExact, Value: jobSet})
	}
	if state != "" {
		filters = append(filters, Filter{Field: "state", Match: MatchExact, Value: state})
	}
	return c.GetJobs(ctx, JobsRequest{
		Filters: filters,
		Order:   Order{Field: "submitted", Direction: DirectionDesc},
		Take:    limit,
	})
}
