package lookout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withLookout(t *testing.T, handler func(t *testing.T, request JobsRequest) (int, string), action func(c *Client)) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/jobs", r.URL.Path)
		assert.Equal(t, "jsonb", r.URL.Query().Get("backend"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		request := JobsRequest{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		status, body := handler(t, request)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	defer server.Close()

	action(NewClient(server.URL+"/", server.Client()))
}

func TestSearchJobs_RequestShape(t *testing.T) {
	withLookout(t, func(t *testing.T, request JobsRequest) (int, string) {
		assert.Equal(t, []Filter{
			{Field: "queue", Match: MatchExact, Value: "queue-a"},
			{Field: "jobSet", Match: MatchExact, Value: "set-1"},
			{Field: "state", Match: MatchExact, Value: "FAILED"},
		}, request.Filters)
		assert.Equal(t, Order{Field: "submitted", Direction: DirectionDesc}, request.Order)
		assert.Equal(t, 25, request.Take)
		return http.StatusOK, `{"jobs":[{"jobId":"job-1","jobSet":"set-1","queue":"queue-a","state":"FAILED",
			"submitted":"2023-03-14T09:00:00Z","runs":[{"runId":"run-1","cluster":"cluster-1","jobRunState":"RUN_FAILED"}]}]}`
	}, func(c *Client) {
		jobs, err := c.SearchJobs(context.Background(), "queue-a", "set-1", "FAILED", 25)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "job-1", jobs[0].JobId)
		assert.Equal(t, "FAILED", jobs[0].State)
		require.Len(t, jobs[0].Runs, 1)
		assert.Equal(t, "cluster-1", jobs[0].Runs[0].Cluster)
	})
}

func TestJobSetsInQueue_DistinctAndSorted(t *testing.T) {
	withLookout(t, func(t *testing.T, request JobsRequest) (int, string) {
		assert.Len(t, request.Filters, 1)
		assert.Equal(t, DefaultLimit, request.Take)
		return http.StatusOK, `{"jobs":[{"jobId":"1","jobSet":"b"},{"jobId":"2","jobSet":"a"},{"jobId":"3","jobSet":"b"}]}`
	}, func(c *Client) {
		jobSets, err := c.JobSetsInQueue(context.Background(), "queue-a", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, jobSets)
	})
}

func TestGetJobs_ApiError(t *testing.T) {
	withLookout(t, func(t *testing.T, request JobsRequest) (int, string) {
		return http.StatusBadRequest, `{"code":3,"message":"invalid filter"}`
	}, func(c *Client) {
		_, err := c.JobsInJobSet(context.Background(), "queue-a", "set-1", 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid filter")
	})
}

func TestGetJobs_UnparseableResponse(t *testing.T) {
	withLookout(t, func(t *testing.T, request JobsRequest) (int, string) {
		return http.StatusBadGateway, "<html>bad gateway</html>"
	}, func(c *Client) {
		_, err := c.GetJobs(context.Background(), JobsRequest{})
		assert.Error(t, err)
	})
}

func TestGetJobs_EmptyResponse(t *testing.T) {
	withLookout(t, func(t *testing.T, request JobsRequest) (int, string) {
		assert.NotNil(t, request.Filters)
		return http.StatusOK, `{}`
	}, func(c *Client) {
		jobs, err := c.GetJobs(context.Background(), JobsRequest{})
		require.NoError(t, err)
		assert.Empty(t, jobs)
	})
}
