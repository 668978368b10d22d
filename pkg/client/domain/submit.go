package domain

import "github.com/armadaproject/armada/pkg/api"

// JobSubmitFile is the armadactl submit file format: a queue, a job set and the jobs to add to it.
type JobSubmitFile struct {
	Queue    string
	JobSetId string
	Jobs     []*api.JobSubmitRequestItem `json:"jobs"`
}
