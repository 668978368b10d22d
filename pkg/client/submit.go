package client

import "github.com/armadaproject/armada/pkg/api"

// MaxJobsPerRequest caps the number of job request items sent in one SubmitJobs call.
const MaxJobsPerRequest = 200

// CreateChunkedSubmitRequests splits requestItems into submit requests of at most
// MaxJobsPerRequest items each, keeping their order.
func CreateChunkedSubmitRequests(queue string, jobSetId string, requestItems []*api.JobSubmitRequestItem) []*api.JobSubmitRequest {
	requests := make([]*api.JobSubmitRequest, 0, len(requestItems)/MaxJobsPerRequest+1)
	for i := 0; i < len(requestItems); i += MaxJobsPerRequest {
		end := i + MaxJobsPerRequest
		if end > len(requestItems) {
			end = len(requestItems)
		}
		requests = append(requests, &api.JobSubmitRequest{
			Queue:           queue,
			JobSetId:        jobSetId,
			JobRequestItems: requestItems[i:end],
		})
	}
	return requests
}
