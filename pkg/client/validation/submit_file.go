package validation

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/armadaproject/jobwatch/pkg/client/domain"
	"github.com/armadaproject/jobwatch/pkg/client/util"
)

// ReadSubmitFile loads a submit file and checks it with ValidateSubmitFile.
func ReadSubmitFile(filePath string) (*domain.JobSubmitFile, error) {
	submitFile := &domain.JobSubmitFile{}
	if err := util.BindJsonOrYaml(filePath, submitFile); err != nil {
		return nil, err
	}
	if err := ValidateSubmitFile(submitFile); err != nil {
		return nil, errors.WithMessagef(err, "invalid submit file %s", filePath)
	}
	return submitFile, nil
}

func ValidateSubmitFile(submitFile *domain.JobSubmitFile) error {
	if submitFile.Queue == "" {
		return errors.New("queue must be set")
	}
	if submitFile.JobSetId == "" {
		return errors.New("jobSetId must be set")
	}
	if len(submitFile.Jobs) == 0 {
		return errors.New("you have provided no jobs to submit")
	}
	for i, job := range submitFile.Jobs {
		if job == nil {
			return fmt.Errorf("job %d is empty", i)
		}
		if job.PodSpec == nil && len(job.PodSpecs) == 0 {
			return fmt.Errorf("job %d has no podSpec", i)
		}
	}
	return nil
}
