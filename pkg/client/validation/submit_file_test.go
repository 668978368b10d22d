package validation

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	v1 "k8s.io/api/core/v1"

	"github.com/armadaproject/armada/pkg/api"
	"github.com/armadaproject/jobwatch/pkg/client/domain"
)

func TestReadSubmitFile(t *testing.T) {
	submitFile, err := ReadSubmitFile(filepath.Join("testdata", "valid.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "test", submitFile.Queue)
	assert.Len(t, submitFile.Jobs, 1)
}

func TestReadSubmitFile_Invalid(t *testing.T) {
	for _, name := range []string{"no_pod_spec.yaml", "no_jobs.yaml", "missing.yaml"} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadSubmitFile(filepath.Join("testdata", name))
			assert.Error(t, err)
		})
	}
}

func TestValidateSubmitFile(t *testing.T) {
	tests := map[string]struct {
		file    *domain.JobSubmitFile
		wantErr bool
	}{
		"valid": {
			file: &domain.JobSubmitFile{Queue: "q", JobSetId: "js", Jobs: []*api.JobSubmitRequestItem{{PodSpec: &v1.PodSpec{}}}},
		},
		"pod specs": {
			file: &domain.JobSubmitFile{Queue: "q", JobSetId: "js", Jobs: []*api.JobSubmitRequestItem{{PodSpecs: []*v1.PodSpec{{}}}}},
		},
		"missing queue": {
			file:    &domain.JobSubmitFile{JobSetId: "js", Jobs: []*api.JobSubmitRequestItem{{}}},
			wantErr: true,
		},
		"missing job set": {
			file:    &domain.JobSubmitFile{Queue: "q", Jobs: []*api.JobSubmitRequestItem{{}}},
			wantErr: true,
		},
		"nil job": {
			file:    &domain.JobSubmitFile{Queue: "q", JobSetId: "js", Jobs: []*api.JobSubmitRequestItem{nil}},
			wantErr: true,
		},
		"empty pod spec": {
			file:    &domain.JobSubmitFile{Queue: "q", JobSetId: "js", Jobs: []*api.JobSubmitRequestItem{{}}},
			wantErr: true,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := ValidateSubmitFile(tc.file)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
