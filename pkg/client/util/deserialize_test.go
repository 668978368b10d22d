package util

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	v1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/armadaproject/jobwatch/pkg/client/domain"
)

func TestBindJsonOrYaml_Yaml(t *testing.T) {
	submitFile := &domain.JobSubmitFile{}
	err := BindJsonOrYaml(filepath.Join("testdata", "jobs.yaml"), submitFile)
	require.NoError(t, err)
	assertExpectedJobSubmitFile(t, submitFile)
}

func TestBindJsonOrYaml_Json(t *testing.T) {
	submitFile := &domain.JobSubmitFile{}
	err := BindJsonOrYaml(filepath.Join("testdata", "jobs.json"), submitFile)
	require.NoError(t, err)
	assertExpectedJobSubmitFile(t, submitFile)
}

func TestBindJsonOrYaml_MissingFile(t *testing.T) {
	err := BindJsonOrYaml(filepath.Join("testdata", "missing.yaml"), &domain.JobSubmitFile{})
	assert.Error(t, err)
}

func assertExpectedJobSubmitFile(t *testing.T, submitFile *domain.JobSubmitFile) {
	assert.Equal(t, "test", submitFile.Queue)
	assert.Equal(t, "job-set-1", submitFile.JobSetId)
	require.Len(t, submitFile.Jobs, 1)

	podSpec := submitFile.Jobs[0].PodSpec
	require.NotNil(t, podSpec)
	assert.Equal(t, v1.RestartPolicyNever, podSpec.RestartPolicy)
	require.Len(t, podSpec.Containers, 1)

	container := podSpec.Containers[0]
	assert.Equal(t, "sleep", container.Name)
	assert.Equal(t, v1.PullIfNotPresent, container.ImagePullPolicy)
	assert.Equal(t, "alpine:latest", container.Image)
	assert.Equal(t, []string{"sh", "-c"}, container.Command)
	assert.Equal(t, []string{"sleep 60"}, container.Args)
	assertQuantity(t, "1", container.Resources.Limits[v1.ResourceCPU])
	assertQuantity(t, "1Gi", container.Resources.Requests[v1.ResourceMemory])
}

func assertQuantity(t *testing.T, expected string, actual resource.Quantity) {
	assert.Zero(t, resource.MustParse(expected).Cmp(actual), "expected %s, got %s", expected, actual.String())
}
