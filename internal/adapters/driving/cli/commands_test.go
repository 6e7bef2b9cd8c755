package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/curator/internal/core/domain"
)

func TestFetchCmd(t *testing.T) {
	mock := setupPipeline(t)
	path := writeDefinition(t, "hello.yml", helloDefinition)

	out, err := execute(t, "fetch", path)

	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, mock.fetched)
	assert.False(t, mock.force)
	assert.Contains(t, out, "Fetched hello: 1/1 sources processed, 1 entries")
}

func TestFetchCmd_Force(t *testing.T) {
	mock := setupPipeline(t)
	path := writeDefinition(t, "hello.yml", helloDefinition)

	_, err := execute(t, "fetch", "--force", path)

	require.NoError(t, err)
	assert.True(t, mock.force)
}

func TestFetchCmd_InvalidDefinition(t *testing.T) {
	mock := setupPipeline(t)
	path := writeDefinition(t, "bad.yml", "id: Bad ID\n")

	_, err := execute(t, "fetch", path)

	assert.ErrorIs(t, err, domain.ErrInvalidDefinition)
	assert.Empty(t, mock.fetched)
}

func TestFetchCmd_RequiresOneArg(t *testing.T) {
	setupPipeline(t)

	_, err := execute(t, "fetch")

	assert.Error(t, err)
}

func TestFetchCmd_PipelineError(t *testing.T) {
	mock := setupPipeline(t)
	mock.err = domain.ErrLogic
	path := writeDefinition(t, "hello.yml", helloDefinition)

	_, err := execute(t, "fetch", path)

	assert.ErrorIs(t, err, domain.ErrLogic)
	assert.ErrorContains(t, err, "fetch hello")
}

func TestResolveCmd(t *testing.T) {
	mock := setupPipeline(t)

	out, err := execute(t, "resolve", "-f", "hello")

	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, mock.resolved)
	assert.True(t, mock.force)
	assert.Contains(t, out, "Resolved hello: 1/2 entries")
}

func TestResolveCmd_Error(t *testing.T) {
	mock := setupPipeline(t)
	mock.err = domain.ErrNotFound

	_, err := execute(t, "resolve", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBuildCmd_RendersReport(t *testing.T) {
	mock := setupPipeline(t)

	out, err := execute(t, "build", "alpha", "beta")

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"alpha", "beta"}}, mock.built)
	assert.Contains(t, out, "Build 000042")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "beta")
	assert.Contains(t, out, "DISTRIBUTED")
	assert.Contains(t, out, "TOTAL")
}

func TestBuildCmd_SingleListHasNoFooter(t *testing.T) {
	setupPipeline(t)

	out, err := execute(t, "build", "alpha")

	require.NoError(t, err)
	assert.NotContains(t, out, "TOTAL")
}

func TestRenderReport_MarksCarriedLists(t *testing.T) {
	report := sampleReport("alpha", "beta")
	report.Lists[1].Carried = true
	var buf bytes.Buffer

	renderReport(&buf, report)

	assert.Contains(t, buf.String(), "beta (carried)")
	assert.NotContains(t, buf.String(), "alpha (carried)")
}

func TestBuildCmd_Error(t *testing.T) {
	mock := setupPipeline(t)
	mock.err = errors.New("lock held")

	_, err := execute(t, "build", "alpha")

	assert.ErrorContains(t, err, "build failed: lock held")
}

func TestRunCmd(t *testing.T) {
	mock := setupPipeline(t)
	first := writeDefinition(t, "hello.yml", helloDefinition)
	second := writeDefinition(t, "other.yml",
		"id: other\nname: Other\nsources:\n  - type: github.repos\n    data: [a/b]\n")

	out, err := execute(t, "run", first, second)

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"hello", "other"}}, mock.ran)
	assert.Contains(t, out, "other")
}

func TestRunCmd_DuplicateIDs(t *testing.T) {
	mock := setupPipeline(t)
	first := writeDefinition(t, "a.yml", helloDefinition)
	second := writeDefinition(t, "b.yml", helloDefinition)

	_, err := execute(t, "run", first, second)

	assert.Error(t, err)
	assert.Empty(t, mock.ran)
}
