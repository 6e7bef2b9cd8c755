package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driving"
)

const helloDefinition = `
id: hello
name: Hello
sources:
  - type: github.repos
    data:
      - octocat/Hello-World
`

// mockPipeline implements driving.Pipeline for testing.
type mockPipeline struct {
	fetched  []string
	force    bool
	resolved []string
	built    [][]string
	ran      [][]string
	err      error
}

func (m *mockPipeline) Fetch(_ context.Context, def domain.ListDefinition, force bool) (*domain.ListStats, error) {
	m.fetched = append(m.fetched, def.ID)
	m.force = force
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ListStats{SourcesTotal: len(def.Sources), SourcesProcessed: len(def.Sources), EntriesTotal: 1}, nil
}

func (m *mockPipeline) Resolve(_ context.Context, listID string, force bool) (*domain.ListStats, error) {
	m.resolved = append(m.resolved, listID)
	m.force = force
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ListStats{EntriesTotal: 2, EntriesResolved: 1}, nil
}

func (m *mockPipeline) Build(_ context.Context, listIDs []string) (*domain.BuildReport, error) {
	m.built = append(m.built, listIDs)
	if m.err != nil {
		return nil, m.err
	}
	return sampleReport(listIDs...), nil
}

func (m *mockPipeline) Run(_ context.Context, defs []domain.ListDefinition) (*domain.BuildReport, error) {
	ids := make([]string, 0, len(defs))
	for _, d := range defs {
		ids = append(ids, d.ID)
	}
	m.ran = append(m.ran, ids)
	if m.err != nil {
		return nil, m.err
	}
	return sampleReport(ids...), nil
}

func sampleReport(ids ...string) *domain.BuildReport {
	report := &domain.BuildReport{Number: "000042"}
	for _, id := range ids {
		report.Lists = append(report.Lists, domain.ListReport{
			ID:          id,
			Stats:       domain.ListStats{SourcesTotal: 1, SourcesProcessed: 1, EntriesTotal: 3, EntriesResolved: 3},
			Score:       40,
			Distributed: 2,
			Filtered:    1,
			Changed:     2,
		})
	}
	return report
}

func setupPipeline(t *testing.T) *mockPipeline {
	t.Helper()
	mock := &mockPipeline{}
	oldSvc, oldBuilder, oldClose := pipelineSvc, buildPipeline, closePipeline
	pipelineSvc = mock
	t.Cleanup(func() {
		pipelineSvc, buildPipeline, closePipeline = oldSvc, oldBuilder, oldClose
		fetchForce, resolveForce, configPath = false, false, ""
	})
	return mock
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func writeDefinition(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "curator", rootCmd.Use)
	for _, name := range []string{"fetch", "resolve", "build", "run", "watch", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRequirePipeline_NotConfigured(t *testing.T) {
	setupPipeline(t)
	pipelineSvc = nil
	buildPipeline = nil

	_, err := execute(t, "resolve", "hello")

	assert.ErrorContains(t, err, "pipeline not configured")
}

func TestRequirePipeline_BuildsOnce(t *testing.T) {
	setupPipeline(t)
	pipelineSvc = nil
	mock := &mockPipeline{}
	builds := 0
	closed := 0
	var gotConfig string
	SetPipelineBuilder(func(_ context.Context, path string, status domain.StatusFunc) (driving.Pipeline, func() error, error) {
		builds++
		gotConfig = path
		assert.NotNil(t, status)
		return mock, func() error { closed++; return nil }, nil
	})

	_, err := execute(t, "--config", "custom.toml", "resolve", "a")
	require.NoError(t, err)
	_, err = execute(t, "resolve", "b")
	require.NoError(t, err)

	assert.Equal(t, 1, builds)
	assert.Equal(t, "custom.toml", gotConfig)
	assert.Equal(t, []string{"a", "b"}, mock.resolved)

	require.NotNil(t, closePipeline)
	require.NoError(t, closePipeline())
	assert.Equal(t, 1, closed)
}

func TestRequirePipeline_BuilderError(t *testing.T) {
	setupPipeline(t)
	pipelineSvc = nil
	SetPipelineBuilder(func(context.Context, string, domain.StatusFunc) (driving.Pipeline, func() error, error) {
		return nil, nil, errors.New("bad config")
	})

	_, err := execute(t, "build", "hello")

	assert.ErrorContains(t, err, "bad config")
	assert.Nil(t, pipelineSvc)
}

func TestExecute_ClosesPipeline(t *testing.T) {
	setupPipeline(t)
	closed := false
	closePipeline = func() error { closed = true; return nil }
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, Execute(context.Background()))

	assert.True(t, closed)
	assert.Nil(t, closePipeline)
}

func TestStatusPrinter_PlainWhenNotTerminal(t *testing.T) {
	buf := new(bytes.Buffer)
	p := newStatusPrinter(buf)

	p.Status(domain.StatusWarning, "source skipped")
	p.Status(domain.StatusCritical, "cannot continue")

	assert.Equal(t, "[warning] source skipped\n[critical] cannot continue\n", buf.String())
}
