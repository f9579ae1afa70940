package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"backsync/internal/config"
	"backsync/internal/model"
	"backsync/internal/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeJobRunner fails the jobs named in failing and records call order.
type fakeJobRunner struct {
	failing map[string]bool
	ran     []string
}

func (f *fakeJobRunner) Run(ctx context.Context, job config.JobSpec) model.RunResult {
	f.ran = append(f.ran, job.Name)

	result := model.RunResult{
		Name:        job.Name,
		Source:      job.Source,
		Destination: job.Destination,
		Success:     !f.failing[job.Name],
		State:       model.StateSucceeded,
		Stats:       map[string]string{},
	}
	if f.failing[job.Name] {
		result.State = model.StateFailed
		result.ReturnCode = 23
		result.Error = "rsync failed"
	}

	return result
}

type fakeNotifier struct {
	calls  int
	failed []model.RunResult
}

func (f *fakeNotifier) NotifyFailures(ctx context.Context, failed []model.RunResult) error {
	f.calls++
	f.failed = failed
	return nil
}

type fakeHistory struct {
	appended []model.RunResult
	err      error
}

func (f *fakeHistory) Append(result model.RunResult) error {
	f.appended = append(f.appended, result)
	return f.err
}

func enabled(v bool) *bool {
	return &v
}

func jobs(names ...string) []config.JobSpec {
	specs := make([]config.JobSpec, 0, len(names))
	for _, name := range names {
		specs = append(specs, config.JobSpec{
			Name:        name,
			Source:      "/data/" + name,
			Destination: "backup:/mnt/" + name,
		})
	}
	return specs
}

func newStore(t *testing.T, path string) *status.Store {
	t.Helper()
	return status.NewStore(path, zap.NewNop())
}

func TestRunBatchAllSucceed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	runner := &fakeJobRunner{}
	notifier := &fakeNotifier{}
	store := newStore(t, path)

	orch := New(jobs("docs", "media"), runner, store, notifier, nil, zap.NewNop())

	ok := orch.RunBatch(context.Background())

	assert.True(t, ok)
	assert.Equal(t, []string{"docs", "media"}, runner.ran)
	assert.Zero(t, notifier.calls)

	doc := store.Document()
	assert.Equal(t, 1, doc.TotalRuns)
	require.NotNil(t, doc.LastSummary)
	assert.Equal(t, model.Summary{Successful: 2, Failed: 0, Total: 2}, *doc.LastSummary)
}

func TestRunBatchPartialFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	runner := &fakeJobRunner{failing: map[string]bool{"media": true}}
	notifier := &fakeNotifier{}
	store := newStore(t, path)

	orch := New(jobs("docs", "media", "photos"), runner, store, notifier, nil, zap.NewNop())

	ok := orch.RunBatch(context.Background())

	assert.False(t, ok)
	assert.Equal(t, 1, notifier.calls)
	require.Len(t, notifier.failed, 1)
	assert.Equal(t, "media", notifier.failed[0].Name)

	summary := store.Document().LastSummary
	require.NotNil(t, summary)
	assert.Equal(t, model.Summary{Successful: 2, Failed: 1, Total: 3}, *summary)
}

func TestRunBatchSkipsDisabledJobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")

	specs := jobs("docs", "media", "photos")
	specs[1].Enabled = enabled(false)

	runner := &fakeJobRunner{failing: map[string]bool{"photos": true}}
	notifier := &fakeNotifier{}
	history := &fakeHistory{}
	store := newStore(t, path)

	orch := New(specs, runner, store, notifier, history, zap.NewNop())
	orch.RunBatch(context.Background())

	assert.Equal(t, []string{"docs", "photos"}, runner.ran)

	doc := store.Document()
	_, recorded := doc.Jobs["media"]
	assert.False(t, recorded, "disabled job must not appear in the document")
	assert.Equal(t, model.Summary{Successful: 1, Failed: 1, Total: 2}, *doc.LastSummary)

	for _, run := range history.appended {
		assert.NotEqual(t, "media", run.Name)
	}
	for _, failed := range notifier.failed {
		assert.NotEqual(t, "media", failed.Name)
	}
}

func TestRunBatchSequentialInvocationsCountUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	specs := jobs("docs")

	for i := 1; i <= 4; i++ {
		store := newStore(t, path)
		orch := New(specs, &fakeJobRunner{}, store, &fakeNotifier{}, nil, zap.NewNop())
		orch.RunBatch(context.Background())

		assert.Equal(t, i, store.Document().TotalRuns)
	}
}

func TestRunBatchHistoryFailureDoesNotAbort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	history := &fakeHistory{err: errors.New("disk full")}
	store := newStore(t, path)

	orch := New(jobs("docs", "media"), &fakeJobRunner{}, store, &fakeNotifier{}, history, zap.NewNop())

	ok := orch.RunBatch(context.Background())

	assert.True(t, ok)
	assert.Len(t, history.appended, 2)
	assert.Equal(t, 1, store.Document().TotalRuns)
}

func TestRunBatchRecordsLatestResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	runner := &fakeJobRunner{failing: map[string]bool{"docs": true}}
	store := newStore(t, path)

	orch := New(jobs("docs"), runner, store, &fakeNotifier{}, nil, zap.NewNop())
	orch.RunBatch(context.Background())

	reloaded := newStore(t, path).Load()
	result, ok := reloaded.Jobs["docs"]
	require.True(t, ok)
	assert.False(t, result.Success)
	assert.Equal(t, 23, result.ReturnCode)
	assert.Equal(t, "rsync failed", result.Error)
}

func TestRunBatchEmptyJobList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	notifier := &fakeNotifier{}
	store := newStore(t, path)

	orch := New(nil, &fakeJobRunner{}, store, notifier, nil, zap.NewNop())

	ok := orch.RunBatch(context.Background())

	assert.True(t, ok)
	assert.Zero(t, notifier.calls)
	assert.Equal(t, model.Summary{Total: 0}, *store.Document().LastSummary)
}
