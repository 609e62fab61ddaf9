package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFields(t *testing.T) {
	drawn := testutil.ToFloat64(FieldsRenderedTotal.WithLabelValues("drawn"))
	empty := testutil.ToFloat64(FieldsRenderedTotal.WithLabelValues("empty"))

	RecordFields(12, 3)

	assert.Equal(t, drawn+12, testutil.ToFloat64(FieldsRenderedTotal.WithLabelValues("drawn")))
	assert.Equal(t, empty+3, testutil.ToFloat64(FieldsRenderedTotal.WithLabelValues("empty")))
}

func TestRecordError(t *testing.T) {
	before := testutil.ToFloat64(GenerationErrorsTotal.WithLabelValues(StageSave))
	RecordError(StageSave)
	assert.Equal(t, before+1, testutil.ToFloat64(GenerationErrorsTotal.WithLabelValues(StageSave)))
}

func TestRecordJob(t *testing.T) {
	const jobType = "dataset:test"

	RecordJobEnqueued(jobType)
	RecordJobCompleted(jobType, 2.5)
	RecordJobFailed(jobType, "boom")

	assert.Equal(t, 1.0, testutil.ToFloat64(JobsEnqueuedTotal.WithLabelValues(jobType)))
	assert.Equal(t, 1.0, testutil.ToFloat64(JobsCompletedTotal.WithLabelValues(jobType)))
	assert.Equal(t, 1.0, testutil.ToFloat64(JobsFailedTotal.WithLabelValues(jobType, "boom")))
}

func TestWriteTextfile(t *testing.T) {
	RecordStage(StageCompose, time.Now().Add(-10*time.Millisecond))
	SamplesGeneratedTotal.Inc()

	path := filepath.Join(t.TempDir(), "passportgen.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.Contains(out, "passportgen_samples_generated_total"))
	assert.True(t, strings.Contains(out, `passportgen_stage_duration_seconds_count{stage="compose"}`))
}

func TestWorkerMetrics(t *testing.T) {
	const worker = "dataset-test"

	SetWorkerConcurrency(worker, 1)
	SetWorkerActiveJobs(worker, 1)
	RecordWorkerJobProcessed(worker, "completed")
	RecordWorkerError(worker, "generation_error")

	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerConcurrency.WithLabelValues(worker)))
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerActiveJobs.WithLabelValues(worker)))
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsProcessedTotal.WithLabelValues(worker, "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerErrorsTotal.WithLabelValues(worker, "generation_error")))
}
