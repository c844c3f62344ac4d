package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomente/biomente/internal/domain"
)

type stubAnalyzer struct {
	analysis *domain.DocumentAnalysis
	err      error
	calls    []string
}

func (s *stubAnalyzer) AnalyzeDocument(ctx context.Context, fullText string) (*domain.DocumentAnalysis, error) {
	s.calls = append(s.calls, fullText)
	if s.err != nil {
		return nil, s.err
	}
	return s.analysis, nil
}

type recordingAttacher struct {
	err      error
	attached []string
}

func (r *recordingAttacher) AttachAnalysis(ctx context.Context, profileID, projectID, doi string, analysis *domain.DocumentAnalysis) error {
	if r.err != nil {
		return r.err
	}
	r.attached = append(r.attached, doi)
	return nil
}

func TestQueueDrainFIFO(t *testing.T) {
	queue := NewQueue()
	queue.Enqueue(AnalysisJob{DOI: "first"})
	queue.Enqueue(AnalysisJob{DOI: "second"})

	jobs := queue.Drain()

	require.Len(t, jobs, 2)
	assert.Equal(t, "first", jobs[0].DOI)
	assert.Equal(t, "second", jobs[1].DOI)
	assert.Zero(t, queue.Len())
}

func TestProcessJobsAttachesAnalysis(t *testing.T) {
	queue := NewQueue()
	queue.Enqueue(AnalysisJob{ProfileID: "p1", ProjectID: "prj1", DOI: "local-1", FullText: "the full text"})

	analyzer := &stubAnalyzer{analysis: &domain.DocumentAnalysis{Summary: []string{"point"}}}
	attacher := &recordingAttacher{}
	worker := NewAnalysisWorker(queue, analyzer, attacher)

	err := worker.ProcessJobs(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"the full text"}, analyzer.calls)
	assert.Equal(t, []string{"local-1"}, attacher.attached)
}

func TestProcessJobsEmptyQueue(t *testing.T) {
	analyzer := &stubAnalyzer{}
	worker := NewAnalysisWorker(NewQueue(), analyzer, &recordingAttacher{})

	err := worker.ProcessJobs(context.Background())

	require.NoError(t, err)
	assert.Empty(t, analyzer.calls)
}

func TestProcessJobsDropsFailedJob(t *testing.T) {
	queue := NewQueue()
	queue.Enqueue(AnalysisJob{DOI: "local-1"})

	analyzer := &stubAnalyzer{err: assert.AnError}
	worker := NewAnalysisWorker(queue, analyzer, &recordingAttacher{})

	err := worker.ProcessJobs(context.Background())

	// a failed job is logged and dropped, never retried
	require.NoError(t, err)
	assert.Empty(t, queue.Drain())
	assert.Zero(t, queue.Len())
}

func TestProcessJobsAttachFailureDoesNotStopBatch(t *testing.T) {
	queue := NewQueue()
	queue.Enqueue(AnalysisJob{DOI: "local-1", FullText: "a"})
	queue.Enqueue(AnalysisJob{DOI: "local-2", FullText: "b"})

	analyzer := &stubAnalyzer{analysis: &domain.DocumentAnalysis{}}
	attacher := &recordingAttacher{err: domain.ErrArticleNotFound}
	worker := NewAnalysisWorker(queue, analyzer, attacher)

	err := worker.ProcessJobs(context.Background())

	require.NoError(t, err)
	assert.Len(t, analyzer.calls, 2)
}

type countingProcessor struct {
	processed chan struct{}
}

func (c *countingProcessor) ProcessJobs(ctx context.Context) error {
	select {
	case c.processed <- struct{}{}:
	default:
	}
	return nil
}

func TestWorkerPollsAndStops(t *testing.T) {
	processor := &countingProcessor{processed: make(chan struct{}, 1)}
	worker := NewWorker(processor, 10*time.Millisecond)

	go worker.Start(context.Background())

	select {
	case <-processor.processed:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never polled the processor")
	}

	worker.Stop()
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	processor := &countingProcessor{processed: make(chan struct{}, 1)}
	worker := NewWorker(processor, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
}
