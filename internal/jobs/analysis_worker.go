package jobs

import (
	"context"
	"log"
	"sync"

	"github.com/biomente/biomente/internal/domain"
)

// AnalysisJob asks for the deep structural analysis of one ingested document.
type AnalysisJob struct {
	ProfileID string
	ProjectID string
	DOI       string
	FullText  string
}

// Queue is an in-memory FIFO of pending analysis jobs. Jobs are enqueued by the
// orchestration layer after a document's base record has been ingested. Jobs are never
// persisted; a restart loses pending enrichments and the article falls back to its plain
// summary.
type Queue struct {
	mu   sync.Mutex
	jobs []AnalysisJob
}

// NewQueue creates an empty Queue
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends a job to the queue
func (q *Queue) Enqueue(job AnalysisJob) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
}

// Drain removes and returns all pending jobs in FIFO order
func (q *Queue) Drain() []AnalysisJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	jobs := q.jobs
	q.jobs = nil
	return jobs
}

// Len returns the number of pending jobs
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// DocumentAnalyzer produces the structured analysis for a full text
type DocumentAnalyzer interface {
	AnalyzeDocument(ctx context.Context, fullText string) (*domain.DocumentAnalysis, error)
}

// AnalysisAttacher attaches a completed analysis to the identified knowledge-base article
type AnalysisAttacher interface {
	AttachAnalysis(ctx context.Context, profileID, projectID, doi string, analysis *domain.DocumentAnalysis) error
}

// AnalysisWorker drains the queue and enriches ingested articles with their deep
// analysis. Enrichment is best-effort: a failed job is logged and dropped, never retried,
// and never affects the already-ingested base record.
type AnalysisWorker struct {
	queue    *Queue
	analyzer DocumentAnalyzer
	attacher AnalysisAttacher
}

// NewAnalysisWorker creates a new AnalysisWorker instance
func NewAnalysisWorker(queue *Queue, analyzer DocumentAnalyzer, attacher AnalysisAttacher) *AnalysisWorker {
	return &AnalysisWorker{
		queue:    queue,
		analyzer: analyzer,
		attacher: attacher,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *AnalysisWorker) ProcessJobs(ctx context.Context) error {
	jobs := w.queue.Drain()
	if len(jobs) == 0 {
		return nil
	}

	log.Printf("processing %d pending analysis jobs", len(jobs))

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			log.Printf("analysis of %s failed: %v", job.DOI, err)
		}
	}
	return nil
}

func (w *AnalysisWorker) processJob(ctx context.Context, job AnalysisJob) error {
	analysis, err := w.analyzer.AnalyzeDocument(ctx, job.FullText)
	if err != nil {
		return err
	}
	return w.attacher.AttachAnalysis(ctx, job.ProfileID, job.ProjectID, job.DOI, analysis)
}
