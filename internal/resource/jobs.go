package resource

import (
	"sync"

	"go.uber.org/zap"
)

// Job is a cancellable in-flight operation.
type Job interface {
	Cancel(cause error)
	Done() <-chan struct{}
}

// JobManager keeps at most one job per key for one repository.
type JobManager struct {
	name   string
	logger *zap.Logger

	mu   sync.Mutex
	jobs map[string]Job
}

func NewJobManager(name string, logger *zap.Logger) *JobManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobManager{
		name:   name,
		logger: logger.With(zap.String("repository", name)),
		jobs:   make(map[string]Job),
	}
}

// AddJob tracks job under key, cancelling the job it replaces. The entry is
// dropped once the job finishes.
func (m *JobManager) AddJob(key string, job Job) {
	m.mu.Lock()
	prev := m.jobs[key]
	m.jobs[key] = job
	m.mu.Unlock()

	if prev != nil && prev != job {
		m.logger.Debug("replacing job", zap.String("key", key))
		prev.Cancel(ErrJobReplaced)
	}

	go func() {
		<-job.Done()
		m.mu.Lock()
		if m.jobs[key] == job {
			delete(m.jobs, key)
		}
		m.mu.Unlock()
	}()
}

// CancelJob cancels and forgets the job under key, if any.
func (m *JobManager) CancelJob(key string) {
	m.mu.Lock()
	job := m.jobs[key]
	delete(m.jobs, key)
	m.mu.Unlock()

	if job != nil {
		job.Cancel(ErrJobsCancelled)
	}
}

// RemoveJob forgets the job under key without cancelling it.
func (m *JobManager) RemoveJob(key string) {
	m.mu.Lock()
	delete(m.jobs, key)
	m.mu.Unlock()
}

// CancelActiveJobs cancels every tracked job. It does not wait for them.
func (m *JobManager) CancelActiveJobs() {
	m.mu.Lock()
	jobs := m.jobs
	m.jobs = make(map[string]Job)
	m.mu.Unlock()

	if len(jobs) > 0 {
		m.logger.Debug("cancelling active jobs", zap.Int("count", len(jobs)))
	}
	for _, job := range jobs {
		job.Cancel(ErrJobsCancelled)
	}
}

func (m *JobManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}
