package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joelkehle/kyc-screener/internal/screening"
)

type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobError     JobStatus = "error"
)

// Step mirrors the wizard screen a client should show for the job.
type Step string

const (
	StepSelection Step = "selection"
	StepLoading   Step = "loading"
	StepReport    Step = "report"
)

type Job struct {
	Token     string
	Company   screening.Company
	Status    JobStatus
	Step      Step
	Error     string
	CreatedAt time.Time
	Report    *screening.ComprehensiveReport

	progress *screening.ProgressTracker
}

// JobView is a point-in-time copy of a job safe to hand to encoders.
type JobView struct {
	Token     string                         `json:"token"`
	Company   screening.Company              `json:"company"`
	Status    JobStatus                      `json:"status"`
	Step      Step                           `json:"step"`
	Error     string                         `json:"error,omitempty"`
	CreatedAt time.Time                      `json:"createdAt"`
	Progress  []screening.ProgressMessage    `json:"progress"`
	Report    *screening.ComprehensiveReport `json:"report,omitempty"`
}

type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	now  func() time.Time
}

func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*Job), now: time.Now}
}

func (s *JobStore) Create(company screening.Company, defs []screening.SectionDefinition) *Job {
	job := &Job{
		Token:     uuid.NewString(),
		Company:   company,
		Status:    JobRunning,
		Step:      StepLoading,
		CreatedAt: s.now().UTC(),
		progress:  screening.NewProgressTracker(defs),
	}
	s.mu.Lock()
	s.jobs[job.Token] = job
	s.mu.Unlock()
	return job
}

func (s *JobStore) Get(token string) (JobView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[token]
	if !ok {
		return JobView{}, false
	}
	return JobView{
		Token:     job.Token,
		Company:   job.Company,
		Status:    job.Status,
		Step:      job.Step,
		Error:     job.Error,
		CreatedAt: job.CreatedAt,
		Progress:  job.progress.Snapshot(),
		Report:    job.Report,
	}, true
}

func (s *JobStore) Complete(token string, report screening.ComprehensiveReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[token]; ok {
		job.Status = JobCompleted
		job.Step = StepReport
		job.Report = &report
	}
}

// Fail records an unexpected failure and sends the client back to company
// selection.
func (s *JobStore) Fail(token, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[token]; ok {
		job.Status = JobError
		job.Step = StepSelection
		job.Error = msg
	}
}

func (s *JobStore) progressFunc(token string) screening.ProgressFunc {
	s.mu.RLock()
	job, ok := s.jobs[token]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	return job.progress.Func(nil)
}
