package interfaces

import "time"

// JobStatus represents the current status of a scheduled job
type JobStatus struct {
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	LastRun   *time.Time `json:"lastRun,omitempty"`
	NextRun   *time.Time `json:"nextRun,omitempty"`
	IsRunning bool       `json:"isRunning"`
	LastError string     `json:"lastError,omitempty"`
}

// SchedulerService manages cron-based background jobs
type SchedulerService interface {
	// RegisterJob registers a job. Must be called before Start.
	RegisterJob(name string, schedule string, handler func() error) error

	Start() error
	Stop() error
	IsRunning() bool

	// TriggerJob runs a registered job immediately in the background
	TriggerJob(name string) error

	GetAllJobStatuses() map[string]*JobStatus
}
