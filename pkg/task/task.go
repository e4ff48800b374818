// Package task tracks asynchronous generation jobs through their
// lifecycle: pending, processing, then completed or failed.
package task

import (
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Result carries the outcome of a completed task.
type Result struct {
	AudioURL    string    `json:"audio_url,omitempty" msgpack:"audio_url,omitempty"`
	Filename    string    `json:"filename,omitempty" msgpack:"filename,omitempty"`
	Duration    float64   `json:"duration,omitempty" msgpack:"duration,omitempty"`
	Message     string    `json:"message,omitempty" msgpack:"message,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitzero" msgpack:"generated_at,omitempty"`
}

type Task struct {
	ID        string    `json:"task_id" msgpack:"id"`
	Status    Status    `json:"status" msgpack:"status"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
	Result    *Result   `json:"result,omitempty" msgpack:"result,omitempty"`
	Error     string    `json:"error,omitempty" msgpack:"error,omitempty"`
}
