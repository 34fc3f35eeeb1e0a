package task

import "time"

type TaskEvent struct {
	TaskID    string        `json:"task_id"`
	Action    string        `json:"action"`
	Type      TaskEventType `json:"type"`
	Progress  float64       `json:"progress,omitempty"`
	Message   string        `json:"message,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

type TaskEventType string

const (
	Started   TaskEventType = "started"
	Progress  TaskEventType = "progress"
	Published TaskEventType = "published"
	Failed    TaskEventType = "failed"
	Completed TaskEventType = "completed"
)
