package models

import (
	"time"
)

// Типы событий, рассылаемых подписчикам статуса ETL
const (
	EventRunStarted   = "run_started"
	EventTaskStarted  = "task_started"
	EventTaskFinished = "task_finished"
	EventRunFinished  = "run_finished"
)

// RunEvent представляет событие хода выполнения ETL для трансляции по WebSocket
type RunEvent struct {
	Type      string    `json:"type"`
	RunID     string    `json:"run_id"`
	Task      string    `json:"task,omitempty"`
	Status    string    `json:"status,omitempty"` // "success", "failed", "skipped"
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
