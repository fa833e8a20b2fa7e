package models

import (
	"time"
)

// ETLRunLog представляет запись о запуске ETL процесса
type ETLRunLog struct {
	ID                   string    `json:"id"` // UUID запуска
	Mode                 string    `json:"mode"`
	StartTime            time.Time `json:"start_time"`
	EndTime              time.Time `json:"end_time"`
	Status               string    `json:"status"` // "success", "failed", "in_progress"
	RowsExtracted        int       `json:"rows_extracted"`
	RowsTransformed      int       `json:"rows_transformed"`
	RowsLoaded           int       `json:"rows_loaded"`
	TargetTable          string    `json:"target_table"`
	ErrorMessage         string    `json:"error_message,omitempty"`
	ExecutionTimeSeconds float64   `json:"execution_time_seconds"`
}

// RunLogRepository представляет репозиторий для работы с журналом запусков ETL
type RunLogRepository interface {
	// CreateLogEntry создает новую запись о запуске ETL
	CreateLogEntry(id, mode string, startTime time.Time) error

	// UpdateLogEntrySuccess обновляет запись при успешном завершении ETL
	UpdateLogEntrySuccess(
		id string,
		endTime time.Time,
		rowsExtracted,
		rowsTransformed,
		rowsLoaded int,
		targetTable string) error

	// UpdateLogEntryFailure обновляет запись при неудачном завершении ETL
	UpdateLogEntryFailure(id string, endTime time.Time, errorMessage string) error

	// GetLastSuccessfulRun получает информацию о последнем успешном запуске ETL
	GetLastSuccessfulRun() (*ETLRunLog, error)

	// GetRunStats получает статистику о запусках ETL за определенный период
	GetRunStats(days int) ([]ETLRunLog, error)
}

// NoopRunLogRepository - заглушка журнала запусков, когда метаданные не настроены.
// Пайплайн не должен зависеть от доступности БД метаданных.
type NoopRunLogRepository struct{}

// NewNoopRunLogRepository создает новый экземпляр NoopRunLogRepository
func NewNoopRunLogRepository() *NoopRunLogRepository {
	return &NoopRunLogRepository{}
}

func (r *NoopRunLogRepository) CreateLogEntry(id, mode string, startTime time.Time) error {
	return nil
}

func (r *NoopRunLogRepository) UpdateLogEntrySuccess(id string, endTime time.Time, rowsExtracted, rowsTransformed, rowsLoaded int, targetTable string) error {
	return nil
}

func (r *NoopRunLogRepository) UpdateLogEntryFailure(id string, endTime time.Time, errorMessage string) error {
	return nil
}

func (r *NoopRunLogRepository) GetLastSuccessfulRun() (*ETLRunLog, error) {
	return nil, nil
}

func (r *NoopRunLogRepository) GetRunStats(days int) ([]ETLRunLog, error) {
	return nil, nil
}
