package models

import (
	"database/sql"
	"fmt"
	"time"
)

// MySQLRunLogRepository реализация RunLogRepository для MySQL
type MySQLRunLogRepository struct {
	db *sql.DB
}

// NewMySQLRunLogRepository создает новый экземпляр MySQLRunLogRepository
func NewMySQLRunLogRepository(db *sql.DB) *MySQLRunLogRepository {
	return &MySQLRunLogRepository{
		db: db,
	}
}

// CreateRunLogTable создает таблицу журнала запусков ETL, если она не существует
func (r *MySQLRunLogRepository) CreateRunLogTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS etl_run_log (
		id VARCHAR(36) PRIMARY KEY,
		mode VARCHAR(16) NOT NULL DEFAULT 'once',
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NULL,
		status ENUM('success', 'failed', 'in_progress') NOT NULL DEFAULT 'in_progress',
		rows_extracted INT DEFAULT 0,
		rows_transformed INT DEFAULT 0,
		rows_loaded INT DEFAULT 0,
		target_table VARCHAR(255),
		error_message TEXT,
		execution_time_seconds FLOAT
	);
	`

	_, err := r.db.Exec(query)
	if err != nil {
		return fmt.Errorf("ошибка при создании таблицы etl_run_log: %w", err)
	}

	return nil
}

// CreateLogEntry создает новую запись о запуске ETL
func (r *MySQLRunLogRepository) CreateLogEntry(id, mode string, startTime time.Time) error {
	query := `
	INSERT INTO etl_run_log (id, mode, start_time, status)
	VALUES (?, ?, ?, 'in_progress')
	`

	_, err := r.db.Exec(query, id, mode, startTime)
	if err != nil {
		return fmt.Errorf("ошибка при создании записи о запуске ETL: %w", err)
	}

	return nil
}

// UpdateLogEntrySuccess обновляет запись при успешном завершении ETL
func (r *MySQLRunLogRepository) UpdateLogEntrySuccess(
	id string,
	endTime time.Time,
	rowsExtracted,
	rowsTransformed,
	rowsLoaded int,
	targetTable string) error {

	// Рассчитываем время выполнения в секундах
	var startTime time.Time
	err := r.db.QueryRow("SELECT start_time FROM etl_run_log WHERE id = ?", id).Scan(&startTime)
	if err != nil {
		return fmt.Errorf("ошибка при получении времени начала ETL: %w", err)
	}

	executionTime := endTime.Sub(startTime).Seconds()

	// Обновляем запись
	query := `
	UPDATE etl_run_log
	SET
		end_time = ?,
		status = 'success',
		rows_extracted = ?,
		rows_transformed = ?,
		rows_loaded = ?,
		target_table = ?,
		execution_time_seconds = ?
	WHERE id = ?
	`

	_, err = r.db.Exec(
		query,
		endTime,
		rowsExtracted,
		rowsTransformed,
		rowsLoaded,
		targetTable,
		executionTime,
		id,
	)

	if err != nil {
		return fmt.Errorf("ошибка при обновлении записи о запуске ETL: %w", err)
	}

	return nil
}

// UpdateLogEntryFailure обновляет запись при неудачном завершении ETL
func (r *MySQLRunLogRepository) UpdateLogEntryFailure(id string, endTime time.Time, errorMessage string) error {
	// Рассчитываем время выполнения в секундах
	var startTime time.Time
	err := r.db.QueryRow("SELECT start_time FROM etl_run_log WHERE id = ?", id).Scan(&startTime)
	if err != nil {
		return fmt.Errorf("ошибка при получении времени начала ETL: %w", err)
	}

	executionTime := endTime.Sub(startTime).Seconds()

	// Обновляем запись
	query := `
	UPDATE etl_run_log
	SET
		end_time = ?,
		status = 'failed',
		error_message = ?,
		execution_time_seconds = ?
	WHERE id = ?
	`

	_, err = r.db.Exec(query, endTime, errorMessage, executionTime, id)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении записи о запуске ETL: %w", err)
	}

	return nil
}

// GetLastSuccessfulRun получает информацию о последнем успешном запуске ETL
func (r *MySQLRunLogRepository) GetLastSuccessfulRun() (*ETLRunLog, error) {
	query := `
	SELECT
		id, mode, start_time, IFNULL(end_time, start_time), status,
		rows_extracted, rows_transformed, rows_loaded,
		IFNULL(target_table, ''), IFNULL(error_message, ''), IFNULL(execution_time_seconds, 0)
	FROM etl_run_log
	WHERE status = 'success'
	ORDER BY end_time DESC
	LIMIT 1
	`

	var runLog ETLRunLog
	err := r.db.QueryRow(query).Scan(
		&runLog.ID, &runLog.Mode, &runLog.StartTime, &runLog.EndTime, &runLog.Status,
		&runLog.RowsExtracted, &runLog.RowsTransformed, &runLog.RowsLoaded,
		&runLog.TargetTable, &runLog.ErrorMessage, &runLog.ExecutionTimeSeconds,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Нет успешных запусков
		}
		return nil, fmt.Errorf("ошибка при получении информации о последнем успешном запуске ETL: %w", err)
	}

	return &runLog, nil
}

// GetRunStats получает статистику о запусках ETL за определенный период
func (r *MySQLRunLogRepository) GetRunStats(days int) ([]ETLRunLog, error) {
	query := `
	SELECT
		id, mode, start_time, IFNULL(end_time, start_time), status,
		rows_extracted, rows_transformed, rows_loaded,
		IFNULL(target_table, ''), IFNULL(error_message, ''), IFNULL(execution_time_seconds, 0)
	FROM etl_run_log
	WHERE start_time >= DATE_SUB(NOW(), INTERVAL ? DAY)
	ORDER BY start_time DESC
	`

	rows, err := r.db.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении статистики запусков ETL: %w", err)
	}
	defer rows.Close()

	var logs []ETLRunLog
	for rows.Next() {
		var runLog ETLRunLog
		err := rows.Scan(
			&runLog.ID, &runLog.Mode, &runLog.StartTime, &runLog.EndTime, &runLog.Status,
			&runLog.RowsExtracted, &runLog.RowsTransformed, &runLog.RowsLoaded,
			&runLog.TargetTable, &runLog.ErrorMessage, &runLog.ExecutionTimeSeconds,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка при сканировании записи о запуске ETL: %w", err)
		}
		logs = append(logs, runLog)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка после итерации по записям о запусках ETL: %w", err)
	}

	return logs, nil
}
