package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Репозитории журнала запусков должны реализовывать общий интерфейс
var (
	_ RunLogRepository = (*MySQLRunLogRepository)(nil)
	_ RunLogRepository = (*NoopRunLogRepository)(nil)
)

func TestStorageError(t *testing.T) {
	err := &StorageError{Op: "mkdir", Path: "data/raw", Err: os.ErrPermission}

	assert.EqualError(t, err, "ошибка файловой системы (mkdir) для data/raw: permission denied")

	wrapped := fmt.Errorf("ошибка при создании директории: %w", err)
	var target *StorageError
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "mkdir", target.Op)
	assert.ErrorIs(t, wrapped, os.ErrPermission)
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{Path: "data/raw/gdp_data.csv"}

	assert.EqualError(t, err, "входной файл не найден: data/raw/gdp_data.csv")

	wrapped := fmt.Errorf("ошибка при чтении снапшота: %w", err)
	var target *NotFoundError
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "data/raw/gdp_data.csv", target.Path)
}

func TestEmptyDataError(t *testing.T) {
	err := &EmptyDataError{Path: "data/raw/gdp_data.csv", Reason: "файл пуст"}

	assert.EqualError(t, err, "нет данных для обработки в data/raw/gdp_data.csv: файл пуст")
}

func TestTransformError(t *testing.T) {
	inner := errors.New("неожиданный конец файла")
	err := &TransformError{Stage: "чтение", Err: inner}

	assert.EqualError(t, err, "ошибка трансформации на этапе «чтение»: неожиданный конец файла")
	assert.ErrorIs(t, err, inner)
}

func TestAuthError(t *testing.T) {
	inner := errors.New("token expired")
	err := &AuthError{ProjectID: "kenya-stats", Err: inner}

	assert.EqualError(t, err, "нет доступа к проекту kenya-stats: token expired")
	assert.ErrorIs(t, err, inner)
}

func TestWarehouseError(t *testing.T) {
	inner := errors.New("quota exceeded")

	t.Run("без подсказки", func(t *testing.T) {
		err := &WarehouseError{Op: "load", Table: "kenya-stats.economic_data.kenyan_gdp", Err: inner}

		assert.EqualError(t, err, "ошибка хранилища (load) для таблицы kenya-stats.economic_data.kenyan_gdp: quota exceeded")
		assert.ErrorIs(t, err, inner)
	})

	t.Run("с подсказкой", func(t *testing.T) {
		err := &WarehouseError{
			Op:    "load",
			Table: "kenya-stats.economic_data.kenyan_gdp",
			Hint:  "Проверьте права сервисного аккаунта",
			Err:   inner,
		}

		assert.Contains(t, err.Error(), "quota exceeded")
		assert.Contains(t, err.Error(), ". Проверьте права сервисного аккаунта")
	})
}

func TestNoopRunLogRepository(t *testing.T) {
	repo := NewNoopRunLogRepository()

	assert.NoError(t, repo.CreateLogEntry("run-1", "once", time.Now()))
	assert.NoError(t, repo.UpdateLogEntrySuccess("run-1", time.Now(), 94, 47, 47, "kenya-stats.economic_data.kenyan_gdp"))
	assert.NoError(t, repo.UpdateLogEntryFailure("run-1", time.Now(), "ошибка"))

	run, err := repo.GetLastSuccessfulRun()
	assert.NoError(t, err)
	assert.Nil(t, run)

	stats, err := repo.GetRunStats(7)
	assert.NoError(t, err)
	assert.Nil(t, stats)
}

func TestRunEventJSON(t *testing.T) {
	event := RunEvent{
		Type:      EventTaskFinished,
		RunID:     "run-1",
		Task:      "extract_task",
		Status:    "success",
		Timestamp: time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"type":"task_finished"`)
	assert.Contains(t, string(data), `"run_id":"run-1"`)
	assert.Contains(t, string(data), `"task":"extract_task"`)
	assert.Contains(t, string(data), `"status":"success"`)
	// Пустое сообщение не попадает в JSON
	assert.NotContains(t, string(data), `"message"`)
}
