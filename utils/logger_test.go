package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLogFile(t *testing.T, dir string) string {
	t.Helper()
	name := filepath.Join(dir, "etl_log_"+time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	return string(data)
}

func TestLoggerWritesToDailyFile(t *testing.T) {
	dir := t.TempDir()
	logger := NewETLLoggerWithDir(dir, false)

	logger.Info("Извлечено %d строк данных", 47)
	logger.Warn("Мало данных")
	logger.Error("Ошибка в фазе Load: %v", os.ErrPermission)

	content := readLogFile(t, dir)
	assert.Contains(t, content, "INFO: ")
	assert.Contains(t, content, "Извлечено 47 строк данных")
	assert.Contains(t, content, "WARN: ")
	assert.Contains(t, content, "Мало данных")
	assert.Contains(t, content, "ERROR: ")
	assert.Contains(t, content, "Ошибка в фазе Load: permission denied")
}

func TestLoggerDebugRespectsVerboseFlag(t *testing.T) {
	t.Run("verbose выключен", func(t *testing.T) {
		dir := t.TempDir()
		logger := NewETLLoggerWithDir(dir, false)

		logger.Debug("подробности запроса")

		content := readLogFile(t, dir)
		assert.NotContains(t, content, "подробности запроса")
	})

	t.Run("verbose включен", func(t *testing.T) {
		dir := t.TempDir()
		logger := NewETLLoggerWithDir(dir, true)

		logger.Debug("подробности запроса")

		content := readLogFile(t, dir)
		assert.Contains(t, content, "DEBUG: ")
		assert.Contains(t, content, "подробности запроса")
	})
}

func TestLoggerPhaseHelpers(t *testing.T) {
	dir := t.TempDir()
	logger := NewETLLoggerWithDir(dir, false)

	logger.LogETLStart()
	logger.LogExtractComplete(94, "data/raw/gdp_data.csv", time.Second)
	logger.LogTransformComplete(47, "data/transformed/gdp_transformed.csv", time.Second)
	logger.LogLoadComplete("kenya-stats.economic_data.kenyan_gdp", time.Second)
	logger.LogETLComplete(time.Now().Add(-time.Minute), 47, "kenya-stats.economic_data.kenyan_gdp")

	content := readLogFile(t, dir)
	assert.Contains(t, content, "Начало выполнения ETL-процесса")
	assert.Contains(t, content, "Извлечено 94 строк данных в data/raw/gdp_data.csv")
	assert.Contains(t, content, "Подготовлено 47 строк данных в data/transformed/gdp_transformed.csv")
	assert.Contains(t, content, "Фаза Load завершена. Таблица: kenya-stats.economic_data.kenyan_gdp")
	assert.Contains(t, content, "Загружено 47 строк в таблицу kenya-stats.economic_data.kenyan_gdp")
}
