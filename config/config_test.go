package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// pipelineEnvKeys перечисляет все переменные окружения, влияющие на конфигурацию
var pipelineEnvKeys = []string{
	"KNBS_API_URL",
	"ETL_HTTP_TIMEOUT",
	"GOOGLE_PROJECT_ID",
	"BIGQUERY_DATASET",
	"BIGQUERY_TABLE",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"ETL_RAW_DIR",
	"ETL_TRANSFORMED_DIR",
	"ETL_ARCHIVE_DIR",
	"ETL_METADATA_DSN",
	"ETL_SCHEDULE_CRON",
	"ETL_RUN_INTERVAL",
	"ETL_TASK_RETRIES",
	"ETL_TASK_RETRY_DELAY",
	"ETL_HTTP_ADDR",
	"ETL_LOG_DIR",
	"ETL_VERBOSE",
}

// clearPipelineEnv сбрасывает переменные окружения пайплайна: пустое значение
// равносильно отсутствию переменной
func clearPipelineEnv(t *testing.T) {
	t.Helper()
	for _, key := range pipelineEnvKeys {
		t.Setenv(key, "")
	}
}

func TestGetConfigDefaults(t *testing.T) {
	clearPipelineEnv(t)

	config := GetConfig()

	assert.Equal(t, DefaultPipelineConfig, config)
	assert.Equal(t, "0 8 * * *", config.ScheduleCron)
	assert.Equal(t, 5*time.Minute, config.TaskRetryDelay)
	assert.True(t, config.EnableDetailedLogging)
}

func TestGetConfigOverrides(t *testing.T) {
	clearPipelineEnv(t)

	t.Setenv("KNBS_API_URL", "https://knbs.example.org/gdp.csv")
	t.Setenv("ETL_HTTP_TIMEOUT", "90s")
	t.Setenv("GOOGLE_PROJECT_ID", "kenya-stats")
	t.Setenv("BIGQUERY_DATASET", "economic")
	t.Setenv("BIGQUERY_TABLE", "gdp")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/secrets/service-account.json")
	t.Setenv("ETL_RAW_DIR", "/data/raw")
	t.Setenv("ETL_TRANSFORMED_DIR", "/data/transformed")
	t.Setenv("ETL_ARCHIVE_DIR", "/data/archive")
	t.Setenv("ETL_METADATA_DSN", "etl:etl@tcp(localhost:3306)/etl_metadata")
	t.Setenv("ETL_SCHEDULE_CRON", "30 6 * * *")
	t.Setenv("ETL_RUN_INTERVAL", "1h")
	t.Setenv("ETL_TASK_RETRIES", "3")
	t.Setenv("ETL_TASK_RETRY_DELAY", "30s")
	t.Setenv("ETL_HTTP_ADDR", ":9090")
	t.Setenv("ETL_LOG_DIR", "/var/log/etl")
	t.Setenv("ETL_VERBOSE", "false")

	config := GetConfig()

	assert.Equal(t, "https://knbs.example.org/gdp.csv", config.SourceURL)
	assert.Equal(t, 90*time.Second, config.HTTPTimeout)
	assert.Equal(t, "kenya-stats", config.ProjectID)
	assert.Equal(t, "economic", config.Dataset)
	assert.Equal(t, "gdp", config.Table)
	assert.Equal(t, "/secrets/service-account.json", config.CredentialsFile)
	assert.Equal(t, "/data/raw", config.RawDir)
	assert.Equal(t, "/data/transformed", config.TransformedDir)
	assert.Equal(t, "/data/archive", config.ArchiveDir)
	assert.Equal(t, "etl:etl@tcp(localhost:3306)/etl_metadata", config.MetadataDSN)
	assert.Equal(t, "30 6 * * *", config.ScheduleCron)
	assert.Equal(t, time.Hour, config.RunInterval)
	assert.Equal(t, 3, config.TaskRetries)
	assert.Equal(t, 30*time.Second, config.TaskRetryDelay)
	assert.Equal(t, ":9090", config.HTTPAddr)
	assert.Equal(t, "/var/log/etl", config.LogDir)
	assert.False(t, config.EnableDetailedLogging)
}

func TestGetConfigInvalidValuesFallBackToDefaults(t *testing.T) {
	clearPipelineEnv(t)

	t.Setenv("ETL_TASK_RETRIES", "abc")
	t.Setenv("ETL_HTTP_TIMEOUT", "fast")
	t.Setenv("ETL_RUN_INTERVAL", "soon")
	t.Setenv("ETL_VERBOSE", "bogus")

	config := GetConfig()

	assert.Equal(t, DefaultPipelineConfig.TaskRetries, config.TaskRetries)
	assert.Equal(t, DefaultPipelineConfig.HTTPTimeout, config.HTTPTimeout)
	assert.Equal(t, DefaultPipelineConfig.RunInterval, config.RunInterval)
	assert.Equal(t, DefaultPipelineConfig.EnableDetailedLogging, config.EnableDetailedLogging)
}
