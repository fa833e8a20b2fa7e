package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// PipelineConfig содержит конфигурацию ETL-пайплайна
type PipelineConfig struct {
	// URL источника данных (CSV с экономическими показателями)
	SourceURL string `json:"source_url"`

	// Таймаут HTTP-запроса к источнику
	HTTPTimeout time.Duration `json:"http_timeout"`

	// Проект облачного хранилища
	ProjectID string `json:"project_id"`

	// Датасет и таблица назначения
	Dataset string `json:"dataset"`
	Table   string `json:"table"`

	// Файл сервисного аккаунта; пустая строка - Application Default Credentials
	CredentialsFile string `json:"credentials_file"`

	// Директории для снапшотов данных
	RawDir         string `json:"raw_dir"`
	TransformedDir string `json:"transformed_dir"`

	// Директория архива снапшотов; пустая строка - архивирование отключено
	ArchiveDir string `json:"archive_dir"`

	// DSN базы метаданных для журнала запусков; пустая строка - журнал отключен
	MetadataDSN string `json:"metadata_dsn"`

	// Cron-расписание ежедневного запуска (часовой пояс Africa/Nairobi)
	ScheduleCron string `json:"schedule_cron"`

	// Альтернативный фиксированный интервал запуска; имеет приоритет над cron
	RunInterval time.Duration `json:"run_interval"`

	// Количество повторных запусков задачи и задержка между ними
	TaskRetries    int           `json:"task_retries"`
	TaskRetryDelay time.Duration `json:"task_retry_delay"`

	// Адрес операционного HTTP-сервера (режим scheduled)
	HTTPAddr string `json:"http_addr"`

	// Директория лог-файлов
	LogDir string `json:"log_dir"`

	// Включение/отключение отладочного логирования
	EnableDetailedLogging bool `json:"enable_detailed_logging"`
}

// Значения конфигурации по умолчанию
var DefaultPipelineConfig = PipelineConfig{
	SourceURL:             "https://example-knbs-gdp.csv",
	HTTPTimeout:           30 * time.Second,
	ProjectID:             "your-project-id",
	Dataset:               "economic_data",
	Table:                 "kenyan_gdp",
	RawDir:                "data/raw",
	TransformedDir:        "data/transformed",
	ScheduleCron:          "0 8 * * *",
	TaskRetries:           1,
	TaskRetryDelay:        5 * time.Minute,
	HTTPAddr:              ":8085",
	LogDir:                "logs",
	EnableDetailedLogging: true,
}

// GetConfig возвращает конфигурацию пайплайна с учетом переменных окружения
func GetConfig() PipelineConfig {
	config := DefaultPipelineConfig

	// Источник данных
	config.SourceURL = getEnv("KNBS_API_URL", config.SourceURL)
	config.HTTPTimeout = getEnvDuration("ETL_HTTP_TIMEOUT", config.HTTPTimeout)

	// Облачное хранилище
	config.ProjectID = getEnv("GOOGLE_PROJECT_ID", config.ProjectID)
	config.Dataset = getEnv("BIGQUERY_DATASET", config.Dataset)
	config.Table = getEnv("BIGQUERY_TABLE", config.Table)
	config.CredentialsFile = getEnv("GOOGLE_APPLICATION_CREDENTIALS", config.CredentialsFile)

	// Директории данных
	config.RawDir = getEnv("ETL_RAW_DIR", config.RawDir)
	config.TransformedDir = getEnv("ETL_TRANSFORMED_DIR", config.TransformedDir)
	config.ArchiveDir = getEnv("ETL_ARCHIVE_DIR", config.ArchiveDir)

	// Метаданные
	config.MetadataDSN = getEnv("ETL_METADATA_DSN", config.MetadataDSN)

	// Расписание
	config.ScheduleCron = getEnv("ETL_SCHEDULE_CRON", config.ScheduleCron)
	config.RunInterval = getEnvDuration("ETL_RUN_INTERVAL", config.RunInterval)

	// Повторные запуски задач
	config.TaskRetries = getEnvInt("ETL_TASK_RETRIES", config.TaskRetries)
	config.TaskRetryDelay = getEnvDuration("ETL_TASK_RETRY_DELAY", config.TaskRetryDelay)

	// Операционный сервер и логирование
	config.HTTPAddr = getEnv("ETL_HTTP_ADDR", config.HTTPAddr)
	config.LogDir = getEnv("ETL_LOG_DIR", config.LogDir)
	config.EnableDetailedLogging = getEnvBool("ETL_VERBOSE", config.EnableDetailedLogging)

	return config
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt возвращает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Некорректное значение %s=%q, используется значение по умолчанию %d", key, value, defaultValue)
		return defaultValue
	}

	return parsed
}

// getEnvDuration возвращает значение переменной окружения как длительность (например, "30s", "5m")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Некорректное значение %s=%q, используется значение по умолчанию %v", key, value, defaultValue)
		return defaultValue
	}

	return parsed
}

// getEnvBool возвращает булево значение переменной окружения
func getEnvBool(key string, defaultValue bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Некорректное значение %s=%q, используется значение по умолчанию %v", key, value, defaultValue)
		return defaultValue
	}

	return parsed
}
