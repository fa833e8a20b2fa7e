package config

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// ConnectMetadataDB устанавливает подключение к базе метаданных журнала запусков
func ConnectMetadataDB(config PipelineConfig) (*sql.DB, error) {
	// Для сканирования TIMESTAMP в time.Time драйверу нужен parseTime
	dsn := config.MetadataDSN
	if !strings.Contains(dsn, "parseTime") {
		if strings.Contains(dsn, "?") {
			dsn += "&parseTime=true"
		} else {
			dsn += "?parseTime=true"
		}
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе метаданных: %w", err)
	}

	// Настройка параметров подключения
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Проверка подключения
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось установить соединение с базой метаданных: %w", err)
	}

	log.Println("Успешное подключение к базе метаданных")
	return db, nil
}

// CloseMetadataDB закрывает подключение к базе метаданных
func CloseMetadataDB(db *sql.DB) {
	if db == nil {
		return
	}

	if err := db.Close(); err != nil {
		log.Printf("Ошибка при закрытии соединения с базой метаданных: %v", err)
	} else {
		log.Println("Соединение с базой метаданных закрыто")
	}
}
