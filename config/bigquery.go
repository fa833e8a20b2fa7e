package config

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/option"
)

// WarehouseConnection содержит клиент облачного хранилища
type WarehouseConnection struct {
	Client    *bigquery.Client
	ProjectID string
}

// ConnectWarehouse создает клиент BigQuery для проекта из конфигурации
func ConnectWarehouse(ctx context.Context, config PipelineConfig) (*WarehouseConnection, error) {
	var opts []option.ClientOption

	// 1. Определяем учетные данные
	if config.CredentialsFile != "" {
		log.Printf("Используется файл сервисного аккаунта: %s", config.CredentialsFile)
		opts = append(opts, option.WithCredentialsFile(config.CredentialsFile))
	} else {
		// Клиент сам найдет учетные данные окружения (Application Default Credentials)
		log.Println("⚠️ GOOGLE_APPLICATION_CREDENTIALS не задан, используются учетные данные окружения")
	}

	// 2. Создаем клиент
	client, err := bigquery.NewClient(ctx, config.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к облачному хранилищу: %w", err)
	}

	log.Printf("Создан клиент облачного хранилища для проекта %s", config.ProjectID)

	return &WarehouseConnection{
		Client:    client,
		ProjectID: config.ProjectID,
	}, nil
}

// CloseWarehouse закрывает подключение к облачному хранилищу
func CloseWarehouse(connection *WarehouseConnection) {
	if connection == nil || connection.Client == nil {
		return
	}

	if err := connection.Client.Close(); err != nil {
		log.Printf("Ошибка при закрытии подключения к облачному хранилищу: %v", err)
	} else {
		log.Println("Соединение с облачным хранилищем закрыто")
	}
}
