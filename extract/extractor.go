package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/LilVoxy/coursework_etl/models"
	"github.com/LilVoxy/coursework_etl/utils"
)

// RawFileName - детерминированное имя снапшота исходных данных
const RawFileName = "gdp_data.csv"

// FallbackCSV - резервный набор данных на случай недоступности источника.
// Пайплайн должен отработать даже без ответа KNBS.
const FallbackCSV = `Year,GDP_Value,GDP_Growth_Rate,Population
2020,95.5,0.1,53.8
2021,98.2,2.8,54.0
2022,102.3,4.2,54.3`

// Extractor отвечает за получение снапшота исходных данных по HTTP
type Extractor struct {
	url       string
	outputDir string
	client    *http.Client
	logger    *utils.ETLLogger
}

// NewExtractor создает новый экземпляр Extractor
func NewExtractor(url, outputDir string, timeout time.Duration, logger *utils.ETLLogger) *Extractor {
	return &Extractor{
		url:       url,
		outputDir: outputDir,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Extract выполняет фазу извлечения данных: скачивает CSV с экономическими
// показателями и сохраняет его в outputDir. При любой ошибке получения данных
// (сетевая ошибка, статус вне 2xx) записывает резервный набор данных.
// Возвращает путь к записанному снапшоту.
func (e *Extractor) Extract(ctx context.Context) (string, error) {
	startTime := time.Now()
	e.logger.LogExtractStart()

	// 1. Готовим директорию для снапшота
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		e.logger.Error("Не удалось создать директорию %s: %v", e.outputDir, err)
		return "", &models.StorageError{Op: "mkdir", Path: e.outputDir, Err: err}
	}

	outputPath := filepath.Join(e.outputDir, RawFileName)

	// 2. Запрашиваем данные у источника
	data, err := e.download(ctx)
	if err != nil {
		e.logger.Error("Не удалось получить данные по адресу %s: %v", e.url, err)
		e.logger.Warn("⚠️ Используется резервный набор данных вместо ответа источника")
		data = []byte(FallbackCSV)
	}

	// 3. Сохраняем снапшот (при повторном запуске файл перезаписывается)
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		e.logger.Error("Не удалось записать снапшот %s: %v", outputPath, err)
		return "", &models.StorageError{Op: "write", Path: outputPath, Err: err}
	}

	e.logger.LogExtractComplete(countDataRows(data), outputPath, time.Since(startTime))
	return outputPath, nil
}

// download скачивает содержимое CSV по настроенному URL
func (e *Extractor) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании запроса: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе к источнику: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("источник вернул статус %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении ответа источника: %w", err)
	}

	return body, nil
}

// countDataRows считает количество строк данных в CSV (без заголовка)
func countDataRows(data []byte) int {
	trimmed := bytes.TrimRight(data, "\r\n")
	if len(trimmed) == 0 {
		return 0
	}

	lines := bytes.Count(trimmed, []byte("\n")) + 1
	return lines - 1 // первая строка - заголовок
}
