package validate

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/LilVoxy/coursework_etl/models"
	"github.com/LilVoxy/coursework_etl/utils"
	"google.golang.org/api/iterator"
)

// Summary содержит сводные показатели качества загруженных данных
type Summary struct {
	TotalRows      int64   `json:"total_rows"`
	UniqueCounties int64   `json:"unique_counties"`
	EarliestYear   int64   `json:"earliest_year"`
	LatestYear     int64   `json:"latest_year"`
	AvgGDP         float64 `json:"avg_gdp"`
}

// Validator отвечает за проверку качества данных после загрузки
type Validator struct {
	client    *bigquery.Client
	projectID string
	datasetID string
	tableID   string
	logger    *utils.ETLLogger
}

// NewValidator создает новый экземпляр Validator
func NewValidator(client *bigquery.Client, projectID, datasetID, tableID string, logger *utils.ETLLogger) *Validator {
	return &Validator{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
		tableID:   tableID,
		logger:    logger,
	}
}

// Run выполняет проверку качества данных: считает сводные показатели по
// загруженной таблице и перезаписывает их в таблицу <table>_validation.
// Ошибка проверки не отменяет уже выполненную загрузку.
func (v *Validator) Run(ctx context.Context) (*Summary, error) {
	startTime := time.Now()
	v.logger.Info("Начало проверки качества загруженных данных")

	// 1. Формируем и запускаем запрос сводных показателей
	query := v.client.Query(buildSummaryQuery(v.projectID, v.datasetID, v.tableID))
	query.UseLegacySQL = false
	query.Dst = v.client.Dataset(v.datasetID).Table(v.validationTableID())
	query.WriteDisposition = bigquery.WriteTruncate

	job, err := query.Run(ctx)
	if err != nil {
		return nil, v.warehouseError(err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return nil, v.warehouseError(err)
	}

	if err := status.Err(); err != nil {
		return nil, v.warehouseError(err)
	}

	// 2. Читаем сводную строку результата
	it, err := job.Read(ctx)
	if err != nil {
		return nil, v.warehouseError(err)
	}

	var row []bigquery.Value
	if err := it.Next(&row); err != nil {
		if err == iterator.Done {
			return nil, v.warehouseError(fmt.Errorf("запрос проверки не вернул ни одной строки"))
		}
		return nil, v.warehouseError(err)
	}

	summary, err := parseSummaryRow(row)
	if err != nil {
		return nil, v.warehouseError(err)
	}

	v.logger.Info("Проверка качества данных завершена. Длительность: %v", time.Since(startTime))
	return summary, nil
}

// Report логирует сводные показатели проверки
func (v *Validator) Report(summary *Summary) {
	if summary == nil {
		return
	}

	v.logger.Info("Результаты проверки качества данных:")
	v.logger.Info("  Всего строк: %d", summary.TotalRows)
	v.logger.Info("  Уникальных округов: %d", summary.UniqueCounties)
	v.logger.Info("  Годы: с %d по %d", summary.EarliestYear, summary.LatestYear)
	v.logger.Info("  Средний ВВП: %.3f", summary.AvgGDP)
}

// validationTableID возвращает имя таблицы с результатами проверки
func (v *Validator) validationTableID() string {
	return v.tableID + "_validation"
}

// warehouseError оборачивает ошибку хранилища при проверке данных
func (v *Validator) warehouseError(err error) error {
	return &models.WarehouseError{
		Op:    "query",
		Table: fmt.Sprintf("%s.%s.%s", v.projectID, v.datasetID, v.validationTableID()),
		Err:   err,
	}
}

// buildSummaryQuery формирует запрос сводных показателей по загруженной таблице
func buildSummaryQuery(projectID, datasetID, tableID string) string {
	return fmt.Sprintf(
		"SELECT\n"+
			"  COUNT(*) as total_rows,\n"+
			"  COUNT(DISTINCT County) as unique_counties,\n"+
			"  MIN(Year) as earliest_year,\n"+
			"  MAX(Year) as latest_year,\n"+
			"  AVG(GDP_Value) as avg_gdp\n"+
			"FROM `%s.%s.%s`",
		projectID, datasetID, tableID)
}

// parseSummaryRow разбирает строку результата запроса проверки
func parseSummaryRow(row []bigquery.Value) (*Summary, error) {
	if len(row) != 5 {
		return nil, fmt.Errorf("неожиданное количество колонок в результате проверки: %d", len(row))
	}

	return &Summary{
		TotalRows:      toInt64(row[0]),
		UniqueCounties: toInt64(row[1]),
		EarliestYear:   toInt64(row[2]),
		LatestYear:     toInt64(row[3]),
		AvgGDP:         toFloat64(row[4]),
	}, nil
}

// toInt64 приводит значение из результата запроса к int64
func toInt64(v bigquery.Value) int64 {
	switch value := v.(type) {
	case int64:
		return value
	case int:
		return int64(value)
	case float64:
		return int64(value)
	default:
		return 0
	}
}

// toFloat64 приводит значение из результата запроса к float64
func toFloat64(v bigquery.Value) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case int64:
		return float64(value)
	case int:
		return float64(value)
	default:
		return 0
	}
}
