package load

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/LilVoxy/coursework_etl/models"
	"github.com/LilVoxy/coursework_etl/utils"
	"google.golang.org/api/iterator"
)

// Loader отвечает за загрузку подготовленных данных в облачное хранилище
type Loader struct {
	client    *bigquery.Client
	projectID string
	datasetID string
	tableID   string
	logger    *utils.ETLLogger
}

// NewLoader создает новый экземпляр Loader
func NewLoader(client *bigquery.Client, projectID, datasetID, tableID string, logger *utils.ETLLogger) *Loader {
	return &Loader{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
		tableID:   tableID,
		logger:    logger,
	}
}

// Load выполняет фазу загрузки: отправляет CSV в таблицу хранилища заданием
// загрузки с автоопределением схемы и полной перезаписью содержимого.
// Возвращает false без ошибки, если задание завершилось с ошибками в
// протоколе - это логический сбой, а не исключение.
func (l *Loader) Load(ctx context.Context, inputPath string) (bool, error) {
	startTime := time.Now()
	l.logger.LogLoadStart()

	// 1. Проверяем наличие входного файла до обращения к хранилищу
	if _, err := os.Stat(inputPath); err != nil {
		if os.IsNotExist(err) {
			l.logger.Error("Файл для загрузки не найден: %s", inputPath)
			return false, &models.NotFoundError{Path: inputPath}
		}
		return false, &models.StorageError{Op: "stat", Path: inputPath, Err: err}
	}

	// 2. Проверяем доступ к хранилищу до отправки данных
	if err := l.checkAccess(ctx); err != nil {
		l.logger.Error("Нет доступа к облачному хранилищу: %v", err)
		return false, &models.AuthError{ProjectID: l.projectID, Err: err}
	}

	// 3. Определяем, доступно ли партиционирование по годам
	header, err := readHeader(inputPath)
	if err != nil {
		return false, &models.StorageError{Op: "read", Path: inputPath, Err: err}
	}

	// 4. Настраиваем задание загрузки
	f, err := os.Open(inputPath)
	if err != nil {
		return false, &models.StorageError{Op: "read", Path: inputPath, Err: err}
	}
	defer f.Close()

	source := bigquery.NewReaderSource(f)
	source.SourceFormat = bigquery.CSV
	source.AutoDetect = true
	source.SkipLeadingRows = 1

	loader := l.client.Dataset(l.datasetID).Table(l.tableID).LoaderFrom(source)
	loader.WriteDisposition = bigquery.WriteTruncate

	if containsColumn(header, "Year") {
		loader.TimePartitioning = &bigquery.TimePartitioning{
			Type:  bigquery.YearPartitioningType,
			Field: "Year",
		}
		l.logger.Debug("Включено партиционирование таблицы по колонке Year")
	}

	// 5. Запускаем задание и ждем завершения
	job, err := loader.Run(ctx)
	if err != nil {
		return false, l.warehouseError(err)
	}

	l.logger.Info("Задание загрузки %s запущено", job.ID())

	status, err := job.Wait(ctx)
	if err != nil {
		return false, l.warehouseError(err)
	}

	// 6. Оцениваем итог задания
	ok, err := evaluateJobOutcome(status.Err(), status.Errors, l.logger)
	if err != nil {
		return false, l.warehouseError(err)
	}
	if !ok {
		return false, nil
	}

	// 7. Логируем статистику загрузки и сведения о таблице
	if status.Statistics != nil {
		if details, found := status.Statistics.Details.(*bigquery.LoadStatistics); found {
			l.logger.Info("Загружено строк: %d (%d байт)", details.OutputRows, details.OutputBytes)
		}
	}

	l.logTableMetadata(ctx)
	l.logger.LogLoadComplete(l.tableRef(), time.Since(startTime))
	return true, nil
}

// checkAccess проверяет доступ к хранилищу, запрашивая не более одного датасета
func (l *Loader) checkAccess(ctx context.Context) error {
	it := l.client.Datasets(ctx)
	it.PageInfo().MaxSize = 1

	if _, err := it.Next(); err != nil && err != iterator.Done {
		return err
	}

	return nil
}

// evaluateJobOutcome оценивает итог задания загрузки: ошибка задания - это
// исключение, непустой список ошибок при завершенном задании - логический сбой
func evaluateJobOutcome(jobErr error, jobErrors []*bigquery.Error, logger *utils.ETLLogger) (bool, error) {
	if jobErr != nil {
		return false, jobErr
	}

	if len(jobErrors) > 0 {
		logger.Error("Задание загрузки завершилось с %d ошибками в протоколе:", len(jobErrors))
		for _, jobError := range jobErrors {
			logger.Error("  - %s", jobError.Message)
		}
		return false, nil
	}

	return true, nil
}

// warehouseError оборачивает ошибку хранилища, добавляя подсказку о правах доступа
func (l *Loader) warehouseError(err error) error {
	return &models.WarehouseError{
		Op:    "load",
		Table: l.tableRef(),
		Hint:  permissionHint(err),
		Err:   err,
	}
}

// permissionHint возвращает подсказку для ошибок, похожих на проблему с правами доступа
func permissionHint(err error) string {
	if err == nil {
		return ""
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "permission") || strings.Contains(msg, "access") {
		return "Проверьте права сервисного аккаунта на датасет и таблицу"
	}

	return ""
}

// logTableMetadata логирует сведения о таблице назначения после загрузки
func (l *Loader) logTableMetadata(ctx context.Context) {
	meta, err := l.client.Dataset(l.datasetID).Table(l.tableID).Metadata(ctx)
	if err != nil {
		l.logger.Warn("Не удалось получить метаданные таблицы %s: %v", l.tableRef(), err)
		return
	}

	l.logger.Info("Таблица %s: %d полей в схеме, %d строк, %d байт",
		l.tableRef(), len(meta.Schema), meta.NumRows, meta.NumBytes)
}

// tableRef возвращает полное имя таблицы назначения
func (l *Loader) tableRef() string {
	return fmt.Sprintf("%s.%s.%s", l.projectID, l.datasetID, l.tableID)
}

// readHeader читает первую строку CSV-файла
func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err == io.EOF {
		return nil, nil
	}

	return header, err
}

// containsColumn проверяет наличие колонки с точным именем
func containsColumn(header []string, name string) bool {
	for _, n := range header {
		if n == name {
			return true
		}
	}

	return false
}
