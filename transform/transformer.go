package transform

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"time"

	"github.com/LilVoxy/coursework_etl/models"
	"github.com/LilVoxy/coursework_etl/utils"
	"github.com/go-gota/gota/dataframe"
)

// TransformedFileName - детерминированное имя файла с подготовленными данными
const TransformedFileName = "gdp_transformed.csv"

// minExpectedRows - минимальное ожидаемое количество строк (в Кении 47 округов)
const minExpectedRows = 40

// Transformer отвечает за очистку и агрегацию снапшота данных
type Transformer struct {
	outputDir string
	logger    *utils.ETLLogger
}

// NewTransformer создает новый экземпляр Transformer
func NewTransformer(outputDir string, logger *utils.ETLLogger) *Transformer {
	return &Transformer{
		outputDir: outputDir,
		logger:    logger,
	}
}

// Transform выполняет фазу трансформации: заполняет пропуски нулями, приводит
// GDP-колонки к числовому типу, рассчитывает рост ВВП по годам и агрегирует
// показатели по округам. Возвращает путь к подготовленному CSV.
func (t *Transformer) Transform(inputPath string) (string, error) {
	startTime := time.Now()
	t.logger.LogTransformStart()

	// 1. Читаем исходный снапшот
	header, records, err := t.readSnapshot(inputPath)
	if err != nil {
		return "", err
	}

	if len(records) < minExpectedRows {
		t.logger.Warn("Получено всего %d строк данных, ожидалось не менее 47 округов Кении", len(records))
	}

	// 2. Заполняем пропущенные значения нулями
	filled := fillMissing(records)
	if filled > 0 {
		t.logger.Info("Заполнено нулями %d пропущенных значений", filled)
	}

	// 3. Приводим GDP-колонки к числовому типу
	gdpCols := gdpColumns(header)
	coerced := coerceNumeric(records, gdpCols)
	if coerced > 0 {
		t.logger.Info("Заменено нулями %d нечисловых значений в GDP-колонках", coerced)
	}

	outputPath := filepath.Join(t.outputDir, TransformedFileName)

	// Снапшот без строк данных не считается пустым: записываем только заголовок
	if len(records) == 0 {
		if err := t.writeHeaderOnly(header, gdpCols, outputPath); err != nil {
			return "", err
		}
		t.logger.LogTransformComplete(0, outputPath, time.Since(startTime))
		return outputPath, nil
	}

	// 4. Строим датафрейм с автоопределением типов колонок
	df := dataframe.LoadRecords(append([][]string{header}, records...))
	if df.Err != nil {
		return "", &models.TransformError{Stage: "построение датафрейма", Err: df.Err}
	}

	// 5. Рассчитываем рост ВВП по годам
	df, err = addGrowthColumn(df, header, gdpCols, t.logger)
	if err != nil {
		return "", err
	}

	// 6. Агрегируем показатели по округам
	df, err = aggregateByCounty(df, header, t.logger)
	if err != nil {
		return "", err
	}

	// 7. Записываем результат
	rows := df.Nrow()
	if err := t.writeResult(df, outputPath); err != nil {
		return "", err
	}

	t.logger.LogTransformComplete(rows, outputPath, time.Since(startTime))
	return outputPath, nil
}

// readSnapshot читает CSV-файл и возвращает заголовок и строки данных
func (t *Transformer) readSnapshot(inputPath string) ([]string, [][]string, error) {
	if _, err := os.Stat(inputPath); err != nil {
		if os.IsNotExist(err) {
			t.logger.Error("Входной файл не найден: %s", inputPath)
			return nil, nil, &models.NotFoundError{Path: inputPath}
		}
		return nil, nil, &models.StorageError{Op: "stat", Path: inputPath, Err: err}
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return nil, nil, &models.StorageError{Op: "read", Path: inputPath, Err: err}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, &models.TransformError{Stage: "чтение снапшота", Err: err}
	}

	if len(all) == 0 {
		t.logger.Error("Снапшот %s не содержит данных", inputPath)
		return nil, nil, &models.EmptyDataError{Path: inputPath, Reason: "в файле нет ни одной колонки"}
	}

	return all[0], all[1:], nil
}

// writeResult записывает датафрейм в CSV (с заголовком, без индексной колонки)
func (t *Transformer) writeResult(df dataframe.DataFrame, outputPath string) error {
	if err := os.MkdirAll(t.outputDir, 0755); err != nil {
		return &models.StorageError{Op: "mkdir", Path: t.outputDir, Err: err}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return &models.StorageError{Op: "write", Path: outputPath, Err: err}
	}
	defer f.Close()

	if err := df.WriteCSV(f); err != nil {
		return &models.TransformError{Stage: "запись результата", Err: err}
	}

	return nil
}

// writeHeaderOnly записывает результат для снапшота без строк данных
func (t *Transformer) writeHeaderOnly(header []string, gdpCols []int, outputPath string) error {
	outHeader := make([]string, len(header))
	copy(outHeader, header)

	// Колонка роста ВВП появляется и в пустом результате
	if hasColumn(header, "Year") && len(gdpCols) > 0 {
		outHeader = append(outHeader, "GDP_Growth")
	}

	if err := os.MkdirAll(t.outputDir, 0755); err != nil {
		return &models.StorageError{Op: "mkdir", Path: t.outputDir, Err: err}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return &models.StorageError{Op: "write", Path: outputPath, Err: err}
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(outHeader); err != nil {
		return &models.TransformError{Stage: "запись результата", Err: err}
	}
	w.Flush()

	if err := w.Error(); err != nil {
		return &models.TransformError{Stage: "запись результата", Err: err}
	}

	return nil
}
