package analysis

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/LilVoxy/coursework_etl/utils"
)

// Config конфигурация анализа тренда ВВП
type Config struct {
	// Количество лет для прогноза
	ForecastYears int
	// Уровень доверия (0.90, 0.95, 0.99)
	ConfidenceLevel float64
	// Минимальное значение r² для признания модели значимой
	MinR2Threshold float64
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		ForecastYears:   3,
		ConfidenceLevel: 0.95,
		MinR2Threshold:  0.30, // 30% объяснённой вариации
	}
}

// TrendAnalyzer строит модель тренда ВВП по годам на основе снапшота данных
type TrendAnalyzer struct {
	logger *utils.ETLLogger
	config Config
}

// NewTrendAnalyzer создает новый экземпляр TrendAnalyzer
func NewTrendAnalyzer(logger *utils.ETLLogger, config Config) *TrendAnalyzer {
	return &TrendAnalyzer{
		logger: logger,
		config: config,
	}
}

// AnalyzeFile выполняет анализ тренда: усредняет показатель ВВП по годам,
// строит модель линейной регрессии и генерирует прогнозы на будущие годы
func (a *TrendAnalyzer) AnalyzeFile(path string) (*RegressionResult, []ForecastPoint, error) {
	startTime := time.Now()
	a.logger.Info("Запуск анализа тренда ВВП")

	// 1. Готовим точки данных по годам
	points, basis, err := a.loadDataPoints(path)
	if err != nil {
		return nil, nil, err
	}

	a.logger.Info("Подготовлено %d точек данных для анализа (показатель %s)", len(points), basis)

	// 2. Строим модель линейной регрессии
	a.logger.Info("Построение модели линейной регрессии (все значения округляются до тысячных)")
	result, err := LinearRegression(points)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка при построении модели линейной регрессии: %w", err)
	}

	// 3. Оцениваем качество модели
	a.logger.Info("Результаты модели: коэффициент наклона (a)=%.3f, сдвиг (b)=%.3f, R=%.3f, R²=%.3f",
		result.A, result.B, result.R, result.R2)
	a.logger.Info("Период анализа: с %d по %d год", result.PeriodStart, result.PeriodEnd)

	// Если модель недостаточно хороша, логируем предупреждение
	if result.R2 < a.config.MinR2Threshold {
		a.logger.Warn("Низкое качество модели (R²=%.3f < %.3f). Однако прогноз будет сделан.",
			result.R2, a.config.MinR2Threshold)
	}

	// 4. Генерируем прогнозы
	forecasts := GenerateForecasts(result, a.config.ForecastYears, a.config.ConfidenceLevel)
	for _, forecast := range forecasts {
		a.logger.Info("Прогноз на %d год: %.3f (доверительный интервал: %.3f .. %.3f)",
			forecast.Year, forecast.ForecastValue, forecast.CILower, forecast.CIUpper)
	}

	a.logger.Info("Анализ тренда завершен. Длительность: %v", time.Since(startTime))
	return result, forecasts, nil
}

// loadDataPoints читает снапшот и усредняет первый GDP-показатель по каждому году
func (a *TrendAnalyzer) loadDataPoints(path string) ([]DataPoint, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("ошибка при открытии файла данных: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, "", fmt.Errorf("ошибка при чтении файла данных: %w", err)
	}

	if len(records) < 2 {
		return nil, "", fmt.Errorf("в файле %s нет данных для анализа", path)
	}

	// Ищем колонку года и первую колонку с показателем ВВП
	header := records[0]
	yearIdx := -1
	gdpIdx := -1
	for i, name := range header {
		if name == "Year" && yearIdx == -1 {
			yearIdx = i
		}
		if gdpIdx == -1 && strings.Contains(strings.ToLower(name), "gdp") {
			gdpIdx = i
		}
	}

	if yearIdx == -1 || gdpIdx == -1 {
		return nil, "", fmt.Errorf("в данных нет колонок Year и GDP, анализ тренда невозможен")
	}

	// Усредняем показатель по каждому году
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, record := range records[1:] {
		yearValue, err := strconv.ParseFloat(strings.TrimSpace(record[yearIdx]), 64)
		if err != nil {
			continue
		}
		year := int(math.Round(yearValue))

		value, err := strconv.ParseFloat(strings.TrimSpace(record[gdpIdx]), 64)
		if err != nil {
			value = 0
		}

		sums[year] += value
		counts[year]++
	}

	years := make([]int, 0, len(sums))
	for year := range sums {
		years = append(years, year)
	}
	sort.Ints(years)

	points := make([]DataPoint, 0, len(years))
	for _, year := range years {
		points = append(points, DataPoint{
			X:    float64(year),
			Y:    RoundToThousandth(sums[year] / float64(counts[year])),
			Year: year,
		})
	}

	return points, header[gdpIdx], nil
}
