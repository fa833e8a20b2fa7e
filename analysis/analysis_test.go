package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LilVoxy/coursework_etl/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(t *testing.T) *TrendAnalyzer {
	t.Helper()
	logger := utils.NewETLLoggerWithDir(t.TempDir(), false)
	return NewTrendAnalyzer(logger, DefaultConfig())
}

func writeDataFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gdp_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLinearRegressionPerfectFit(t *testing.T) {
	// Точки лежат на прямой y = 2x + 1
	points := []DataPoint{
		{X: 2018, Y: 4037, Year: 2018},
		{X: 2019, Y: 4039, Year: 2019},
		{X: 2020, Y: 4041, Year: 2020},
		{X: 2021, Y: 4043, Year: 2021},
		{X: 2022, Y: 4045, Year: 2022},
	}

	result, err := LinearRegression(points)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, result.A, 1e-9)
	assert.InDelta(t, 1.0, result.B, 1e-9)
	assert.InDelta(t, 1.0, result.R, 1e-9)
	assert.InDelta(t, 1.0, result.R2, 1e-9)
	assert.Equal(t, 2018, result.PeriodStart)
	assert.Equal(t, 2022, result.PeriodEnd)
}

func TestLinearRegressionRequiresTwoPoints(t *testing.T) {
	_, err := LinearRegression([]DataPoint{{X: 2020, Y: 100, Year: 2020}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "минимум 2 точки")
}

func TestLinearRegressionSameX(t *testing.T) {
	points := []DataPoint{
		{X: 2020, Y: 100, Year: 2020},
		{X: 2020, Y: 110, Year: 2020},
	}

	_, err := LinearRegression(points)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "все X одинаковы")
}

func TestRoundToThousandth(t *testing.T) {
	assert.InDelta(t, 2.0, RoundToThousandth(2.0004), 1e-9)
	assert.InDelta(t, 2.001, RoundToThousandth(2.0006), 1e-9)
	assert.InDelta(t, 3.142, RoundToThousandth(3.14159), 1e-9)
	assert.InDelta(t, 0.0, RoundToThousandth(0), 1e-9)
}

func TestPredict(t *testing.T) {
	result := &RegressionResult{A: 2, B: 1}
	assert.InDelta(t, 21.0, Predict(result, 10), 1e-9)
}

func TestGenerateForecastsPerfectFit(t *testing.T) {
	points := []DataPoint{
		{X: 2018, Y: 4037, Year: 2018},
		{X: 2019, Y: 4039, Year: 2019},
		{X: 2020, Y: 4041, Year: 2020},
		{X: 2021, Y: 4043, Year: 2021},
		{X: 2022, Y: 4045, Year: 2022},
	}

	result, err := LinearRegression(points)
	require.NoError(t, err)

	forecasts := GenerateForecasts(result, 3, 0.95)
	require.Len(t, forecasts, 3)

	expected := map[int]float64{2023: 4047, 2024: 4049, 2025: 4051}
	for i, forecast := range forecasts {
		assert.Equal(t, 2023+i, forecast.Year)
		assert.InDelta(t, expected[forecast.Year], forecast.ForecastValue, 1e-9)
		// При нулевых остатках доверительный интервал вырождается в точку
		assert.InDelta(t, forecast.ForecastValue, forecast.CILower, 1e-9)
		assert.InDelta(t, forecast.ForecastValue, forecast.CIUpper, 1e-9)
	}
}

func TestAnalyzeFile(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	path := writeDataFile(t, "County,Year,GDP_Value\n"+
		"Nairobi,2020,100\n"+
		"Mombasa,2020,110\n"+
		"Nairobi,2021,120\n"+
		"Mombasa,2021,130\n"+
		"Nairobi,2022,140\n"+
		"Mombasa,2022,150\n")

	result, forecasts, err := analyzer.AnalyzeFile(path)
	require.NoError(t, err)

	// Средние по годам: 105, 125, 145 - прямая с наклоном 20
	assert.InDelta(t, 20.0, result.A, 1e-9)
	assert.InDelta(t, 1.0, result.R2, 1e-9)
	assert.Equal(t, 2020, result.PeriodStart)
	assert.Equal(t, 2022, result.PeriodEnd)

	require.Len(t, forecasts, 3)
	assert.Equal(t, 2023, forecasts[0].Year)
	assert.InDelta(t, 165.0, forecasts[0].ForecastValue, 1e-9)
}

func TestAnalyzeFileParsesFloatYears(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	// После агрегации по округам годы записываются как числа с плавающей точкой
	path := writeDataFile(t, "Year,GDP_Value\n"+
		"2020.000000,100\n"+
		"2021.000000,110\n")

	result, _, err := analyzer.AnalyzeFile(path)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, result.A, 1e-9)
	assert.Equal(t, 2020, result.PeriodStart)
	assert.Equal(t, 2021, result.PeriodEnd)
}

func TestAnalyzeFileErrors(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	t.Run("отсутствующий файл", func(t *testing.T) {
		_, _, err := analyzer.AnalyzeFile(filepath.Join(t.TempDir(), "missing.csv"))
		assert.Error(t, err)
	})

	t.Run("только заголовок", func(t *testing.T) {
		path := writeDataFile(t, "Year,GDP_Value\n")
		_, _, err := analyzer.AnalyzeFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "нет данных для анализа")
	})

	t.Run("нет нужных колонок", func(t *testing.T) {
		path := writeDataFile(t, "County,Population\nNairobi,4500000\n")
		_, _, err := analyzer.AnalyzeFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "нет колонок Year и GDP")
	})
}
