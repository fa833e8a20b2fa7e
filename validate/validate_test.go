package validate

import (
	"errors"
	"testing"

	"cloud.google.com/go/bigquery"
	"github.com/LilVoxy/coursework_etl/models"
	"github.com/LilVoxy/coursework_etl/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	logger := utils.NewETLLoggerWithDir(t.TempDir(), false)
	return NewValidator(nil, "kenya-stats", "economic_data", "kenyan_gdp", logger)
}

func TestBuildSummaryQuery(t *testing.T) {
	query := buildSummaryQuery("kenya-stats", "economic_data", "kenyan_gdp")

	assert.Contains(t, query, "FROM `kenya-stats.economic_data.kenyan_gdp`")
	assert.Contains(t, query, "COUNT(*) as total_rows")
	assert.Contains(t, query, "COUNT(DISTINCT County) as unique_counties")
	assert.Contains(t, query, "MIN(Year) as earliest_year")
	assert.Contains(t, query, "MAX(Year) as latest_year")
	assert.Contains(t, query, "AVG(GDP_Value) as avg_gdp")
}

func TestValidationTableID(t *testing.T) {
	validator := newTestValidator(t)
	assert.Equal(t, "kenyan_gdp_validation", validator.validationTableID())
}

func TestParseSummaryRow(t *testing.T) {
	t.Run("целочисленные значения", func(t *testing.T) {
		row := []bigquery.Value{int64(94), int64(47), int64(2020), int64(2023), 105.5}

		summary, err := parseSummaryRow(row)
		require.NoError(t, err)

		assert.Equal(t, int64(94), summary.TotalRows)
		assert.Equal(t, int64(47), summary.UniqueCounties)
		assert.Equal(t, int64(2020), summary.EarliestYear)
		assert.Equal(t, int64(2023), summary.LatestYear)
		assert.InDelta(t, 105.5, summary.AvgGDP, 1e-9)
	})

	t.Run("значения с плавающей точкой", func(t *testing.T) {
		// После агрегации по округам годы хранятся как FLOAT
		row := []bigquery.Value{int64(47), int64(47), 2020.0, 2023.0, int64(100)}

		summary, err := parseSummaryRow(row)
		require.NoError(t, err)

		assert.Equal(t, int64(2020), summary.EarliestYear)
		assert.Equal(t, int64(2023), summary.LatestYear)
		assert.InDelta(t, 100.0, summary.AvgGDP, 1e-9)
	})

	t.Run("неожиданное количество колонок", func(t *testing.T) {
		_, err := parseSummaryRow([]bigquery.Value{int64(94)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "неожиданное количество колонок")
	})
}

func TestWarehouseErrorWrapsValidationTable(t *testing.T) {
	validator := newTestValidator(t)

	inner := errors.New("query failed")
	err := validator.warehouseError(inner)

	var target *models.WarehouseError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "query", target.Op)
	assert.Equal(t, "kenya-stats.economic_data.kenyan_gdp_validation", target.Table)
	assert.ErrorIs(t, err, inner)
}

func TestReportHandlesNilSummary(t *testing.T) {
	validator := newTestValidator(t)

	// Отчет по пустым итогам не должен приводить к панике
	validator.Report(nil)
	validator.Report(&Summary{TotalRows: 94, UniqueCounties: 47, EarliestYear: 2020, LatestYear: 2023, AvgGDP: 105.5})
}
