package transform

import (
	"github.com/LilVoxy/coursework_etl/models"
	"github.com/LilVoxy/coursework_etl/utils"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// addGrowthColumn сортирует данные по возрастанию года и добавляет колонку
// GDP_Growth - процентное изменение первого GDP-показателя к предыдущей строке.
// Для первой строки рост равен нулю.
func addGrowthColumn(df dataframe.DataFrame, header []string, gdpCols []int, logger *utils.ETLLogger) (dataframe.DataFrame, error) {
	if !hasColumn(header, "Year") || len(gdpCols) == 0 {
		logger.Debug("Колонки Year или GDP отсутствуют, расчет роста ВВП пропущен")
		return df, nil
	}

	// Сортируем по возрастанию года
	sorted := df.Arrange(dataframe.Sort("Year"))
	if sorted.Err != nil {
		return df, &models.TransformError{Stage: "сортировка по годам", Err: sorted.Err}
	}

	// Базой роста служит первая GDP-колонка в порядке заголовка
	basis := header[gdpCols[0]]
	values := sorted.Col(basis).Float()

	growth := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		growth[i] = (values[i] - values[i-1]) / values[i-1] * 100
	}

	out := sorted.Mutate(series.New(growth, series.Float, "GDP_Growth"))
	if out.Err != nil {
		return df, &models.TransformError{Stage: "расчет роста ВВП", Err: out.Err}
	}

	logger.Info("Добавлена колонка GDP_Growth на основе колонки %s", basis)
	return out, nil
}

// aggregateByCounty группирует данные по округам и усредняет все числовые
// колонки; нечисловые колонки (кроме County) в результат не попадают.
// Порядок строк после группировки не определен.
func aggregateByCounty(df dataframe.DataFrame, header []string, logger *utils.ETLLogger) (dataframe.DataFrame, error) {
	if !hasColumn(header, "County") {
		logger.Debug("Колонка County отсутствует, агрегация по округам пропущена")
		return df, nil
	}

	// Числовые колонки определяются по типу серии после автоопределения
	var numericCols []string
	for _, name := range df.Names() {
		if name == "County" {
			continue
		}

		colType := df.Col(name).Type()
		if colType == series.Int || colType == series.Float {
			numericCols = append(numericCols, name)
		}
	}

	if len(numericCols) == 0 {
		logger.Warn("Нет числовых колонок для агрегации, данные остаются построчными")
		return df, nil
	}

	groups := df.GroupBy("County")
	if groups.Err != nil {
		return df, &models.TransformError{Stage: "группировка по округам", Err: groups.Err}
	}

	aggTypes := make([]dataframe.AggregationType, len(numericCols))
	for i := range aggTypes {
		aggTypes[i] = dataframe.Aggregation_MEAN
	}

	agg := groups.Aggregation(aggTypes, numericCols)
	if agg.Err != nil {
		return df, &models.TransformError{Stage: "агрегация по округам", Err: agg.Err}
	}

	// Возвращаем усредненным колонкам исходные имена (без суффикса агрегации)
	for _, name := range numericCols {
		agg = agg.Rename(name, name+"_MEAN")
		if agg.Err != nil {
			return df, &models.TransformError{Stage: "переименование колонок", Err: agg.Err}
		}
	}

	logger.Info("Данные агрегированы по %d округам", agg.Nrow())
	return agg, nil
}
