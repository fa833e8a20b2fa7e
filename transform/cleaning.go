package transform

import (
	"strconv"
	"strings"
)

// Маркеры пропущенных значений в исходных данных
var missingMarkers = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
}

// isMissing проверяет, является ли значение ячейки пропуском
func isMissing(value string) bool {
	_, ok := missingMarkers[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// fillMissing заменяет пропущенные значения нулями во всех колонках.
// Количество строк при очистке не меняется.
func fillMissing(records [][]string) int {
	filled := 0
	for i := range records {
		for j := range records[i] {
			if isMissing(records[i][j]) {
				records[i][j] = "0"
				filled++
			}
		}
	}

	return filled
}

// gdpColumns возвращает индексы колонок с показателями ВВП
// (имя колонки содержит "gdp" без учета регистра)
func gdpColumns(header []string) []int {
	var cols []int
	for i, name := range header {
		if strings.Contains(strings.ToLower(name), "gdp") {
			cols = append(cols, i)
		}
	}

	return cols
}

// coerceNumeric приводит значения GDP-колонок к числовому виду;
// значения, которые не удалось разобрать, заменяются нулями
func coerceNumeric(records [][]string, gdpCols []int) int {
	replaced := 0
	for _, col := range gdpCols {
		for i := range records {
			value, err := strconv.ParseFloat(strings.TrimSpace(records[i][col]), 64)
			if err != nil {
				records[i][col] = "0"
				replaced++
				continue
			}

			records[i][col] = strconv.FormatFloat(value, 'f', -1, 64)
		}
	}

	return replaced
}

// hasColumn проверяет наличие колонки с точным именем
func hasColumn(header []string, name string) bool {
	for _, n := range header {
		if n == name {
			return true
		}
	}

	return false
}
