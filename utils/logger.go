package utils

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// ETLLogger представляет логгер для ETL-процесса
type ETLLogger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
	debugLogger *log.Logger
	isVerbose   bool
}

// NewETLLogger создает новый экземпляр логгера для ETL
func NewETLLogger(verbose bool) *ETLLogger {
	return NewETLLoggerWithDir("logs", verbose)
}

// NewETLLoggerWithDir создает логгер, пишущий лог-файл в указанную директорию
func NewETLLoggerWithDir(dir string, verbose bool) *ETLLogger {
	// Создаем директорию для логов, если ее еще нет
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("Не удалось создать директорию для логов: %v", err)
	}

	// Создаем или открываем лог-файл для записи
	currentTime := time.Now().Format("2006-01-02")
	logFileName := filepath.Join(dir, fmt.Sprintf("etl_log_%s.log", currentTime))

	file, err := os.OpenFile(logFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Не удалось открыть или создать файл лога: %v", err)
	}

	// Инициализируем логгеры для разных уровней
	infoLogger := log.New(file, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	warnLogger := log.New(file, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	errorLogger := log.New(file, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	debugLogger := log.New(file, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)

	return &ETLLogger{
		infoLogger:  infoLogger,
		warnLogger:  warnLogger,
		errorLogger: errorLogger,
		debugLogger: debugLogger,
		isVerbose:   verbose,
	}
}

// Info логирует информационное сообщение
func (l *ETLLogger) Info(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.infoLogger.Println(msg)

	// Также выводим в стандартный вывод
	log.Println("INFO:", msg)
}

// Warn логирует предупреждение
func (l *ETLLogger) Warn(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.warnLogger.Println(msg)

	// Также выводим в стандартный вывод
	log.Println("WARN:", msg)
}

// Error логирует сообщение об ошибке
func (l *ETLLogger) Error(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.errorLogger.Println(msg)

	// Также выводим в стандартный вывод
	log.Println("ERROR:", msg)
}

// Debug логирует отладочное сообщение (только если включен verbose режим)
func (l *ETLLogger) Debug(format string, v ...interface{}) {
	if !l.isVerbose {
		return
	}

	msg := fmt.Sprintf(format, v...)
	l.debugLogger.Println(msg)

	// Также выводим в стандартный вывод
	log.Println("DEBUG:", msg)
}

// LogETLStart логирует начало ETL-процесса
func (l *ETLLogger) LogETLStart() {
	l.Info("Начало выполнения ETL-процесса")
}

// LogETLComplete логирует завершение ETL-процесса
func (l *ETLLogger) LogETLComplete(startTime time.Time, rowsLoaded int, targetTable string) {
	duration := time.Since(startTime)
	l.Info("ETL-процесс завершён. Длительность: %v", duration)
	l.Info("Загружено %d строк в таблицу %s", rowsLoaded, targetTable)
}

// LogExtractStart логирует начало фазы извлечения данных
func (l *ETLLogger) LogExtractStart() {
	l.Info("Начало фазы Extract (Извлечение данных)")
}

// LogExtractComplete логирует завершение фазы извлечения данных
func (l *ETLLogger) LogExtractComplete(rows int, path string, duration time.Duration) {
	l.Info("Фаза Extract завершена. Длительность: %v", duration)
	l.Info("Извлечено %d строк данных в %s", rows, path)
}

// LogTransformStart логирует начало фазы трансформации данных
func (l *ETLLogger) LogTransformStart() {
	l.Info("Начало фазы Transform (Трансформация данных)")
}

// LogTransformComplete логирует завершение фазы трансформации данных
func (l *ETLLogger) LogTransformComplete(rows int, path string, duration time.Duration) {
	l.Info("Фаза Transform завершена. Длительность: %v", duration)
	l.Info("Подготовлено %d строк данных в %s", rows, path)
}

// LogLoadStart логирует начало фазы загрузки данных
func (l *ETLLogger) LogLoadStart() {
	l.Info("Начало фазы Load (Загрузка данных)")
}

// LogLoadComplete логирует завершение фазы загрузки данных
func (l *ETLLogger) LogLoadComplete(table string, duration time.Duration) {
	l.Info("Фаза Load завершена. Таблица: %s. Длительность: %v", table, duration)
}
