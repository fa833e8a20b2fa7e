package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/LilVoxy/coursework_etl/analysis"
	"github.com/LilVoxy/coursework_etl/archive"
	"github.com/LilVoxy/coursework_etl/config"
	"github.com/LilVoxy/coursework_etl/extract"
	"github.com/LilVoxy/coursework_etl/load"
	"github.com/LilVoxy/coursework_etl/models"
	"github.com/LilVoxy/coursework_etl/server"
	"github.com/LilVoxy/coursework_etl/transform"
	"github.com/LilVoxy/coursework_etl/utils"
	"github.com/LilVoxy/coursework_etl/validate"
	"github.com/LilVoxy/coursework_etl/workflow"
	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
)

type PipelineRunner struct {
	config      config.PipelineConfig
	warehouse   *config.WarehouseConnection
	metadataDB  *sql.DB
	logger      *utils.ETLLogger
	extractor   *extract.Extractor
	transformer *transform.Transformer
	loader      *load.Loader
	validator   *validate.Validator
	analyzer    *analysis.TrendAnalyzer
	archiver    *archive.Archiver
	runLogRepo  models.RunLogRepository
	hub         *server.Hub

	mu      sync.Mutex
	running bool
}

// NewPipelineRunner создает новый экземпляр PipelineRunner
func NewPipelineRunner(ctx context.Context) (*PipelineRunner, error) {
	// Получаем конфигурацию
	cfg := config.GetConfig()

	// Инициализируем логгер
	logger := utils.NewETLLoggerWithDir(cfg.LogDir, cfg.EnableDetailedLogging)
	logger.Info("Инициализация Pipeline Runner")

	// Подключаемся к хранилищу данных
	warehouse, err := config.ConnectWarehouse(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к BigQuery: %w", err)
	}

	// Подключаем журнал запусков, если настроена БД метаданных
	var metadataDB *sql.DB
	var runLogRepo models.RunLogRepository

	if cfg.MetadataDSN != "" {
		metadataDB, err = config.ConnectMetadataDB(cfg)
		if err != nil {
			config.CloseWarehouse(warehouse)
			return nil, fmt.Errorf("ошибка подключения к БД метаданных: %w", err)
		}

		repo := models.NewMySQLRunLogRepository(metadataDB)

		// Создаем таблицу журнала, если она еще не существует
		if err := repo.CreateRunLogTable(); err != nil {
			config.CloseMetadataDB(metadataDB)
			config.CloseWarehouse(warehouse)
			return nil, fmt.Errorf("ошибка при создании таблицы журнала запусков: %w", err)
		}

		runLogRepo = repo
	} else {
		logger.Info("БД метаданных не настроена, журнал запусков отключен")
		runLogRepo = models.NewNoopRunLogRepository()
	}

	return &PipelineRunner{
		config:      cfg,
		warehouse:   warehouse,
		metadataDB:  metadataDB,
		logger:      logger,
		extractor:   extract.NewExtractor(cfg.SourceURL, cfg.RawDir, cfg.HTTPTimeout, logger),
		transformer: transform.NewTransformer(cfg.TransformedDir, logger),
		loader:      load.NewLoader(warehouse.Client, cfg.ProjectID, cfg.Dataset, cfg.Table, logger),
		validator:   validate.NewValidator(warehouse.Client, cfg.ProjectID, cfg.Dataset, cfg.Table, logger),
		analyzer:    analysis.NewTrendAnalyzer(logger, analysis.DefaultConfig()),
		archiver:    archive.NewArchiver(cfg.ArchiveDir, logger),
		runLogRepo:  runLogRepo,
	}, nil
}

// Close закрывает соединения с внешними системами
func (r *PipelineRunner) Close() {
	r.logger.Info("Завершение работы Pipeline Runner")
	config.CloseWarehouse(r.warehouse)
	if r.metadataDB != nil {
		config.CloseMetadataDB(r.metadataDB)
	}
}

// SetHub подключает хаб рассылки событий (используется в режиме демона)
func (r *PipelineRunner) SetHub(hub *server.Hub) {
	r.hub = hub
}

// ExecuteETL выполняет полный ETL процесс: извлечение, очистку данных,
// загрузку в хранилище и проверку загруженного
func (r *PipelineRunner) ExecuteETL(ctx context.Context, mode string) (bool, error) {
	r.logger.LogETLStart()
	startTime := time.Now()
	runID := uuid.New().String()

	// Создаем запись в журнале запусков
	if err := r.runLogRepo.CreateLogEntry(runID, mode, startTime); err != nil {
		r.logger.Error("Ошибка при создании записи в журнале запусков: %v", err)
		return false, fmt.Errorf("ошибка при создании записи в журнале запусков: %w", err)
	}

	var rawPath, transformedPath string
	defer func() {
		// Временные файлы убираются при любом исходе запуска
		r.archiver.Cleanup(rawPath, transformedPath)
	}()

	// 1. Фаза извлечения данных (Extract)
	rawPath, err := r.extractor.Extract(ctx)
	if err != nil {
		errMsg := fmt.Sprintf("Ошибка в фазе Extract: %v", err)
		r.logger.Error(errMsg)
		r.updateRunLogFailure(runID, errMsg)
		return false, fmt.Errorf("ошибка в фазе Extract: %w", err)
	}
	rowsExtracted := countDataRows(rawPath)

	// 2. Фаза трансформации данных (Transform)
	transformedPath, err = r.transformer.Transform(rawPath)
	if err != nil {
		errMsg := fmt.Sprintf("Ошибка в фазе Transform: %v", err)
		r.logger.Error(errMsg)
		r.updateRunLogFailure(runID, errMsg)
		return false, fmt.Errorf("ошибка в фазе Transform: %w", err)
	}
	rowsTransformed := countDataRows(transformedPath)

	// 3. Фаза загрузки данных (Load)
	ok, err := r.loader.Load(ctx, transformedPath)
	if err != nil {
		errMsg := fmt.Sprintf("Ошибка в фазе Load: %v", err)
		r.logger.Error(errMsg)
		r.updateRunLogFailure(runID, errMsg)
		return false, fmt.Errorf("ошибка в фазе Load: %w", err)
	}

	// Задание выполнилось, но завершилось с ошибками на стороне хранилища
	if !ok {
		errMsg := "Задание загрузки завершилось с ошибками"
		r.logger.Error(errMsg)
		r.updateRunLogFailure(runID, errMsg)
		return false, nil
	}

	// 4. Проверка загруженных данных
	summary, err := r.validator.Run(ctx)
	if err != nil {
		errMsg := fmt.Sprintf("Ошибка при проверке загруженных данных: %v", err)
		r.logger.Error(errMsg)
		r.updateRunLogFailure(runID, errMsg)
		return false, fmt.Errorf("ошибка при проверке загруженных данных: %w", err)
	}
	r.validator.Report(summary)

	// 5. Анализ тренда ВВП по сырому снапшоту
	if _, _, err := r.analyzer.AnalyzeFile(rawPath); err != nil {
		r.logger.Error("Ошибка при анализе тренда: %v", err)
		// Не прерываем ETL процесс из-за ошибки анализа
		// Это некритичный компонент
	}

	// Обновляем запись в журнале с информацией об успешном выполнении
	r.updateRunLogSuccess(runID, rowsExtracted, rowsTransformed, rowsTransformed)

	r.logger.LogETLComplete(startTime, rowsTransformed, r.targetTable())
	return true, nil
}

// BuildWorkflow собирает рабочий процесс конвейера: шесть задач с передачей
// путей к файлам между ними и безусловной очисткой в конце
func (r *PipelineRunner) BuildWorkflow(runID string) workflow.Definition {
	return workflow.Definition{
		Name:       "kenyan_economic_etl",
		Retries:    r.config.TaskRetries,
		RetryDelay: r.config.TaskRetryDelay,
		Tasks: []workflow.Task{
			{
				ID: "extract_task",
				Run: func(ctx context.Context, wf *workflow.Context) error {
					r.publishTaskStarted(runID, "extract_task")

					rawPath, err := r.extractor.Extract(ctx)
					if err != nil {
						return err
					}

					wf.Push("extract_task", "raw_file_path", rawPath)
					wf.Push("extract_task", "rows", countDataRows(rawPath))
					return nil
				},
			},
			{
				ID: "transform_task",
				Run: func(ctx context.Context, wf *workflow.Context) error {
					r.publishTaskStarted(runID, "transform_task")

					rawPath, err := wf.PullString("extract_task", "raw_file_path")
					if err != nil {
						return err
					}

					transformedPath, err := r.transformer.Transform(rawPath)
					if err != nil {
						return err
					}

					wf.Push("transform_task", "transformed_file_path", transformedPath)
					wf.Push("transform_task", "rows", countDataRows(transformedPath))
					return nil
				},
			},
			{
				ID: "load_task",
				Run: func(ctx context.Context, wf *workflow.Context) error {
					r.publishTaskStarted(runID, "load_task")

					transformedPath, err := wf.PullString("transform_task", "transformed_file_path")
					if err != nil {
						return err
					}

					ok, err := r.loader.Load(ctx, transformedPath)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("задание загрузки завершилось с ошибками")
					}
					return nil
				},
			},
			{
				ID: "validation_task",
				Run: func(ctx context.Context, wf *workflow.Context) error {
					r.publishTaskStarted(runID, "validation_task")

					summary, err := r.validator.Run(ctx)
					if err != nil {
						return err
					}

					wf.Push("validation_task", "summary", summary)
					return nil
				},
			},
			{
				ID: "print_validation_task",
				Run: func(ctx context.Context, wf *workflow.Context) error {
					r.publishTaskStarted(runID, "print_validation_task")

					value, ok := wf.Pull("validation_task", "summary")
					if !ok {
						return fmt.Errorf("задача validation_task не опубликовала итоги проверки")
					}

					summary, ok := value.(*validate.Summary)
					if !ok {
						return fmt.Errorf("итоги проверки имеют неожиданный тип")
					}

					r.validator.Report(summary)
					return nil
				},
			},
			{
				// Очистка выполняется при любом исходе запуска
				ID:        "cleanup_task",
				AlwaysRun: true,
				Run: func(ctx context.Context, wf *workflow.Context) error {
					r.publishTaskStarted(runID, "cleanup_task")

					r.archiver.Cleanup(
						filepath.Join(r.config.RawDir, extract.RawFileName),
						filepath.Join(r.config.TransformedDir, transform.TransformedFileName),
					)
					return nil
				},
			},
		},
	}
}

// RunWorkflow выполняет конвейер как рабочий процесс с повторами задач.
// Возвращает false, если запуск уже идет или завершился с ошибкой.
func (r *PipelineRunner) RunWorkflow(ctx context.Context, mode string) bool {
	if !r.tryBegin() {
		r.logger.Warn("Конвейер уже выполняется, запуск пропущен")
		return false
	}
	defer r.endRun()

	return r.runWorkflow(ctx, mode)
}

// TriggerAsync запускает конвейер в отдельной горутине вне расписания.
// Возвращает false, если запуск уже идет.
func (r *PipelineRunner) TriggerAsync() bool {
	if !r.tryBegin() {
		return false
	}

	go func() {
		defer r.endRun()
		r.runWorkflow(context.Background(), "manual")
	}()

	return true
}

// runWorkflow выполняет рабочий процесс; вызывается только после tryBegin
func (r *PipelineRunner) runWorkflow(ctx context.Context, mode string) bool {
	runID := uuid.New().String()
	startTime := time.Now()

	// Создаем запись в журнале запусков
	if err := r.runLogRepo.CreateLogEntry(runID, mode, startTime); err != nil {
		r.logger.Error("Ошибка при создании записи в журнале запусков: %v", err)
	}

	r.publishEvent(models.RunEvent{
		Type:    models.EventRunStarted,
		RunID:   runID,
		Status:  "in_progress",
		Message: fmt.Sprintf("режим: %s", mode),
	})

	engine := workflow.NewEngine(r.logger)
	wfCtx := workflow.NewContext()
	report := engine.Execute(ctx, r.BuildWorkflow(runID), wfCtx)

	// Отправляем итоги по каждой задаче
	for _, result := range report.Results {
		event := models.RunEvent{
			Type:   models.EventTaskFinished,
			RunID:  runID,
			Task:   result.ID,
			Status: result.Status,
		}
		if result.Err != nil {
			event.Message = result.Err.Error()
		}
		r.publishEvent(event)
	}

	endTime := time.Now()

	if report.Success {
		rowsExtracted, _ := wfCtx.PullInt("extract_task", "rows")
		rowsTransformed, _ := wfCtx.PullInt("transform_task", "rows")

		if err := r.runLogRepo.UpdateLogEntrySuccess(runID, endTime,
			rowsExtracted, rowsTransformed, rowsTransformed, r.targetTable()); err != nil {
			r.logger.Error("Ошибка при обновлении записи в журнале запусков: %v", err)
		}

		r.publishEvent(models.RunEvent{
			Type:    models.EventRunFinished,
			RunID:   runID,
			Status:  "success",
			Message: fmt.Sprintf("длительность: %v", endTime.Sub(startTime).Round(time.Second)),
		})
		return true
	}

	errMsg := fmt.Sprintf("задача %s завершилась с ошибкой", report.FailedTask)
	for _, result := range report.Results {
		if result.ID == report.FailedTask && result.Err != nil {
			errMsg = fmt.Sprintf("задача %s: %v", report.FailedTask, result.Err)
		}
	}
	r.updateRunLogFailure(runID, errMsg)

	r.publishEvent(models.RunEvent{
		Type:    models.EventRunFinished,
		RunID:   runID,
		Status:  "failed",
		Message: errMsg,
	})
	return false
}

// StartScheduler запускает планировщик для регулярного выполнения конвейера
func (r *PipelineRunner) StartScheduler(ctx context.Context) {
	// Расписание задано по времени Найроби (EAT, UTC+3)
	loc, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		r.logger.Warn("Не удалось загрузить часовой пояс Africa/Nairobi: %v. Используется UTC", err)
		loc = time.UTC
	}

	scheduler := gocron.NewScheduler(loc)

	scheduledRun := func() {
		r.logger.Info("Запланированный запуск конвейера")
		if !r.RunWorkflow(ctx, "scheduled") {
			r.logger.Error("Запланированный запуск завершился с ошибкой")
		}
	}

	if r.config.RunInterval > 0 {
		r.logger.Info("Запуск планировщика с интервалом %v", r.config.RunInterval)
		_, err = scheduler.Every(r.config.RunInterval).Do(scheduledRun)
	} else {
		r.logger.Info("Запуск планировщика по расписанию %q (%s)", r.config.ScheduleCron, loc)
		_, err = scheduler.Cron(r.config.ScheduleCron).Do(scheduledRun)
	}

	if err != nil {
		r.logger.Error("Ошибка при настройке планировщика: %v", err)
		return
	}

	// Запускаем планировщик
	scheduler.StartAsync()

	// Ожидаем сигнал остановки из контекста
	<-ctx.Done()

	// Останавливаем планировщик
	scheduler.Stop()
	r.logger.Info("Планировщик остановлен")
}

// updateRunLogSuccess обновляет запись в журнале при успешном завершении
func (r *PipelineRunner) updateRunLogSuccess(runID string, rowsExtracted, rowsTransformed, rowsLoaded int) {
	if err := r.runLogRepo.UpdateLogEntrySuccess(runID, time.Now(),
		rowsExtracted, rowsTransformed, rowsLoaded, r.targetTable()); err != nil {
		r.logger.Error("Ошибка при обновлении записи в журнале запусков: %v", err)
	}
}

// updateRunLogFailure обновляет запись в журнале при ошибке
func (r *PipelineRunner) updateRunLogFailure(runID, errorMessage string) {
	if err := r.runLogRepo.UpdateLogEntryFailure(runID, time.Now(), errorMessage); err != nil {
		r.logger.Error("Ошибка при обновлении записи в журнале запусков: %v", err)
	}
}

// publishEvent отправляет событие подписчикам, если хаб подключен
func (r *PipelineRunner) publishEvent(event models.RunEvent) {
	if r.hub == nil {
		return
	}
	r.hub.BroadcastEvent(event)
}

// publishTaskStarted отправляет событие о начале задачи
func (r *PipelineRunner) publishTaskStarted(runID, taskID string) {
	r.publishEvent(models.RunEvent{
		Type:   models.EventTaskStarted,
		RunID:  runID,
		Task:   taskID,
		Status: "in_progress",
	})
}

// tryBegin отмечает начало запуска. Возвращает false, если запуск уже идет.
func (r *PipelineRunner) tryBegin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return false
	}
	r.running = true
	return true
}

// endRun отмечает завершение запуска
func (r *PipelineRunner) endRun() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

func (r *PipelineRunner) targetTable() string {
	return fmt.Sprintf("%s.%s.%s", r.config.ProjectID, r.config.Dataset, r.config.Table)
}

// countDataRows возвращает количество строк данных в CSV-файле (без заголовка)
func countDataRows(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}

	lines := 0
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			lines++
		}
	}

	if lines <= 1 {
		return 0
	}
	return lines - 1
}
