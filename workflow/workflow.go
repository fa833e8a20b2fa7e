package workflow

import (
	"context"
	"time"

	"github.com/LilVoxy/coursework_etl/utils"
)

// Статусы выполнения задачи
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Task - одна именованная задача рабочего процесса
type Task struct {
	ID        string
	Run       func(ctx context.Context, wf *Context) error
	AlwaysRun bool // выполнять даже после ошибки в предыдущих задачах
}

// Definition описывает рабочий процесс: упорядоченный список задач
// и политику повторов, общую для всех задач
type Definition struct {
	Name       string
	Retries    int           // количество повторов после неудачной попытки
	RetryDelay time.Duration // пауза между попытками
	Tasks      []Task
}

// TaskResult - итог выполнения одной задачи
type TaskResult struct {
	ID       string
	Status   string
	Attempts int
	Duration time.Duration
	Err      error
}

// RunReport - итог выполнения рабочего процесса
type RunReport struct {
	Success    bool
	FailedTask string // первая задача, завершившаяся с ошибкой
	Results    []TaskResult
}

// Engine последовательно выполняет задачи рабочего процесса
type Engine struct {
	logger *utils.ETLLogger
}

// NewEngine создает новый экземпляр Engine
func NewEngine(logger *utils.ETLLogger) *Engine {
	return &Engine{logger: logger}
}

// Execute выполняет задачи в порядке объявления. После первой ошибки
// оставшиеся задачи пропускаются, кроме задач с AlwaysRun - они
// выполняются при любом исходе (очистка, уведомления). Значения,
// опубликованные задачами, остаются в wfCtx и доступны вызывающему.
func (e *Engine) Execute(ctx context.Context, def Definition, wfCtx *Context) RunReport {
	e.logger.Info("Запуск рабочего процесса %s (%d задач)", def.Name, len(def.Tasks))

	report := RunReport{Success: true}
	if wfCtx == nil {
		wfCtx = NewContext()
	}

	for _, task := range def.Tasks {
		if !report.Success && !task.AlwaysRun {
			e.logger.Warn("Задача %s пропущена из-за ошибки в задаче %s", task.ID, report.FailedTask)
			report.Results = append(report.Results, TaskResult{ID: task.ID, Status: StatusSkipped})
			continue
		}

		result := e.runTask(ctx, def, task, wfCtx)
		report.Results = append(report.Results, result)

		if result.Status == StatusFailed && report.Success {
			report.Success = false
			report.FailedTask = task.ID
		}
	}

	if report.Success {
		e.logger.Info("Рабочий процесс %s выполнен успешно", def.Name)
	} else {
		e.logger.Error("Рабочий процесс %s завершился с ошибкой в задаче %s", def.Name, report.FailedTask)
	}

	return report
}

// runTask выполняет одну задачу с учетом политики повторов
func (e *Engine) runTask(ctx context.Context, def Definition, task Task, wfCtx *Context) TaskResult {
	result := TaskResult{ID: task.ID}
	maxAttempts := def.Retries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	start := time.Now()
	e.logger.Info("Запуск задачи %s", task.ID)

	for result.Attempts < maxAttempts {
		result.Attempts++

		err := task.Run(ctx, wfCtx)
		if err == nil {
			result.Status = StatusSuccess
			result.Duration = time.Since(start)
			e.logger.Info("Задача %s выполнена за %v (попыток: %d)", task.ID, result.Duration, result.Attempts)
			return result
		}

		result.Err = err
		e.logger.Warn("Задача %s завершилась с ошибкой (попытка %d из %d): %v", task.ID, result.Attempts, maxAttempts, err)

		if result.Attempts >= maxAttempts {
			break
		}

		// Пауза перед повтором с учетом отмены контекста
		select {
		case <-ctx.Done():
			result.Err = ctx.Err()
			result.Status = StatusFailed
			result.Duration = time.Since(start)
			return result
		case <-time.After(def.RetryDelay):
		}
	}

	result.Status = StatusFailed
	result.Duration = time.Since(start)
	e.logger.Error("Задача %s не выполнена после %d попыток: %v", task.ID, result.Attempts, result.Err)
	return result
}
