// main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LilVoxy/coursework_etl/server"
)

func main() {
	// Параметры командной строки
	modePtr := flag.String("mode", "scheduled", "Режим работы: scheduled или once")

	flag.Parse()

	log.Println("Запуск Pipeline Runner в режиме:", *modePtr)

	switch *modePtr {
	case "once":
		RunOnce()
	case "scheduled":
		RunScheduled()
	default:
		log.Println("Неизвестный режим работы:", *modePtr)
		log.Println("Доступные режимы: scheduled, once")
		os.Exit(1)
	}

	log.Println("Pipeline Runner завершил работу")
}

// RunOnce запускает конвейер один раз и завершает процесс.
// Код возврата отличен от нуля, если запуск не удался.
func RunOnce() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Сигнал завершения прерывает выполняющуюся фазу через контекст
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-signalCh
		log.Println("⚠️ Получен сигнал завершения. Прерываем ETL процесс...")
		cancel()
	}()

	runner, err := NewPipelineRunner(ctx)
	if err != nil {
		log.Fatalf("Ошибка при создании Pipeline Runner: %v", err)
	}

	ok, err := runner.ExecuteETL(ctx, "once")
	runner.Close()

	if err != nil {
		log.Fatalf("Ошибка при выполнении ETL: %v", err)
	}

	if !ok {
		log.Println("❌ ETL процесс завершился с ошибками")
		os.Exit(1)
	}

	log.Println("✅ ETL процесс успешно завершен")
}

// RunScheduled запускает конвейер по расписанию вместе с HTTP-сервером
// наблюдения и трансляцией событий по WebSocket
func RunScheduled() {
	// Создаем контекст, который будет отменен при получении сигнала завершения
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Настраиваем обработку сигналов завершения
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	// Запускаем горутину для обработки сигналов
	go func() {
		<-signalCh
		log.Println("⚠️ Получен сигнал завершения. Останавливаем Pipeline Runner...")
		cancel()
	}()

	runner, err := NewPipelineRunner(ctx)
	if err != nil {
		log.Fatalf("Ошибка при создании Pipeline Runner: %v", err)
	}
	defer runner.Close()

	// Запускаем хаб рассылки событий
	hub := server.NewHub(runner.logger)
	go hub.Run(ctx)
	runner.SetHub(hub)

	// Запускаем HTTP-сервер наблюдения
	statusServer := server.NewStatusServer(hub, runner.runLogRepo, runner.TriggerAsync, runner.logger)
	srv := statusServer.Start(runner.config.HTTPAddr)

	// Запускаем планировщик; блокируется до отмены контекста
	runner.StartScheduler(ctx)

	// Останавливаем HTTP-сервер
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Ошибка при остановке HTTP-сервера: %v", err)
	}

	log.Println("👋 Pipeline Runner остановлен")
}
