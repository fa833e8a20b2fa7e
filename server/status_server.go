// server/status_server.go
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/LilVoxy/coursework_etl/models"
	"github.com/LilVoxy/coursework_etl/utils"
	"github.com/gorilla/mux"
)

// StatusServer - HTTP-сервер наблюдения за конвейером: состояние, журнал
// запусков, ручной запуск и WebSocket-трансляция событий
type StatusServer struct {
	hub       *Hub
	repo      models.RunLogRepository
	trigger   func() bool
	logger    *utils.ETLLogger
	startTime time.Time
}

// RunsResponse структура ответа API для журнала запусков
type RunsResponse struct {
	Days int              `json:"days"`
	Runs []models.ETLRunLog `json:"runs"`
}

// NewStatusServer создает новый экземпляр StatusServer.
// trigger запускает конвейер вне расписания и возвращает false,
// если запуск уже выполняется.
func NewStatusServer(hub *Hub, repo models.RunLogRepository, trigger func() bool, logger *utils.ETLLogger) *StatusServer {
	return &StatusServer{
		hub:       hub,
		repo:      repo,
		trigger:   trigger,
		logger:    logger,
		startTime: time.Now(),
	}
}

// SetupRoutes настраивает все маршруты API и WebSocket
func (s *StatusServer) SetupRoutes(router *mux.Router) {
	// Применяем CORS middleware
	router.Use(corsMiddleware)

	// WebSocket трансляция событий конвейера
	router.HandleFunc("/ws", s.handleConnections)

	// Состояние сервиса
	router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Журнал запусков
	router.HandleFunc("/api/runs", s.handleRuns).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/runs/last", s.handleLastRun).Methods("GET", "OPTIONS")

	// Ручной запуск конвейера
	router.HandleFunc("/api/trigger", s.handleTrigger).Methods("POST", "OPTIONS")
}

// Start запускает HTTP-сервер в отдельной горутине
func (s *StatusServer) Start(addr string) *http.Server {
	router := mux.NewRouter()
	s.SetupRoutes(router)

	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.Info("HTTP-сервер наблюдения запущен на %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Ошибка HTTP-сервера: %v", err)
		}
	}()

	return srv
}

// handleHealth сообщает, что сервис жив
func (s *StatusServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("Ошибка при кодировании JSON: %v", err)
	}
}

// handleRuns возвращает журнал запусков за указанный период
func (s *StatusServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	// Получаем параметры запроса
	query := r.URL.Query()
	daysStr := query.Get("days")

	days := 7
	if daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 {
			http.Error(w, "Неверный формат параметра days", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	runs, err := s.repo.GetRunStats(days)
	if err != nil {
		s.logger.Error("Ошибка при запросе журнала запусков: %v", err)
		http.Error(w, "Ошибка при получении журнала запусков", http.StatusInternalServerError)
		return
	}

	// Подготавливаем ответ
	response := RunsResponse{
		Days: days,
		Runs: runs,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("Ошибка при кодировании JSON: %v", err)
		http.Error(w, "Ошибка при формировании ответа", http.StatusInternalServerError)
	}
}

// handleLastRun возвращает последний успешный запуск конвейера
func (s *StatusServer) handleLastRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.repo.GetLastSuccessfulRun()
	if err != nil {
		s.logger.Error("Ошибка при запросе последнего запуска: %v", err)
		http.Error(w, "Ошибка при получении последнего запуска", http.StatusInternalServerError)
		return
	}

	if run == nil {
		http.Error(w, "Успешных запусков еще не было", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(run); err != nil {
		s.logger.Error("Ошибка при кодировании JSON: %v", err)
		http.Error(w, "Ошибка при формировании ответа", http.StatusInternalServerError)
	}
}

// handleTrigger запускает конвейер вне расписания
func (s *StatusServer) handleTrigger(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if !s.trigger() {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "busy",
			"message": "Конвейер уже выполняется",
		})
		return
	}

	s.logger.Info("Конвейер запущен вручную через API")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "accepted",
	})
}

// handleConnections обрабатывает WebSocket-соединения подписчиков
func (s *StatusServer) handleConnections(w http.ResponseWriter, r *http.Request) {
	// Устанавливаем WebSocket-соединение
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Ошибка при установке WebSocket-соединения: %v", err)
		return
	}

	// Создаем нового подписчика
	client := &Client{
		Socket: conn,
		Send:   make(chan []byte, 256),
		addr:   r.RemoteAddr,
	}

	// Регистрируем подписчика в хабе
	s.hub.Register <- client

	// Запускаем горутины для чтения и отправки событий
	go client.readPump(s.hub)
	go client.writePump(s.hub)
}

// corsMiddleware разрешает кросс-доменные запросы к API
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
