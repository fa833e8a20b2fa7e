// server/hub.go
package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/LilVoxy/coursework_etl/models"
	"github.com/LilVoxy/coursework_etl/utils"
)

// Hub управляет WebSocket-подписчиками и рассылает им события конвейера
type Hub struct {
	Clients    map[*Client]bool
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
	logger     *utils.ETLLogger
}

// NewHub создает новый экземпляр Hub
func NewHub(logger *utils.ETLLogger) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run запускает цикл обработки подключений и рассылки событий
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
			h.logger.Info("Подписчик %s подключился", client.addr)

		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				h.logger.Info("Подписчик %s отключился", client.addr)
			}

		case message := <-h.Broadcast:
			// Рассылаем событие всем подключенным подписчикам
			h.broadcast(message)

		case <-ctx.Done():
			// Завершаем работу: закрываем все соединения
			for client := range h.Clients {
				delete(h.Clients, client)
				close(client.Send)
				client.Socket.Close()
			}
			return
		}
	}
}

// broadcast отправляет сообщение всем подключенным подписчикам
func (h *Hub) broadcast(message []byte) {
	for client := range h.Clients {
		select {
		case client.Send <- message:
		default:
			close(client.Send)
			delete(h.Clients, client)
		}
	}
}

// BroadcastEvent сериализует событие запуска и ставит его в очередь рассылки.
// Отправка не блокирует конвейер: при переполненной очереди событие теряется.
func (h *Hub) BroadcastEvent(event models.RunEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Ошибка кодирования события %s: %v", event.Type, err)
		return
	}

	select {
	case h.Broadcast <- data:
	default:
		h.logger.Warn("Очередь событий переполнена, событие %s не отправлено", event.Type)
	}
}
