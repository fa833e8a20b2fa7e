// server/client.go
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Client - один WebSocket-подписчик на события конвейера
type Client struct {
	Socket *websocket.Conn
	Send   chan []byte
	addr   string
}

// Настройки для установки WebSocket-соединения
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// readPump читает сообщения от подписчика. Входящие данные не используются,
// чтение нужно для обработки pong-ответов и обнаружения разрыва соединения.
func (c *Client) readPump(hub *Hub) {
	defer func() {
		// Обработка паники при закрытии канала
		if r := recover(); r != nil {
			hub.logger.Error("Паника при чтении сообщений подписчика %s: %v", c.addr, r)
		}

		// Отправляем сигнал отключения
		hub.Unregister <- c

		// Безопасно закрываем соединение
		c.Socket.Close()
	}()

	// Устанавливаем параметры подключения
	c.Socket.SetReadLimit(maxMessageSize)
	c.Socket.SetReadDeadline(time.Now().Add(pongWait))
	c.Socket.SetPongHandler(func(string) error {
		c.Socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Socket.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				hub.logger.Warn("Ошибка чтения от подписчика %s: %v", c.addr, err)
			}
			break
		}
	}
}

// writePump отвечает за отправку событий подписчику
func (c *Client) writePump(hub *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		// Обработка паники при закрытии канала
		if r := recover(); r != nil {
			hub.logger.Error("Паника при отправке событий подписчику %s: %v", c.addr, r)
		}

		ticker.Stop()

		// Безопасно закрываем соединение
		c.Socket.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Канал закрыт
				c.Socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// Отправляем каждое событие отдельным сообщением
			if err := c.Socket.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Отправляем накопившиеся события отдельными WriteMessage вызовами
			n := len(c.Send)
			for i := 0; i < n; i++ {
				message := <-c.Send
				if err := c.Socket.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}
			}
		case <-ticker.C:
			c.Socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
