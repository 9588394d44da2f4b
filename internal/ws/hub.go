package ws

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/taskforge-dev/taskforge/internal/types"
)

var (
	userClients   = make(map[uint]map[*websocket.Conn]bool)
	userClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Upgrader rejects origins outside the allowed set.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		for _, allowed := range types.AllowedOrigins {
			if origin == allowed {
				return true
			}
		}
		return false
	},
}

// PushToUser delivers a payload to every open connection of a user.
// Best-effort: failed connections are dropped, nothing is retried.
func PushToUser(userID uint, payload interface{}) {
	userClientsMu.RLock()
	clients, exists := userClients[userID]
	if !exists || len(clients) == 0 {
		userClientsMu.RUnlock()
		return
	}

	// Copy the connection set so the lock is not held while writing
	clientsCopy := make([]*websocket.Conn, 0, len(clients))
	for conn := range clients {
		clientsCopy = append(clientsCopy, conn)
	}
	userClientsMu.RUnlock()

	for _, conn := range clientsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for push: %v", err)
			continue
		}

		if err := conn.WriteJSON(payload); err != nil {
			log.Printf("Failed to push to user %d: %v", userID, err)
			unregister(userID, conn)
			conn.Close()
		}
	}
}

func register(userID uint, conn *websocket.Conn) {
	userClientsMu.Lock()
	if userClients[userID] == nil {
		userClients[userID] = make(map[*websocket.Conn]bool)
	}
	userClients[userID][conn] = true
	userClientsMu.Unlock()
}

func unregister(userID uint, conn *websocket.Conn) {
	userClientsMu.Lock()
	if clients, exists := userClients[userID]; exists {
		delete(clients, conn)
		if len(clients) == 0 {
			delete(userClients, userID)
		}
	}
	userClientsMu.Unlock()
}

// ServeConnection registers an upgraded connection for a user and runs its
// read loop until the peer goes away. Blocks until the connection closes.
func ServeConnection(userID uint, conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	register(userID, conn)

	defer func() {
		unregister(userID, conn)
		conn.Close()
		log.Printf("WebSocket connection closed for user %d", userID)
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Printf("Failed to set write deadline for welcome message: %v", err)
		return
	}

	err := conn.WriteJSON(map[string]string{
		"type":    "connected",
		"message": "WebSocket connection established",
	})

	if err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					log.Printf("Failed to set write deadline for user %d: %v", userID, err)
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					log.Printf("Ping failed for user %d: %v", userID, err)
					return
				}
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for user %d: %v", userID, err)
			break
		}

		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for user %d: %v", userID, err)
			}
			break
		}

		if messageType == websocket.TextMessage {
			log.Printf("Received message from user %d: %s", userID, string(message))
		}
	}
}
