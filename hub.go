package main

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Client represents a websocket connection with player info
type Client struct {
	conn     *websocket.Conn
	playerID int64
	writeMu  sync.Mutex // Serialize writes to WebSocket (required by gorilla/websocket)
}

// Hub tracks connected clients and delivers events to them. It is the
// EventSink rooms broadcast through: events address players, not
// connections, so a player with two tabs gets every event on both.
type Hub struct {
	clients    map[*websocket.Conn]*Client
	register   chan *Client
	unregister chan *websocket.Conn
	mu         sync.RWMutex
	done       chan struct{}
	wg         sync.WaitGroup

	// onGone is invoked after a player's last connection closes, so
	// the registry can remove them from their room.
	onGone func(playerID int64)
}

func newHub(onGone func(playerID int64)) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]*Client),
		register:   make(chan *Client),
		unregister: make(chan *websocket.Conn, 64),
		done:       make(chan struct{}),
		onGone:     onGone,
	}
}

// stop signals the hub goroutine to exit and waits for it to finish
func (h *Hub) stop() {
	close(h.done)
	h.wg.Wait()
}

// Send implements EventSink: marshal the event and write it to every
// connection the player holds.
func (h *Hub) Send(playerID int64, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", e.Type, err)
		return
	}
	h.sendToPlayer(playerID, payload)
}

func (h *Hub) sendToPlayer(playerID int64, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.playerID == playerID {
			LogWSMessage("OUT", playerID, string(message))

			// Serialize writes to each connection
			client.writeMu.Lock()
			err := client.conn.WriteMessage(websocket.TextMessage, message)
			client.writeMu.Unlock()

			if err != nil {
				log.Printf("WebSocket write error to player %d: %v", playerID, err)
			}
		}
	}
}

func (h *Hub) run() {
	h.wg.Add(1)
	defer h.wg.Done()
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("WebSocket client connected (player %d). Total: %d", client.playerID, total)
			DebugLog("hub.register", "Player %d connected via WebSocket", client.playerID)

		case conn := <-h.unregister:
			var gonePlayerID int64
			h.mu.Lock()
			client, ok := h.clients[conn]
			if ok {
				playerID := client.playerID
				delete(h.clients, conn)
				conn.Close()

				// Check if player has any remaining connections
				hasOtherConn := false
				for _, c := range h.clients {
					if c.playerID == playerID {
						hasOtherConn = true
						break
					}
				}

				if !hasOtherConn {
					DebugLog("hub.unregister", "Player %d has no more connections", playerID)
					gonePlayerID = playerID
				}
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("WebSocket client disconnected. Total: %d", total)
			// Invoke onGone after releasing the mutex: it broadcasts
			// player_left, which comes back through sendToPlayer and
			// needs the read lock.
			if gonePlayerID != 0 && h.onGone != nil {
				h.onGone(gonePlayerID)
			}
		}
	}
}
