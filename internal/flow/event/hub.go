/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package event

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/asgardeo/stepflow/internal/system/log"
	"github.com/asgardeo/stepflow/internal/system/utils"
)

const (
	defaultClientBuffer = 64
	writeWait           = 10 * time.Second
	pongWait            = 60 * time.Second
	pingPeriod          = (pongWait * 9) / 10
)

// Hub broadcasts execution events to WebSocket clients. Each client has a bounded buffer;
// a client whose buffer is full is disconnected so the engine never waits on it.
type Hub struct {
	upgrader websocket.Upgrader
	buffer   int
	mu       sync.RWMutex
	clients  map[*hubClient]struct{}
	logger   *log.Logger
}

type hubClient struct {
	conn       *websocket.Conn
	send       chan []byte
	workflowID string
	closeOnce  sync.Once
}

// NewHub creates a hub. allowedOrigins is checked against the Origin header of upgrade
// requests; an empty list accepts any origin.
func NewHub(allowedOrigins []string) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowedOrigins) == 0 {
					return true
				}
				return utils.GetAllowedOrigin(allowedOrigins, origin) != ""
			},
		},
		buffer:  defaultClientBuffer,
		clients: make(map[*hubClient]struct{}),
		logger:  log.GetLogger().With(log.String(log.LoggerKeyComponentName, "EventHub")),
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams events to the client until it disconnects.
// The optional workflowId query parameter limits the stream to one workflow.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade event stream connection", log.Error(err))
		return
	}

	client := &hubClient{
		conn:       conn,
		send:       make(chan []byte, h.buffer),
		workflowID: r.URL.Query().Get("workflowId"),
	}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("Event stream client connected", log.String("remote", r.RemoteAddr))

	go h.writePump(client)
	h.readPump(client)
}

// Emit implements Sink.
func (h *Hub) Emit(e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}

	h.mu.RLock()
	var slow []*hubClient
	for client := range h.clients {
		if client.workflowID != "" && client.workflowID != e.WorkflowID {
			continue
		}
		select {
		case client.send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Dropping slow event stream client")
		h.remove(client)
	}
	return nil
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*hubClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.remove(client)
	}
}

func (h *Hub) remove(client *hubClient) {
	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()
	client.closeOnce.Do(func() {
		close(client.send)
	})
}

// readPump discards client messages and detects disconnects.
func (h *Hub) readPump(client *hubClient) {
	defer func() {
		h.remove(client)
		_ = client.conn.Close()
	}()

	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(client *hubClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
