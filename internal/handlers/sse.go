package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/indecor/dreamspace-backend/internal/sse"
)

type SSEHandler struct {
	hub *sse.SSEHub

	mu      sync.RWMutex
	clients map[uuid.UUID]*sse.SSEClient // key: acting user ID
}

func NewSSEHandler(hub *sse.SSEHub) *SSEHandler {
	return &SSEHandler{hub: hub, clients: make(map[uuid.UUID]*sse.SSEClient)}
}

// Stream opens the event stream. Every connection is auto-subscribed to the
// caller's own user channel, which is where job lifecycle events land. A new
// connection from the same user replaces the previous one, so Subscribe and
// Unsubscribe can address the stream by the caller's identity alone.
func (sh *SSEHandler) Stream(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user"))
		return
	}

	sh.mu.Lock()
	if existing, ok := sh.clients[userID]; ok {
		sh.hub.RemoveClient(existing)
	}
	client := sh.hub.NewSSEClient(userID)
	sh.clients[userID] = client
	sh.mu.Unlock()

	sh.hub.AddChannel(client, userID.String())

	defer func() {
		sh.mu.Lock()
		if sh.clients[userID] == client {
			delete(sh.clients, userID)
		}
		sh.mu.Unlock()
		sh.hub.RemoveClient(client)
	}()

	sh.hub.ServeHTTP(c.Writer, c.Request, client)
}

// channelAllowed restricts subscriptions to channels the caller owns.
func channelAllowed(userID uuid.UUID, channel string) bool {
	return channel == userID.String() || strings.HasPrefix(channel, userID.String()+":")
}

func (sh *SSEHandler) clientFor(userID uuid.UUID) *sse.SSEClient {
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return sh.clients[userID]
}

func (sh *SSEHandler) Subscribe(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user"))
		return
	}
	var req struct {
		Channel string `json:"channel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Channel == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid request body"))
		return
	}
	if !channelAllowed(userID, req.Channel) {
		RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("not found"))
		return
	}
	client := sh.clientFor(userID)
	if client == nil {
		RespondError(c, http.StatusConflict, "no_stream", fmt.Errorf("no active event stream"))
		return
	}
	sh.hub.AddChannel(client, req.Channel)
	RespondOK(c, gin.H{"subscribed": req.Channel})
}

func (sh *SSEHandler) Unsubscribe(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user"))
		return
	}
	var req struct {
		Channel string `json:"channel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Channel == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid request body"))
		return
	}
	client := sh.clientFor(userID)
	if client == nil {
		RespondError(c, http.StatusConflict, "no_stream", fmt.Errorf("no active event stream"))
		return
	}
	sh.hub.RemoveChannel(client, req.Channel)
	RespondOK(c, gin.H{"unsubscribed": req.Channel})
}
