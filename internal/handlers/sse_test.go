package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/indecor/dreamspace-backend/internal/logger"
	"github.com/indecor/dreamspace-backend/internal/requestdata"
	"github.com/indecor/dreamspace-backend/internal/sse"
)

func newSSETestHandler(t *testing.T) *SSEHandler {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewSSEHandler(sse.NewSSEHub(log))
}

func authedContext(t *testing.T, w http.ResponseWriter, userID uuid.UUID, method, path, body string, cancelable context.Context) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w.(*httptest.ResponseRecorder))
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := requestdata.WithRequestData(cancelable, &requestdata.RequestData{UserID: userID})
	c.Request = req.WithContext(ctx)
	return c
}

func waitForClient(t *testing.T, sh *SSEHandler, userID uuid.UUID) *sse.SSEClient {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if client := sh.clientFor(userID); client != nil {
			return client
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("stream never registered a client for user %s", userID)
	return nil
}

func TestSubscribeAfterStreamOpens(t *testing.T) {
	sh := newSSETestHandler(t)
	userID := uuid.New()

	streamCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	streamRec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		c := authedContext(t, streamRec, userID, http.MethodGet, "/api/sse/stream", "", streamCtx)
		sh.Stream(c)
	}()

	client := waitForClient(t, sh, userID)

	channel := userID.String() + ":project"
	w := httptest.NewRecorder()
	c := authedContext(t, w, userID, http.MethodPost, "/api/sse/subscribe",
		`{"channel":"`+channel+`"}`, context.Background())
	sh.Subscribe(c)
	if w.Code != http.StatusOK {
		t.Fatalf("subscribe status = %d, body %s", w.Code, w.Body.String())
	}

	sh.hub.Broadcast(sse.SSEMessage{Channel: channel, Event: sse.SSEEventJobProgress})

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("stream did not shut down on context cancel")
	}

	// The serve loop may have flushed the message to the response before the
	// cancel landed, or it may still sit in the client's queue.
	delivered := strings.Contains(streamRec.Body.String(), channel)
	select {
	case got := <-client.Outbound:
		delivered = delivered || got.Channel == channel
	default:
	}
	if !delivered {
		t.Fatalf("subscribed client never received the broadcast")
	}
	if sh.clientFor(userID) != nil {
		t.Fatalf("client still registered after stream closed")
	}
}

func TestSubscribeWithoutStreamConflicts(t *testing.T) {
	sh := newSSETestHandler(t)
	userID := uuid.New()

	w := httptest.NewRecorder()
	c := authedContext(t, w, userID, http.MethodPost, "/api/sse/subscribe",
		`{"channel":"`+userID.String()+`"}`, context.Background())
	sh.Subscribe(c)
	if w.Code != http.StatusConflict {
		t.Fatalf("subscribe without stream status = %d, want 409", w.Code)
	}
}

func TestSubscribeForeignChannelIsNotFound(t *testing.T) {
	sh := newSSETestHandler(t)
	userID := uuid.New()

	streamCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		w := httptest.NewRecorder()
		c := authedContext(t, w, userID, http.MethodGet, "/api/sse/stream", "", streamCtx)
		sh.Stream(c)
	}()
	waitForClient(t, sh, userID)

	w := httptest.NewRecorder()
	c := authedContext(t, w, userID, http.MethodPost, "/api/sse/subscribe",
		`{"channel":"`+uuid.New().String()+`"}`, context.Background())
	sh.Subscribe(c)
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign channel subscribe status = %d, want 404", w.Code)
	}
}
