package sse

import (
	"testing"

	"github.com/google/uuid"

	"github.com/indecor/dreamspace-backend/internal/logger"
)

func newTestHub(t *testing.T) *SSEHub {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewSSEHub(log)
}

func TestBroadcastReachesSubscribedChannelOnly(t *testing.T) {
	hub := newTestHub(t)
	userID := uuid.New()
	client := hub.NewSSEClient(userID)
	hub.AddChannel(client, userID.String())

	other := hub.NewSSEClient(uuid.New())
	hub.AddChannel(other, other.UserID.String())

	msg := SSEMessage{Channel: userID.String(), Event: SSEEventJobDone, Data: "payload"}
	hub.Broadcast(msg)

	select {
	case got := <-client.Outbound:
		if got.Event != SSEEventJobDone {
			t.Fatalf("unexpected event %q", got.Event)
		}
	default:
		t.Fatalf("expected message on subscribed client")
	}

	select {
	case got := <-other.Outbound:
		t.Fatalf("unexpected message on unrelated client: %+v", got)
	default:
	}
}

func TestRemoveClientStopsDelivery(t *testing.T) {
	hub := newTestHub(t)
	userID := uuid.New()
	client := hub.NewSSEClient(userID)
	hub.AddChannel(client, userID.String())
	hub.RemoveClient(client)

	hub.Broadcast(SSEMessage{Channel: userID.String(), Event: SSEEventJobProgress})

	select {
	case got := <-client.Outbound:
		t.Fatalf("expected no delivery after removal, got %+v", got)
	default:
	}

	select {
	case <-client.Done():
	default:
		t.Fatalf("expected done channel closed after removal")
	}
}

func TestSlowClientIsSkipped(t *testing.T) {
	hub := newTestHub(t)
	userID := uuid.New()
	client := hub.NewSSEClient(userID)
	hub.AddChannel(client, userID.String())

	// Fill the outbound buffer; further broadcasts must not block.
	for i := 0; i < cap(client.Outbound)+5; i++ {
		hub.Broadcast(SSEMessage{Channel: userID.String(), Event: SSEEventJobProgress})
	}
	if len(client.Outbound) != cap(client.Outbound) {
		t.Fatalf("expected full buffer, got %d", len(client.Outbound))
	}
}
