package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(hub *Hub, viewer string, datasets ...string) *Client {
	return NewClient(hub, nil, viewer, Timing{}, testLogger(), datasets...)
}

func TestHub_BroadcastRoutesByDataset(t *testing.T) {
	hub := NewHub(testLogger())

	sla := newTestClient(hub, "gestao", "geoti_sla.xlsx")
	other := newTestClient(hub, "gestao", "tickets-2023")
	hub.registerClient(sla)
	hub.registerClient(other)

	assert.Equal(t, 2, hub.GetClientCount())
	assert.Equal(t, 2, hub.GetRoomCount())
	assert.Equal(t, 1, hub.GetClientsInRoom("geoti_sla.xlsx"))

	hub.broadcastEvent(domain.Event{Type: domain.EventDatasetReloaded, Dataset: "geoti_sla.xlsx"})

	require.Len(t, sla.Send, 1)
	assert.Empty(t, other.Send)

	event := <-sla.Send
	assert.Equal(t, domain.EventDatasetReloaded, event.Type)
}

func TestHub_EventWithoutDatasetReachesEveryone(t *testing.T) {
	hub := NewHub(testLogger())

	a := newTestClient(hub, "gestao", "geoti_sla.xlsx")
	b := newTestClient(hub, "suporte")
	hub.registerClient(a)
	hub.registerClient(b)

	hub.broadcastEvent(domain.Event{Type: domain.EventSLABreach})

	assert.Len(t, a.Send, 1)
	assert.Len(t, b.Send, 1)
}

func TestHub_SubscribeAndUnsubscribe(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient(hub, "gestao")
	hub.registerClient(client)

	hub.subscribe(client, "geoti_sla.xlsx")
	assert.True(t, client.HasSubscription("geoti_sla.xlsx"))
	assert.Equal(t, 1, hub.GetClientsInRoom("geoti_sla.xlsx"))

	hub.unsubscribe(client, "geoti_sla.xlsx")
	assert.False(t, client.HasSubscription("geoti_sla.xlsx"))
	assert.Equal(t, 0, hub.GetRoomCount())
}

func TestHub_SubscribeIgnoredAfterUnregister(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient(hub, "gestao", "geoti_sla.xlsx")
	hub.registerClient(client)
	hub.unregisterClient(client)

	hub.subscribe(client, "geoti_sla.xlsx")

	assert.Equal(t, 0, hub.GetRoomCount())
	_, open := <-client.Send
	assert.False(t, open)

	// a second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHub_FullBufferUnregistersClient(t *testing.T) {
	hub := NewHub(testLogger())
	slow := newTestClient(hub, "gestao", "geoti_sla.xlsx")
	hub.registerClient(slow)

	for i := 0; i < sendBufferSize; i++ {
		slow.Send <- domain.Event{Type: domain.EventPong}
	}

	hub.broadcastEvent(domain.Event{Type: domain.EventDatasetReloaded, Dataset: "geoti_sla.xlsx"})

	assert.Equal(t, 0, hub.GetClientCount())
	assert.Equal(t, 0, hub.GetRoomCount())
}

func TestHub_RunDeliversAndStops(t *testing.T) {
	hub := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := newTestClient(hub, "gestao", "geoti_sla.xlsx")
	require.True(t, hub.Join(client))

	require.NoError(t, hub.Broadcast(domain.Event{Type: domain.EventDatasetReloaded, Dataset: "geoti_sla.xlsx"}))

	select {
	case event := <-client.Send:
		assert.Equal(t, "geoti_sla.xlsx", event.Dataset)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	cancel()
	<-stopped

	assert.False(t, hub.Join(newTestClient(hub, "late")))
	hub.Leave(client)
	_, open := <-client.Send
	assert.False(t, open)
}

func TestClient_HandleIncomingMessage(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient(hub, "gestao")
	hub.registerClient(client)

	send := func(msgType string, payload any) {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		msg, err := json.Marshal(ClientMessage{Type: msgType, Payload: raw})
		require.NoError(t, err)
		client.handleIncomingMessage(msg)
	}

	send(MessageSubscribe, SubscribePayload{Dataset: " geoti_sla.xlsx "})
	assert.True(t, client.HasSubscription("geoti_sla.xlsx"))

	send(MessageSubscribe, SubscribePayload{Dataset: ""})
	assert.Len(t, client.GetSubscriptions(), 1)

	send(MessagePing, nil)
	require.Len(t, client.Send, 1)
	assert.Equal(t, domain.EventPong, (<-client.Send).Type)

	send(MessageUnsubscribe, SubscribePayload{Dataset: "geoti_sla.xlsx"})
	assert.Empty(t, client.GetSubscriptions())

	client.handleIncomingMessage([]byte("not json"))
}

func TestClient_PongAfterCloseIsDropped(t *testing.T) {
	client := newTestClient(NewHub(testLogger()), "gestao")
	client.CloseSend()
	client.CloseSend()

	assert.NotPanics(t, client.sendPong)
}
