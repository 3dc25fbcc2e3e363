package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(orgID string) *Client {
	return &Client{
		OrganizationID: orgID,
		Send:           make(chan []byte, sendBufferSize),
	}
}

func register(t *testing.T, hub *Hub, client *Client) {
	t.Helper()
	select {
	case hub.Register <- client:
	case <-time.After(time.Second):
		t.Fatal("hub did not accept registration")
	}
}

func receive(t *testing.T, client *Client) Event {
	t.Helper()
	select {
	case payload := <-client.Send:
		var event Event
		require.NoError(t, json.Unmarshal(payload, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func TestHubBroadcastsOnlyToOrganizationRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	acme := newTestClient("org-acme")
	other := newTestClient("org-other")
	register(t, hub, acme)
	register(t, hub, other)

	hub.Publish(Event{
		Type:           EventDocumentPublished,
		OrganizationID: "org-acme",
		EntityID:       "doc-1",
	})

	event := receive(t, acme)
	assert.Equal(t, EventDocumentPublished, event.Type)
	assert.Equal(t, "doc-1", event.EntityID)

	select {
	case <-other.Send:
		t.Fatal("event leaked into another organization's room")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubDropsLaggingClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	lagging := &Client{
		OrganizationID: "org-acme",
		// Zero-capacity buffer: every send immediately overflows
		Send: make(chan []byte),
	}
	register(t, hub, lagging)

	hub.Publish(Event{Type: EventDocumentUpdated, OrganizationID: "org-acme", EntityID: "doc-1"})

	assert.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.Rooms["org-acme"]) == 0
	}, time.Second, 10*time.Millisecond, "lagging client should be removed")
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient("org-acme")
	register(t, hub, client)

	hub.Unregister <- client

	assert.Eventually(t, func() bool {
		select {
		case _, open := <-client.Send:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}
