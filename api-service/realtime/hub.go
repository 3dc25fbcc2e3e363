package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Event types broadcast to admin UI clients
const (
	EventDocumentUpdated     = "document.updated"
	EventDocumentPublished   = "document.published"
	EventDocumentUnpublished = "document.unpublished"
	EventDocumentDeleted     = "document.deleted"
	EventAssetCreated        = "asset.created"
	EventAssetDeleted        = "asset.deleted"
)

// Event is a content lifecycle notification scoped to one organization
type Event struct {
	Type           string                 `json:"type"`
	OrganizationID string                 `json:"organization_id"`
	EntityID       string                 `json:"entity_id"`
	ActorID        string                 `json:"actor_id,omitempty"`
	Payload        map[string]interface{} `json:"payload,omitempty"`
}

// Hub fans events out to websocket clients, with rooms keyed by
// organization so tenants never see each other's events
type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan Event
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex
}

var (
	defaultHub     *Hub
	defaultHubOnce sync.Once
)

// GetHub returns the process-wide hub, starting it on first use
func GetHub() *Hub {
	defaultHubOnce.Do(func() {
		defaultHub = NewHub()
		go defaultHub.Run()
	})
	return defaultHub
}

// NewHub creates an idle hub; call Run to start it
func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan Event, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Publish queues an event without blocking the caller. When the hub is
// saturated the event is dropped; clients resynchronize via the REST API.
func (h *Hub) Publish(event Event) {
	select {
	case h.Broadcast <- event:
	default:
		log.Printf("⚠️ Realtime hub saturated, dropping %s event for %s", event.Type, event.EntityID)
	}
}

// Run processes register/unregister/broadcast until the process exits
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.OrganizationID] == nil {
				h.Rooms[client.OrganizationID] = make(map[*Client]bool)
			}
			h.Rooms[client.OrganizationID][client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.removeClient(client)

		case event := <-h.Broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				log.Printf("❌ Error marshalling event: %v", err)
				continue
			}

			// Copy the recipient list so no I/O happens under the lock
			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.Rooms[event.OrganizationID]))
			for client := range h.Rooms[event.OrganizationID] {
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					// Lagging client: drop it rather than blocking the hub
					log.Printf("⚠️ Client send buffer full, unregistering")
					h.removeClient(client)
				}
			}
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.Rooms[client.OrganizationID]
	if room == nil {
		return
	}
	if _, ok := room[client]; !ok {
		return
	}

	delete(room, client)
	close(client.Send)
	if len(room) == 0 {
		delete(h.Rooms, client.OrganizationID)
	}
}
