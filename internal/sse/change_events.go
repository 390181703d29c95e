package sse

import (
	"context"
	"sync"

	"ms-seating/internal/models"
)

// ChangeEmitter fans change events out to every connected stream client
type ChangeEmitter struct {
	clients     []chan models.ChangeEvent
	clientMutex sync.RWMutex
}

// NewChangeEmitter creates a new SSE emitter for change events
func NewChangeEmitter() *ChangeEmitter {
	return &ChangeEmitter{}
}

// Subscribe adds a client that is removed, and its channel closed, when ctx is done
func (e *ChangeEmitter) Subscribe(ctx context.Context) chan models.ChangeEvent {
	clientChan := make(chan models.ChangeEvent, 16)

	e.clientMutex.Lock()
	e.clients = append(e.clients, clientChan)
	e.clientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeClient(clientChan)
	}()

	return clientChan
}

// Notify broadcasts a change event to all subscribed clients
func (e *ChangeEmitter) Notify(event models.ChangeEvent) {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()

	for _, clientChan := range e.clients {
		// Non-blocking send so a slow client cannot stall writers
		select {
		case clientChan <- event:
		default:
		}
	}
}

func (e *ChangeEmitter) removeClient(clientChan chan models.ChangeEvent) {
	e.clientMutex.Lock()
	defer e.clientMutex.Unlock()

	for i, ch := range e.clients {
		if ch == clientChan {
			e.clients = append(e.clients[:i], e.clients[i+1:]...)
			close(clientChan)
			break
		}
	}
}

// ClientCount returns the number of clients currently subscribed
func (e *ChangeEmitter) ClientCount() int {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return len(e.clients)
}
