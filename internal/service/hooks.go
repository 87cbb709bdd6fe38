package service

import (
	"context"
	"sync"

	"fileapi/internal/model"
)

// StoringHandler runs before a file's bytes are written. A non-nil error vetoes the write.
type StoringHandler func(ctx context.Context, f *model.File) error

// StoredHandler runs after a file's bytes were written.
type StoredHandler func(ctx context.Context, f *model.File)

// Hooks is a registry of storing/stored handlers owned by an Ingestor.
// It is safe for concurrent use.
type Hooks struct {
	mu      sync.RWMutex
	storing []StoringHandler
	stored  []StoredHandler
}

// NewHooks returns an empty registry.
func NewHooks() *Hooks {
	return &Hooks{}
}

// OnStoring registers fn. Handlers run in registration order.
func (h *Hooks) OnStoring(fn StoringHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.storing = append(h.storing, fn)
}

// OnStored registers fn. Handlers run in registration order.
func (h *Hooks) OnStored(fn StoredHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stored = append(h.stored, fn)
}

// Reset drops every registered handler.
func (h *Hooks) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.storing = nil
	h.stored = nil
}

// fireStoring runs the storing handlers and returns the first veto.
func (h *Hooks) fireStoring(ctx context.Context, f *model.File) error {
	h.mu.RLock()
	handlers := append([]StoringHandler(nil), h.storing...)
	h.mu.RUnlock()

	for _, fn := range handlers {
		if err := fn(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hooks) fireStored(ctx context.Context, f *model.File) {
	h.mu.RLock()
	handlers := append([]StoredHandler(nil), h.stored...)
	h.mu.RUnlock()

	for _, fn := range handlers {
		fn(ctx, f)
	}
}
