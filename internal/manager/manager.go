// Package manager holds the set of configured ad channels and resolves them
// by id.
package manager

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"adsmanager/internal/channels"
)

var (
	// ErrChannelNotFound is returned when no registered channel has the id.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrChannelTypeMismatch is returned by UseAs when the channel registered
	// under an id is not of the requested type.
	ErrChannelTypeMismatch = errors.New("channel type mismatch")
)

// Manager is a registry of channels. It is safe for concurrent use.
// Registration order is preserved and ids are not deduplicated: when two
// channels share an id, the first one registered wins lookups.
type Manager struct {
	mu       sync.RWMutex
	channels []channels.Channel
	logger   *zap.Logger
}

// New returns a Manager holding chs. Every channel receives logger.
func New(logger *zap.Logger, chs ...channels.Channel) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{logger: logger}
	for _, ch := range chs {
		m.AddChannel(ch)
	}
	return m
}

// AddChannel registers ch and hands it the manager's logger.
func (m *Manager) AddChannel(ch channels.Channel) {
	ch.SetLogger(m.logger)

	m.mu.Lock()
	m.channels = append(m.channels, ch)
	m.mu.Unlock()

	m.logger.Debug("channel registered", zap.String("channel", ch.ID()), zap.Bool("configured", ch.IsConfigured()))
}

// Use returns the first channel registered under id.
func (m *Manager) Use(id string) (channels.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, ch := range m.channels {
		if ch.ID() == id {
			return ch, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrChannelNotFound, id)
}

// UseAs returns the channel registered under id as its concrete type, giving
// access to the provider-specific operations.
func UseAs[T channels.Channel](m *Manager, id string) (T, error) {
	var zero T
	ch, err := m.Use(id)
	if err != nil {
		return zero, err
	}
	typed, ok := ch.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q is %T, not %T", ErrChannelTypeMismatch, id, ch, zero)
	}
	return typed, nil
}

// Channels returns the registered channels in registration order.
func (m *Manager) Channels() []channels.Channel {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]channels.Channel, len(m.channels))
	copy(out, m.channels)
	return out
}

// IDs returns the ids of the registered channels in registration order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.channels))
	for _, ch := range m.channels {
		ids = append(ids, ch.ID())
	}
	return ids
}
