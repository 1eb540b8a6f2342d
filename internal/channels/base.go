package channels

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Base carries the identity, logger and state lock every adapter embeds.
// Adapters guard their credentials, client and defaults with Mu and take a
// snapshot at the start of each operation.
type Base struct {
	id string

	Mu     sync.RWMutex
	logger *zap.Logger
}

// NewBase returns a Base with a no-op logger.
func NewBase(id string) *Base {
	return &Base{id: id, logger: zap.NewNop()}
}

// ID returns the identifier fixed at construction.
func (b *Base) ID() string { return b.id }

// SetLogger scopes logger to this channel.
func (b *Base) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b.Mu.Lock()
	b.logger = logger.With(zap.String("channel", b.id))
	b.Mu.Unlock()
}

// Logger returns the channel-scoped logger.
func (b *Base) Logger() *zap.Logger {
	b.Mu.RLock()
	defer b.Mu.RUnlock()
	return b.logger
}

// RunLogger returns the channel logger tagged with a fresh run id, so the log
// lines of one orchestration can be told apart from a concurrent one.
func (b *Base) RunLogger(op string) *zap.Logger {
	return b.Logger().With(zap.String("op", op), zap.String("run_id", uuid.NewString()))
}
