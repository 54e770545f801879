package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// Limits bound the carts a registry keeps in memory. A cart untouched for
// IdleTTL is dropped; past MaxSessions the least recently used cart is
// dropped. Zero means no limit for either.
type Limits struct {
	MaxSessions int
	IdleTTL     time.Duration
}

// Registry keeps one Store per browsing session
type Registry struct {
	mu       sync.Mutex
	stores   *expirable.LRU[uuid.UUID, *Store]
	settings Settings
	logger   *zap.Logger
}

// NewRegistry creates a registry whose new carts start from settings
func NewRegistry(settings Settings, limits Limits, logger *zap.Logger) *Registry {
	onEvict := func(sessionID uuid.UUID, _ *Store) {
		logger.Debug("Cart dropped", zap.String("session_id", sessionID.String()))
	}

	return &Registry{
		stores:   expirable.NewLRU[uuid.UUID, *Store](limits.MaxSessions, onEvict, limits.IdleTTL),
		settings: settings,
		logger:   logger,
	}
}

// Get returns the store for a session, creating an empty one on first use.
// Only callers about to change the cart should use it; readers use Lookup.
func (r *Registry) Get(sessionID uuid.UUID) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, ok := r.stores.Get(sessionID)
	if !ok {
		store = NewStore(r.settings)
		r.logger.Debug("Cart created", zap.String("session_id", sessionID.String()))
	}
	// re-adding restarts the idle timer
	r.stores.Add(sessionID, store)
	return store
}

// Lookup returns the store of a known session without creating one
func (r *Registry) Lookup(sessionID uuid.UUID) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, ok := r.stores.Get(sessionID)
	if ok {
		r.stores.Add(sessionID, store)
	}
	return store, ok
}

// Settings returns the configuration new carts start from
func (r *Registry) Settings() Settings {
	return r.settings
}

// Len returns the number of live carts
func (r *Registry) Len() int {
	return r.stores.Len()
}
