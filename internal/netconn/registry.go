package netconn

import (
	"sync"

	"github.com/google/uuid"

	"github.com/uno-online/server/internal/protocol"
)

// Registry tracks live connections by identity. It is backed by a sync.Map:
// registration and removal happen constantly and independently across
// clients, so a single coarse lock over the whole map would serialize
// unrelated connections for no benefit.
type Registry struct {
	conns sync.Map // uuid.UUID -> *Conn
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{} }

// Add registers the connection under its identity.
func (r *Registry) Add(c *Conn) { r.conns.Store(c.ID, c) }

// Get returns the connection for id, if registered.
func (r *Registry) Get(id uuid.UUID) (*Conn, bool) {
	v, ok := r.conns.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Conn), true
}

// Unicast sends env to one connection. Unknown ids are ignored: the peer may
// have disconnected between lookup and delivery and that is not an error.
func (r *Registry) Unicast(id uuid.UUID, env *protocol.Envelope) {
	if c, ok := r.Get(id); ok {
		c.Send(env)
	}
}

// Multicast sends env to each listed connection.
func (r *Registry) Multicast(ids []uuid.UUID, env *protocol.Envelope) {
	for _, id := range ids {
		r.Unicast(id, env)
	}
}

// BroadcastAll sends env to every registered connection.
func (r *Registry) BroadcastAll(env *protocol.Envelope) {
	r.conns.Range(func(_, v interface{}) bool {
		v.(*Conn).Send(env)
		return true
	})
}

// Remove unregisters and closes the connection. Idempotent.
func (r *Registry) Remove(id uuid.UUID) {
	if v, loaded := r.conns.LoadAndDelete(id); loaded {
		v.(*Conn).Close()
	}
}

// CloseAll tears down every tracked connection.
func (r *Registry) CloseAll() {
	r.conns.Range(func(k, v interface{}) bool {
		r.conns.Delete(k)
		v.(*Conn).Close()
		return true
	})
}

// Len counts the registered connections.
func (r *Registry) Len() int {
	n := 0
	r.conns.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}
