package entity

import (
	"fmt"
	"sort"
	"sync"

	"esphome-go/internal/api"
)

// Registry holds the entities of one session, keyed by entity key.
type Registry struct {
	sender Sender

	mu       sync.RWMutex
	entities map[uint32]Entity
}

// NewRegistry creates an empty registry whose entities send commands
// through sender.
func NewRegistry(sender Sender) *Registry {
	return &Registry{
		sender:   sender,
		entities: make(map[uint32]Entity),
	}
}

// Register builds and stores the entity described by d.
func (r *Registry) Register(d api.EntityDescriptor) (Entity, error) {
	e, err := New(d, r.sender)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, api.Name(d))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.entities[e.Key()]; ok {
		return nil, fmt.Errorf("%w: %d (%s and %s)", ErrDuplicateKey, e.Key(), prev.Info().ObjectID, e.Info().ObjectID)
	}
	r.entities[e.Key()] = e
	return e, nil
}

// Apply routes a state message to the entity with the given key. It reports
// false when no entity has that key or the message does not fit its kind.
func (r *Registry) Apply(key uint32, m api.StateMessage) (Entity, bool) {
	e, ok := r.Get(key)
	if !ok {
		return nil, false
	}
	if !e.update(m) {
		return e, false
	}
	return e, true
}

func (r *Registry) Get(key uint32) (Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entities[key]
	return e, ok
}

// All returns a copy of the key to entity map.
func (r *Registry) All() map[uint32]Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[uint32]Entity, len(r.entities))
	for k, e := range r.entities {
		out[k] = e
	}
	return out
}

// Sorted returns the entities ordered by kind, then object id.
func (r *Registry) Sorted() []Entity {
	r.mu.RLock()
	list := make([]Entity, 0, len(r.entities))
	for _, e := range r.entities {
		list = append(list, e)
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		if list[i].Kind() != list[j].Kind() {
			return list[i].Kind() < list[j].Kind()
		}
		return list[i].Info().ObjectID < list[j].Info().ObjectID
	})
	return list
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}

// ByObjectID finds an entity by kind and object id, the pair used in
// topic and URL paths.
func (r *Registry) ByObjectID(kind api.EntityKind, objectID string) (Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entities {
		if e.Kind() == kind && e.Info().ObjectID == objectID {
			return e, true
		}
	}
	return nil, false
}
