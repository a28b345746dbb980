package memory

import (
	"context"
	"sync"

	domainproperty "rentops/internal/domain/property"
)

type PropertyDirectory struct {
	mu    sync.RWMutex
	items map[string]domainproperty.Property
}

func NewPropertyDirectory(props ...domainproperty.Property) *PropertyDirectory {
	d := &PropertyDirectory{items: make(map[string]domainproperty.Property)}
	for _, p := range props {
		d.items[p.ID] = p
	}
	return d
}

func (d *PropertyDirectory) ByID(ctx context.Context, id string) (*domainproperty.Property, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.items[id]
	if !ok {
		return nil, domainproperty.ErrPropertyNotFound
	}
	return &p, nil
}

func (d *PropertyDirectory) Save(ctx context.Context, p domainproperty.Property) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items[p.ID] = p
	return nil
}

var _ domainproperty.Directory = (*PropertyDirectory)(nil)
