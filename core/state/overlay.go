package state

import (
	"errors"

	"farmchain/storage"
)

// overlay stages writes on top of a backend until they are committed.
type overlay struct {
	base    storage.Database
	writes  map[string][]byte
	deletes map[string]struct{}
	order   []string
}

func newOverlay(base storage.Database) *overlay {
	return &overlay{
		base:    base,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

// get returns nil when the key is absent.
func (o *overlay) get(key []byte) ([]byte, error) {
	k := string(key)
	if _, deleted := o.deletes[k]; deleted {
		return nil, nil
	}
	if value, ok := o.writes[k]; ok {
		return value, nil
	}
	value, err := o.base.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return value, err
}

func (o *overlay) touch(k string) {
	if _, staged := o.writes[k]; staged {
		return
	}
	if _, staged := o.deletes[k]; staged {
		return
	}
	o.order = append(o.order, k)
}

func (o *overlay) put(key, value []byte) {
	k := string(key)
	o.touch(k)
	delete(o.deletes, k)
	o.writes[k] = append([]byte(nil), value...)
}

func (o *overlay) remove(key []byte) {
	k := string(key)
	o.touch(k)
	delete(o.writes, k)
	o.deletes[k] = struct{}{}
}

// commit hands the staged changes to the backend as one batch in
// first-touch order. Nothing is applied when the batch fails.
func (o *overlay) commit() error {
	if len(o.order) == 0 {
		return nil
	}
	ops := make([]storage.Op, 0, len(o.order))
	for _, k := range o.order {
		if value, ok := o.writes[k]; ok {
			ops = append(ops, storage.Op{Key: []byte(k), Value: value})
			continue
		}
		ops = append(ops, storage.Op{Key: []byte(k), Delete: true})
	}
	if err := o.base.WriteBatch(ops); err != nil {
		return err
	}
	o.writes = make(map[string][]byte)
	o.deletes = make(map[string]struct{})
	o.order = nil
	return nil
}

func (o *overlay) dirty() int { return len(o.order) }
