package typecodec

import (
	"fmt"

	"github.com/joshuapare/symdb/db"
)

// sym is a stand-in for an index entity.
type sym struct{ name string }

// mapResolver resolves a fixed set of entities to made-up records.
type mapResolver struct {
	recs map[*sym]db.RecPtr
	ents map[db.RecPtr]*sym
}

func newResolver(syms ...*sym) *mapResolver {
	r := &mapResolver{recs: map[*sym]db.RecPtr{}, ents: map[db.RecPtr]*sym{}}
	for i, s := range syms {
		p := db.RecPtr(0x4004 + 16*i)
		r.recs[s] = p
		r.ents[p] = s
	}
	return r
}

func (r *mapResolver) RecordOf(e Entity) (db.RecPtr, error) {
	s, ok := e.(*sym)
	if !ok {
		return db.Null, fmt.Errorf("not a symbol: %T", e)
	}
	return r.recs[s], nil
}

func (r *mapResolver) EntityAt(p db.RecPtr) (Entity, error) {
	s, ok := r.ents[p]
	if !ok {
		return nil, fmt.Errorf("no entity at %s", p)
	}
	return s, nil
}
