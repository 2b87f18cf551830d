package alias

import (
	"slices"

	"github.com/darkodi/url-alias/internal/model"
)

// table holds alias records keyed by id, iterated in insertion order.
// Mutations run on a clone that replaces the live table only on success.
type table struct {
	records map[int64]model.URLAlias
	order   []int64
	nextID  int64
}

func newTable(fixture model.AliasFixture) *table {
	t := &table{
		records: make(map[int64]model.URLAlias, len(fixture.Aliases)),
		nextID:  fixture.NextID,
	}
	for _, a := range fixture.Aliases {
		t.put(a.Clone())
		t.nextID = max(t.nextID, a.ID)
	}
	return t
}

func (t *table) clone() *table {
	c := &table{
		records: make(map[int64]model.URLAlias, len(t.records)),
		order:   slices.Clone(t.order),
		nextID:  t.nextID,
	}
	for id, a := range t.records {
		c.records[id] = a
	}
	return c
}

// allocID hands out the next id. Ids are never handed out twice.
func (t *table) allocID() int64 {
	t.nextID++
	return t.nextID
}

// put stores a, appending it to the iteration order.
func (t *table) put(a model.URLAlias) {
	if _, exists := t.records[a.ID]; exists {
		t.delete(a.ID)
	}
	t.records[a.ID] = a
	t.order = append(t.order, a.ID)
}

func (t *table) delete(id int64) {
	if _, exists := t.records[id]; !exists {
		return
	}
	delete(t.records, id)
	if i := slices.Index(t.order, id); i >= 0 {
		t.order = slices.Delete(t.order, i, i+1)
	}
}

func (t *table) get(id int64) (model.URLAlias, bool) {
	a, ok := t.records[id]
	return a, ok
}

// filter returns the records matching keep, in iteration order
func (t *table) filter(keep func(model.URLAlias) bool) []model.URLAlias {
	var out []model.URLAlias
	for _, id := range t.order {
		a := t.records[id]
		if keep(a) {
			out = append(out, a.Clone())
		}
	}
	return out
}

func (t *table) len() int {
	return len(t.order)
}
