package memory

import (
	"sort"
	"time"
)

// entity is satisfied by pointers to domain structs embedding domain.Meta.
type entity[T any] interface {
	*T
	Key() string
	Created() time.Time
	Stamp(id string, at time.Time)
}

type row[T any] struct {
	value T
	seq   uint64
}

// table is a map-backed collection for one entity kind. It does no locking;
// RecordStore serializes access.
type table[T any, P entity[T]] struct {
	rows  map[string]row[T]
	seq   uint64
	clone func(T) T
}

func newTable[T any, P entity[T]](clone func(T) T) *table[T, P] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &table[T, P]{rows: make(map[string]row[T]), clone: clone}
}

func (t *table[T, P]) insert(v T, id string, at time.Time) T {
	v = t.clone(v)
	P(&v).Stamp(id, at)
	t.seq++
	t.rows[id] = row[T]{value: v, seq: t.seq}
	return t.clone(v)
}

func (t *table[T, P]) get(id string) (T, bool) {
	r, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.clone(r.value), true
}

// list returns rows passing keep, newest first by orderBy. Rows with equal
// timestamps come back in reverse insertion order.
func (t *table[T, P]) list(keep func(T) bool, orderBy func(T) time.Time) []T {
	rows := make([]row[T], 0, len(t.rows))
	for _, r := range t.rows {
		if keep == nil || keep(r.value) {
			rows = append(rows, r)
		}
	}
	if orderBy == nil {
		orderBy = func(v T) time.Time { return P(&v).Created() }
	}
	sort.Slice(rows, func(i, j int) bool {
		ti, tj := orderBy(rows[i].value), orderBy(rows[j].value)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, t.clone(r.value))
	}
	return out
}

// any reports whether some row matches.
func (t *table[T, P]) any(match func(T) bool) bool {
	for _, r := range t.rows {
		if match(r.value) {
			return true
		}
	}
	return false
}

func (t *table[T, P]) count() int { return len(t.rows) }
