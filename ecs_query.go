package infinity

import (
	"reflect"
)

// Queries visit every entity that owns the requested components. Component
// types passed as optionals (zero values) may be missing; their pointer is
// then nil. Returning false from the callback stops the iteration. Iteration
// order is unspecified.
type Query1[A any] struct{ ecs *Ecs }
type Query2[A, B any] struct{ ecs *Ecs }
type Query3[A, B, C any] struct{ ecs *Ecs }
type Query4[A, B, C, D any] struct{ ecs *Ecs }

func MakeQuery1[A any](cmd *Commands) Query1[A]             { return Query1[A]{ecs: cmd.app.ecs} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B]       { return Query2[A, B]{ecs: cmd.app.ecs} }
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] { return Query3[A, B, C]{ecs: cmd.app.ecs} }
func MakeQuery4[A, B, C, D any](cmd *Commands) Query4[A, B, C, D] {
	return Query4[A, B, C, D]{ecs: cmd.app.ecs}
}

// column resolves the []T of arch. ok is false when arch must be skipped.
func column[T any](ecs *Ecs, arch *archetype, optional map[componentId]bool) (col []T, ok bool) {
	var zero T
	id := ecs.componentIdOf(reflect.TypeOf(zero))
	if data, found := arch.columns[id]; found {
		return data.([]T), true
	}
	return nil, optional[id]
}

func at[T any](col []T, r row) *T {
	if col == nil {
		return nil
	}
	return &col[r]
}

func optionalIds(ecs *Ecs, optionals []any) map[componentId]bool {
	if len(optionals) == 0 {
		return nil
	}
	res := make(map[componentId]bool, len(optionals))
	for _, o := range optionals {
		t := reflect.TypeOf(o)
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		res[ecs.componentIdOf(t)] = true
	}
	return res
}

func (q Query1[A]) Map(fn func(EntityId, *A) bool, optionals ...any) {
	opt := optionalIds(q.ecs, optionals)
	for _, arch := range q.ecs.archetypes {
		a, ok := column[A](q.ecs, arch, opt)
		if !ok {
			continue
		}
		for eid, r := range arch.entities {
			if !fn(eid, at(a, r)) {
				return
			}
		}
	}
}

func (q Query2[A, B]) Map(fn func(EntityId, *A, *B) bool, optionals ...any) {
	opt := optionalIds(q.ecs, optionals)
	for _, arch := range q.ecs.archetypes {
		a, okA := column[A](q.ecs, arch, opt)
		b, okB := column[B](q.ecs, arch, opt)
		if !okA || !okB {
			continue
		}
		for eid, r := range arch.entities {
			if !fn(eid, at(a, r), at(b, r)) {
				return
			}
		}
	}
}

func (q Query3[A, B, C]) Map(fn func(EntityId, *A, *B, *C) bool, optionals ...any) {
	opt := optionalIds(q.ecs, optionals)
	for _, arch := range q.ecs.archetypes {
		a, okA := column[A](q.ecs, arch, opt)
		b, okB := column[B](q.ecs, arch, opt)
		c, okC := column[C](q.ecs, arch, opt)
		if !okA || !okB || !okC {
			continue
		}
		for eid, r := range arch.entities {
			if !fn(eid, at(a, r), at(b, r), at(c, r)) {
				return
			}
		}
	}
}

func (q Query4[A, B, C, D]) Map(fn func(EntityId, *A, *B, *C, *D) bool, optionals ...any) {
	opt := optionalIds(q.ecs, optionals)
	for _, arch := range q.ecs.archetypes {
		a, okA := column[A](q.ecs, arch, opt)
		b, okB := column[B](q.ecs, arch, opt)
		c, okC := column[C](q.ecs, arch, opt)
		d, okD := column[D](q.ecs, arch, opt)
		if !okA || !okB || !okC || !okD {
			continue
		}
		for eid, r := range arch.entities {
			if !fn(eid, at(a, r), at(b, r), at(c, r), at(d, r)) {
				return
			}
		}
	}
}

// GetComponent returns the live component T of eid, or nil.
func GetComponent[T any](cmd *Commands, eid EntityId) *T {
	ecs := cmd.app.ecs
	archId, ok := ecs.entityIndex[eid]
	if !ok {
		return nil
	}
	arch := ecs.archetypes[archId]
	col, ok := column[T](ecs, arch, nil)
	if !ok {
		return nil
	}
	return &col[arch.entities[eid]]
}
