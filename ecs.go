package infinity

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"reflect"
	"slices"
	"sync"
)

type EntityId uint64
type componentId uint32
type archetypeId uint64
type row int

// archetypeKey is the sorted, deduplicated list of component ids of an archetype.
type archetypeKey []componentId

// Ecs stores entities in archetypes: one typed slice per component type, all
// entities with the same component set sharing a row index.
type Ecs struct {
	archetypes  map[archetypeId]*archetype
	entityIndex map[EntityId]archetypeId

	idLock   sync.Mutex
	nextId   EntityId
	typeLock sync.Mutex
	typeIds  map[reflect.Type]componentId
	idTypes  []reflect.Type
}

type archetype struct {
	key      archetypeKey
	entities map[EntityId]row
	columns  map[componentId]any // []T per component
	free     []row
	size     int
}

func MakeEcs() Ecs {
	return Ecs{
		archetypes:  make(map[archetypeId]*archetype),
		entityIndex: make(map[EntityId]archetypeId),
		typeIds:     make(map[reflect.Type]componentId),
	}
}

func (ecs *Ecs) nextEntityId() EntityId {
	ecs.idLock.Lock()
	defer ecs.idLock.Unlock()
	id := ecs.nextId
	ecs.nextId++
	return id
}

func (ecs *Ecs) addEntity(components ...any) EntityId {
	return ecs.insertEntity(ecs.nextEntityId(), components...)
}

func (ecs *Ecs) insertEntity(eid EntityId, components ...any) EntityId {
	archId, arch := ecs.archetypeFor(ecs.keyOf(components))
	r := ecs.reserveRow(arch)
	for _, c := range components {
		ecs.write(arch, r, c)
	}
	arch.entities[eid] = r
	ecs.entityIndex[eid] = archId
	return eid
}

func (ecs *Ecs) alive(eid EntityId) bool {
	_, ok := ecs.entityIndex[eid]
	return ok
}

func (ecs *Ecs) removeEntity(eid EntityId) {
	archId, ok := ecs.entityIndex[eid]
	if !ok {
		return
	}
	ecs.release(ecs.archetypes[archId], eid)
	delete(ecs.entityIndex, eid)
}

func (ecs *Ecs) addComponents(eid EntityId, components ...any) {
	srcId, ok := ecs.entityIndex[eid]
	if !ok {
		return
	}
	src := ecs.archetypes[srcId]
	key := normalizeKey(append(slices.Clone(src.key), ecs.keyOf(components)...))
	ecs.moveEntity(eid, src, key, components)
}

func (ecs *Ecs) removeComponents(eid EntityId, components ...any) {
	srcId, ok := ecs.entityIndex[eid]
	if !ok {
		return
	}
	src := ecs.archetypes[srcId]
	drop := ecs.keyOf(components)
	key := slices.DeleteFunc(slices.Clone(src.key), func(id componentId) bool {
		return slices.Contains(drop, id)
	})
	ecs.moveEntity(eid, src, key, nil)
}

// moveEntity copies the components shared by src and the archetype of key,
// then writes the extra components on top.
func (ecs *Ecs) moveEntity(eid EntityId, src *archetype, key archetypeKey, extra []any) {
	dstId, dst := ecs.archetypeFor(key)
	srcRow := src.entities[eid]
	if dst == src {
		for _, c := range extra {
			ecs.write(dst, srcRow, c)
		}
		return
	}

	dstRow := ecs.reserveRow(dst)
	for _, id := range dst.key {
		if col, ok := src.columns[id]; ok {
			reflect.ValueOf(dst.columns[id]).Index(int(dstRow)).Set(reflect.ValueOf(col).Index(int(srcRow)))
		}
	}
	for _, c := range extra {
		ecs.write(dst, dstRow, c)
	}
	ecs.release(src, eid)
	dst.entities[eid] = dstRow
	ecs.entityIndex[eid] = dstId
}

func (ecs *Ecs) write(arch *archetype, r row, component any) {
	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	id := ecs.componentIdOf(v.Type())
	reflect.ValueOf(arch.columns[id]).Index(int(r)).Set(v)
}

func (ecs *Ecs) release(arch *archetype, eid EntityId) {
	r := arch.entities[eid]
	// zero the row so released components do not pin memory
	for id, col := range arch.columns {
		reflect.ValueOf(col).Index(int(r)).Set(reflect.Zero(ecs.idTypes[id]))
	}
	arch.free = append(arch.free, r)
	delete(arch.entities, eid)
}

func (ecs *Ecs) reserveRow(arch *archetype) row {
	if n := len(arch.free); n > 0 {
		r := arch.free[n-1]
		arch.free = arch.free[:n-1]
		return r
	}
	r := row(arch.size)
	arch.size++
	for id, col := range arch.columns {
		arch.columns[id] = reflect.Append(reflect.ValueOf(col), reflect.Zero(ecs.idTypes[id])).Interface()
	}
	return r
}

func (ecs *Ecs) archetypeFor(key archetypeKey) (archetypeId, *archetype) {
	id := hashKey(key)
	if arch, ok := ecs.archetypes[id]; ok {
		return id, arch
	}
	arch := &archetype{
		key:      key,
		entities: make(map[EntityId]row),
		columns:  make(map[componentId]any, len(key)),
	}
	for _, cid := range key {
		arch.columns[cid] = reflect.MakeSlice(reflect.SliceOf(ecs.idTypes[cid]), 0, 8).Interface()
	}
	ecs.archetypes[id] = arch
	return id, arch
}

func (ecs *Ecs) keyOf(components []any) archetypeKey {
	key := make(archetypeKey, 0, len(components))
	for _, c := range components {
		t := reflect.TypeOf(c)
		if t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t == nil || t.Kind() != reflect.Struct {
			panic(fmt.Sprintf("component must be a struct or a pointer to one, got %T", c))
		}
		key = append(key, ecs.componentIdOf(t))
	}
	return normalizeKey(key)
}

func (ecs *Ecs) componentIdOf(t reflect.Type) componentId {
	ecs.typeLock.Lock()
	defer ecs.typeLock.Unlock()
	if id, ok := ecs.typeIds[t]; ok {
		return id
	}
	id := componentId(len(ecs.idTypes))
	ecs.typeIds[t] = id
	ecs.idTypes = append(ecs.idTypes, t)
	return id
}

func normalizeKey(key archetypeKey) archetypeKey {
	slices.Sort(key)
	return slices.Compact(key)
}

func hashKey(key archetypeKey) archetypeId {
	h := fnv.New64a()
	var b [4]byte
	for _, id := range key {
		binary.LittleEndian.PutUint32(b[:], uint32(id))
		h.Write(b[:])
	}
	return archetypeId(h.Sum64())
}
