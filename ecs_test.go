package infinity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEcs_MakeEcs(t *testing.T) {
	ecs := MakeEcs()

	if len(ecs.archetypes) != 0 {
		t.Errorf("Expected archetypes to be empty, got %v", ecs.archetypes)
	}
	if len(ecs.entityIndex) != 0 {
		t.Errorf("Expected entityIndex to be empty, got %v", ecs.entityIndex)
	}
	if ecs.nextId != 0 {
		t.Errorf("Expected nextId to be 0, got %v", ecs.nextId)
	}
}

func TestEcs_AddEntity(t *testing.T) {
	ecs := MakeEcs()

	entityId := ecs.addEntity()
	if _, ok := ecs.entityIndex[entityId]; !ok {
		t.Errorf("Expected entityId %v to be in entityIndex", entityId)
	}

	type TestComponent struct {
		x string
	}
	entityId2 := ecs.addEntity(TestComponent{x: "test"})
	if _, ok := ecs.entityIndex[entityId2]; !ok {
		t.Errorf("Expected entityId %v to be in entityIndex", entityId2)
	}

	if ecs.entityIndex[entityId] == ecs.entityIndex[entityId2] {
		t.Errorf("Entities with different components ended up in the same Archetype")
	}
}

func TestEcs_SameComponentsShareArchetype(t *testing.T) {
	type A struct{ v int }
	type B struct{ v int }
	ecs := MakeEcs()

	id1 := ecs.addEntity(A{1}, B{1})
	id2 := ecs.addEntity(B{2}, A{2})
	id3 := ecs.addEntity(&A{3}, B{3})

	assert.Equal(t, ecs.entityIndex[id1], ecs.entityIndex[id2])
	assert.Equal(t, ecs.entityIndex[id1], ecs.entityIndex[id3])
	assert.Len(t, ecs.archetypes, 1)
}

func TestEcs_AddComponents(t *testing.T) {
	type TestComponent0 struct{ a int }
	type TestComponent1 struct{ x string }
	type TestComponent2 struct{ y string }

	ecs := MakeEcs()
	cmd := &Commands{app: &App{ecs: &ecs}}

	entityId := ecs.addEntity(TestComponent0{a: 1337})
	before := ecs.entityIndex[entityId]

	ecs.addComponents(entityId, TestComponent1{x: "test"}, &TestComponent2{y: "hello"})

	assert.NotEqual(t, before, ecs.entityIndex[entityId])
	require.NotNil(t, GetComponent[TestComponent0](cmd, entityId))
	assert.Equal(t, 1337, GetComponent[TestComponent0](cmd, entityId).a)
	assert.Equal(t, "test", GetComponent[TestComponent1](cmd, entityId).x)
	assert.Equal(t, "hello", GetComponent[TestComponent2](cmd, entityId).y)

	// replacing an existing component keeps the archetype
	after := ecs.entityIndex[entityId]
	ecs.addComponents(entityId, TestComponent1{x: "again"})
	assert.Equal(t, after, ecs.entityIndex[entityId])
	assert.Equal(t, "again", GetComponent[TestComponent1](cmd, entityId).x)
}

func TestEcs_RemoveComponents(t *testing.T) {
	type A struct{ v int }
	type B struct{ v int }
	ecs := MakeEcs()
	cmd := &Commands{app: &App{ecs: &ecs}}

	eid := ecs.addEntity(A{1}, B{2})
	ecs.removeComponents(eid, B{})

	assert.Nil(t, GetComponent[B](cmd, eid))
	require.NotNil(t, GetComponent[A](cmd, eid))
	assert.Equal(t, 1, GetComponent[A](cmd, eid).v)
}

func TestEcs_RemoveEntityReusesRow(t *testing.T) {
	type A struct{ v int }
	ecs := MakeEcs()
	cmd := &Commands{app: &App{ecs: &ecs}}

	id1 := ecs.addEntity(A{1})
	id2 := ecs.addEntity(A{2})
	ecs.removeEntity(id1)
	assert.False(t, ecs.alive(id1))
	assert.True(t, ecs.alive(id2))

	id3 := ecs.addEntity(A{3})
	arch := ecs.archetypes[ecs.entityIndex[id3]]
	assert.Equal(t, 2, arch.size, "freed row is reused")
	assert.Equal(t, 2, GetComponent[A](cmd, id2).v)
	assert.Equal(t, 3, GetComponent[A](cmd, id3).v)

	// removing twice is a no-op
	ecs.removeEntity(id1)
	assert.True(t, ecs.alive(id3))
}

func TestEcs_NonStructComponentPanics(t *testing.T) {
	ecs := MakeEcs()
	assert.Panics(t, func() { ecs.addEntity(42) })
}
