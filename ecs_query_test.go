package infinity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_Map(t *testing.T) {
	type Comp1 struct{ a int }
	type Comp2 struct{ b float32 }
	type Comp3 struct{}

	ecs := MakeEcs()
	cmd := &Commands{app: &App{ecs: &ecs}}
	ecs.addEntity(Comp1{a: 1})                                 // comp1 only                       -- shouldn't match
	id2 := ecs.addEntity(Comp1{a: 2}, Comp2{b: 1.37})          // comp1 & comp2                    -- should match
	id3 := ecs.addEntity(Comp1{a: 3}, Comp2{b: 4.20}, Comp3{}) // comp1 & comp2 + something extra  -- should match
	ecs.addEntity(Comp1{a: 4}, Comp3{})                        // comp1 + something extra          -- shouldn't match
	ecs.addEntity(Comp2{b: 3.14})                              // comp2 only                       -- shouldn't match

	got := map[EntityId]Comp1{}
	MakeQuery2[Comp1, Comp2](cmd).Map(func(eid EntityId, c1 *Comp1, c2 *Comp2) bool {
		got[eid] = *c1
		return true
	})

	assert.Equal(t, map[EntityId]Comp1{id2: {a: 2}, id3: {a: 3}}, got)
}

func TestQuery_MapWritesThrough(t *testing.T) {
	type Counter struct{ n int }
	ecs := MakeEcs()
	cmd := &Commands{app: &App{ecs: &ecs}}
	eid := ecs.addEntity(Counter{})

	for range 3 {
		MakeQuery1[Counter](cmd).Map(func(_ EntityId, c *Counter) bool {
			c.n++
			return true
		})
	}
	assert.Equal(t, 3, GetComponent[Counter](cmd, eid).n)
}

func TestQuery_Optional(t *testing.T) {
	type Comp1 struct{ a int }
	type Comp2 struct{ b int }

	ecs := MakeEcs()
	cmd := &Commands{app: &App{ecs: &ecs}}
	ecs.addEntity(Comp1{a: 1})
	ecs.addEntity(Comp1{a: 2}, Comp2{b: 2})

	withB, withoutB := 0, 0
	MakeQuery2[Comp1, Comp2](cmd).Map(func(_ EntityId, c1 *Comp1, c2 *Comp2) bool {
		if c2 == nil {
			withoutB++
		} else {
			withB++
			assert.Equal(t, c1.a, c2.b)
		}
		return true
	}, Comp2{})

	assert.Equal(t, 1, withB)
	assert.Equal(t, 1, withoutB)
}

func TestQuery_StopEarly(t *testing.T) {
	type Comp struct{}
	ecs := MakeEcs()
	cmd := &Commands{app: &App{ecs: &ecs}}
	for range 5 {
		ecs.addEntity(Comp{})
	}

	calls := 0
	MakeQuery1[Comp](cmd).Map(func(EntityId, *Comp) bool {
		calls++
		return false
	})
	assert.Equal(t, 1, calls)
}

func TestQuery4_OptionalColumn(t *testing.T) {
	type Pos struct{ x int }
	type Vel struct{ dx int }
	type Tag struct{}
	type Extra struct{ n int }

	ecs := MakeEcs()
	cmd := &Commands{app: &App{ecs: &ecs}}
	full := ecs.addEntity(Pos{x: 1}, Vel{dx: 2}, Tag{}, Extra{n: 3})
	partial := ecs.addEntity(Pos{x: 5}, Vel{dx: 1}, Tag{})
	ecs.addEntity(Pos{x: 9}, Tag{})

	got := map[EntityId]int{}
	MakeQuery4[Pos, Vel, Tag, Extra](cmd).Map(func(eid EntityId, p *Pos, v *Vel, _ *Tag, e *Extra) bool {
		sum := p.x + v.dx
		if e != nil {
			sum += e.n
		}
		got[eid] = sum
		return true
	}, Extra{})

	assert.Equal(t, map[EntityId]int{full: 6, partial: 6}, got)
}
