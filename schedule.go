package infinity

import (
	"fmt"
	"slices"
)

type State int

type Stage struct {
	Name string
}

// Stages run in this order every frame.
var (
	Prelude    = Stage{Name: "Prelude"}
	PreUpdate  = Stage{Name: "PreUpdate"}
	Update     = Stage{Name: "Update"}
	PostUpdate = Stage{Name: "PostUpdate"}
	PreRender  = Stage{Name: "PreRender"}
	Render     = Stage{Name: "Render"}
	PostRender = Stage{Name: "PostRender"}
	Finale     = Stage{Name: "Finale"}
)

func defaultStages() []Stage {
	return []Stage{Prelude, PreUpdate, Update, PostUpdate, PreRender, Render, PostRender, Finale}
}

// systemFn is any func whose parameters are resource pointers or *Commands.
type systemFn any

type statePhase int

const (
	enter statePhase = iota
	execute
	exit
)

type stateSchedule struct {
	state  State
	phase  statePhase
	always bool
}

func OnEnter(state State) stateSchedule   { return stateSchedule{state: state, phase: enter} }
func OnExecute(state State) stateSchedule { return stateSchedule{state: state, phase: execute} }
func OnExit(state State) stateSchedule    { return stateSchedule{state: state, phase: exit} }
func Always() stateSchedule               { return stateSchedule{always: true} }

// systemSchedule describes where a system runs; build one with System.
type systemSchedule struct {
	system  systemFn
	stage   Stage
	state   stateSchedule
	inState bool
}

// System schedules fn in the Update stage of every frame, in any state.
func System(fn systemFn) systemSchedule {
	return systemSchedule{system: fn, stage: Update, state: Always()}
}

func (s systemSchedule) InStage(stage Stage) systemSchedule {
	s.stage = stage
	return s
}

func (s systemSchedule) InState(state stateSchedule) systemSchedule {
	s.state = state
	s.inState = !state.always
	return s
}

func (s systemSchedule) RunAlways() systemSchedule {
	s.state = Always()
	s.inState = false
	return s
}

type stagePosition struct {
	before bool
	target Stage
}

func BeforeStage(s Stage) stagePosition { return stagePosition{before: true, target: s} }
func AfterStage(s Stage) stagePosition  { return stagePosition{target: s} }

type phaseKey struct {
	stage string
	state State
	phase statePhase
}

// schedule holds every registered system, keyed by stage and state phase.
type schedule struct {
	stages   []Stage
	always   map[string][]systemFn
	stateful map[phaseKey][]systemFn
}

func newSchedule() *schedule {
	return &schedule{
		stages:   defaultStages(),
		always:   make(map[string][]systemFn),
		stateful: make(map[phaseKey][]systemFn),
	}
}

func (s *schedule) hasStage(name string) bool {
	return slices.ContainsFunc(s.stages, func(st Stage) bool { return st.Name == name })
}

func (s *schedule) insertStage(stage Stage, where stagePosition) {
	idx := slices.IndexFunc(s.stages, func(st Stage) bool { return st.Name == where.target.Name })
	if idx < 0 {
		panic(fmt.Sprintf("Stage %v not found", where.target.Name))
	}
	if !where.before {
		idx++
	}
	s.stages = slices.Insert(s.stages, idx, stage)
}

func (s *schedule) add(sys systemSchedule) {
	if !s.hasStage(sys.stage.Name) {
		panic(fmt.Sprintf("Stage %v doesn't exist", sys.stage.Name))
	}
	if !sys.inState {
		s.always[sys.stage.Name] = append(s.always[sys.stage.Name], sys.system)
		return
	}
	k := phaseKey{stage: sys.stage.Name, state: sys.state.state, phase: sys.state.phase}
	s.stateful[k] = append(s.stateful[k], sys.system)
}

// systems returns what runs in stage for the given state phase. Always-systems
// only take part in the execute phase.
func (s *schedule) systems(stage Stage, state State, phase statePhase, stateful bool) []systemFn {
	var res []systemFn
	if phase == execute {
		res = append(res, s.always[stage.Name]...)
	}
	if stateful {
		res = append(res, s.stateful[phaseKey{stage: stage.Name, state: state, phase: phase}]...)
	}
	return res
}
