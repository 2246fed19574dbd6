package infinity

import (
	"fmt"
	"reflect"
	"runtime"
)

// Module bundles resources and systems. Install runs once when the app is built.
type Module interface {
	Install(app *App, cmd *Commands)
}

type App struct {
	stateful      bool
	initialState  State
	finalState    State
	state         State
	nextState     State
	transitioning bool
	started       bool
	done          bool

	modules   []Module
	built     bool
	sched     *schedule
	resources map[reflect.Type]any
	ecs       *Ecs

	pendingAdditions   []pendingAdd
	pendingRemovals    []EntityId
	pendingCompAdds    []pendingComps
	pendingCompRemoves []pendingComps
}

type pendingAdd struct {
	eid        EntityId
	components []any
}

type pendingComps struct {
	eid        EntityId
	components []any
}

func NewApp() *App {
	ecs := MakeEcs()
	return &App{
		sched:     newSchedule(),
		resources: make(map[reflect.Type]any),
		ecs:       &ecs,
	}
}

// UseStates makes the app stateful. Run returns once finalState is reached.
func (app *App) UseStates(initialState, finalState State) *App {
	app.stateful = true
	app.initialState = initialState
	app.finalState = finalState
	app.state = initialState
	return app
}

func (app *App) UseModules(modules ...Module) *App {
	app.modules = append(app.modules, modules...)
	return app
}

func (app *App) UseSystem(system systemSchedule) *App {
	if system.inState && !app.stateful {
		panic("Trying to use a stateful system in a stateless app.")
	}
	app.sched.add(system)
	return app
}

func (app *App) UseStage(stage Stage, where stagePosition) *App {
	app.sched.insertStage(stage, where)
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

// State is the current app state.
func (app *App) State() State {
	return app.state
}

// Done reports whether a stateful app has reached its final state.
func (app *App) Done() bool {
	return app.done
}

func (app *App) build() {
	if app.built {
		return
	}
	app.built = true
	cmd := app.Commands()
	for _, m := range app.modules {
		m.Install(app, cmd)
	}
	app.FlushCommands()
}

// Tick runs one frame: every stage in order, flushing entity commands after
// each stage, then a pending state change. The first Tick builds the app and
// enters the initial state.
func (app *App) Tick() {
	if app.done {
		return
	}
	app.build()
	if !app.started {
		app.started = true
		if app.stateful {
			app.callSystems(app.state, enter)
		}
	}

	app.callSystems(app.state, execute)

	if !app.stateful {
		return
	}
	if app.transitioning {
		app.transitioning = false
		app.callSystems(app.state, exit)
		app.state = app.nextState
		app.callSystems(app.state, enter)
	}
	if app.state == app.finalState {
		app.callSystems(app.state, exit)
		app.done = true
	}
}

// Run ticks until the final state is reached. A stateless app runs forever.
func (app *App) Run() {
	for !app.done {
		app.Tick()
	}
}

func (app *App) callSystems(state State, phase statePhase) {
	for _, stage := range app.sched.stages {
		for _, sys := range app.sched.systems(stage, state, phase, app.stateful) {
			app.callSystem(sys)
		}
		app.FlushCommands()
	}
}

func (app *App) changeState(newState State) {
	app.nextState = newState
	app.transitioning = true
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		t := reflect.TypeOf(resource)
		if t.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", t))
		}
		if _, ok := app.resources[t.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", t))
		}
		app.resources[t.Elem()] = resource
	}
	return app
}

// Resource returns the registered *T, or nil.
func Resource[T any](app *App) *T {
	r, ok := app.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return r.(*T)
}

var typeOfCommands = reflect.TypeFor[Commands]()

// callSystem resolves every parameter of system from the resources (or a
// fresh *Commands) and calls it. An unknown parameter type is a programming
// error and panics.
func (app *App) callSystem(system systemFn) {
	fnType := reflect.TypeOf(system)
	fnValue := reflect.ValueOf(system)

	args := make([]reflect.Value, fnType.NumIn())
	for i := range args {
		argType := fnType.In(i)
		if argType.Kind() == reflect.Pointer && argType.Elem() == typeOfCommands {
			args[i] = reflect.ValueOf(app.Commands())
			continue
		}
		if argType.Kind() == reflect.Pointer {
			if resource, ok := app.resources[argType.Elem()]; ok {
				args[i] = reflect.ValueOf(resource)
				continue
			}
		}
		panic(fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
			runtime.FuncForPC(fnValue.Pointer()).Name(), fnType, argType))
	}
	fnValue.Call(args)
}

// FlushCommands applies deferred entity commands: removals, then additions,
// then component changes.
func (app *App) FlushCommands() {
	var removed map[EntityId]struct{}
	for _, eid := range app.pendingRemovals {
		if !app.ecs.alive(eid) {
			// spawned and despawned before the same flush
			if removed == nil {
				removed = make(map[EntityId]struct{})
			}
			removed[eid] = struct{}{}
			continue
		}
		app.ecs.removeEntity(eid)
	}
	app.pendingRemovals = app.pendingRemovals[:0]

	for _, add := range app.pendingAdditions {
		if _, ok := removed[add.eid]; ok {
			continue
		}
		app.ecs.insertEntity(add.eid, add.components...)
	}
	app.pendingAdditions = app.pendingAdditions[:0]

	for _, add := range app.pendingCompAdds {
		app.ecs.addComponents(add.eid, add.components...)
	}
	app.pendingCompAdds = app.pendingCompAdds[:0]

	for _, rm := range app.pendingCompRemoves {
		app.ecs.removeComponents(rm.eid, rm.components...)
	}
	app.pendingCompRemoves = app.pendingCompRemoves[:0]
}
