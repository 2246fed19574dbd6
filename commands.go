package infinity

// Commands is handed to systems. Entity changes are deferred until the end of
// the current stage; resource and state changes apply immediately.
type Commands struct {
	app *App
}

func (cmd *Commands) ChangeState(newState State) *Commands {
	cmd.app.changeState(newState)
	return cmd
}

func (cmd *Commands) State() State {
	return cmd.app.state
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) AddEntity(components ...any) EntityId {
	eid := cmd.app.ecs.nextEntityId()
	cmd.app.pendingAdditions = append(cmd.app.pendingAdditions, pendingAdd{eid: eid, components: components})
	return eid
}

func (cmd *Commands) AddComponents(eid EntityId, components ...any) {
	cmd.app.pendingCompAdds = append(cmd.app.pendingCompAdds, pendingComps{eid: eid, components: components})
}

// RemoveComponents drops the component types of the given (zero) values.
func (cmd *Commands) RemoveComponents(eid EntityId, components ...any) {
	cmd.app.pendingCompRemoves = append(cmd.app.pendingCompRemoves, pendingComps{eid: eid, components: components})
}

func (cmd *Commands) RemoveEntity(eid EntityId) {
	cmd.app.pendingRemovals = append(cmd.app.pendingRemovals, eid)
}

// Alive reports whether eid exists after the last flush.
func (cmd *Commands) Alive(eid EntityId) bool {
	return cmd.app.ecs.alive(eid)
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}
