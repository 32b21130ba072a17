package component

import "github.com/milk9111/gridnav/replan"

// EventPath is the ecs.Event type carrying a replan.Event for an agent.
const EventPath = "path"

// NavAgent owns the replan trigger for an agent and the subscription that
// routes its events into the world queue.
type NavAgent struct {
	Trigger     *replan.Trigger
	Markers     bool
	Unsubscribe func()
}

var NavAgentComponent = NewComponent[NavAgent]()
