package component

type AgentTag struct{}

var AgentTagComponent = NewComponent[AgentTag]()

type GoalTag struct{}

var GoalTagComponent = NewComponent[GoalTag]()
