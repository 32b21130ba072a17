package component

// GoalScript names the tengo script that steers an agent's goal.
type GoalScript struct {
	Name   string
	Source []byte
}

var GoalScriptComponent = NewComponent[GoalScript]()
