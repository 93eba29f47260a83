package media

import "fmt"

// Action is what the executor should do with a file.
type Action string

const (
	ActionMove Action = "move"
	ActionSkip Action = "skip"
)

// PlanAction is one line of a move plan. Target is relative to the library
// root and is set only for moves.
type PlanAction struct {
	File   string `json:"file"`
	Action Action `json:"action"`
	Target string `json:"target,omitempty"`
}

// Move builds a move action.
func Move(file, target string) PlanAction {
	return PlanAction{File: file, Action: ActionMove, Target: target}
}

// Skip builds a skip action.
func Skip(file string) PlanAction {
	return PlanAction{File: file, Action: ActionSkip}
}

// Validate enforces that moves carry a target and skips do not.
func (a PlanAction) Validate() error {
	switch a.Action {
	case ActionMove:
		if a.Target == "" {
			return fmt.Errorf("move of %q has no target", a.File)
		}
	case ActionSkip:
		if a.Target != "" {
			return fmt.Errorf("skip of %q carries target %q", a.File, a.Target)
		}
	default:
		return fmt.Errorf("unknown action %q for %q", a.Action, a.File)
	}
	return nil
}
