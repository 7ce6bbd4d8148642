package setupflow

// Step is the screen of the setup wizard that is currently active.
type Step int

const (
	StepPlayerSelection Step = iota
	StepPackSelection
	StepCountSelection
	StepModeSelection
	StepManualSelection
	StepPlaying
)

var stepNames = map[Step]string{
	StepPlayerSelection: "player_selection",
	StepPackSelection:   "pack_selection",
	StepCountSelection:  "count_selection",
	StepModeSelection:   "mode_selection",
	StepManualSelection: "manual_selection",
	StepPlaying:         "playing",
}

func (s Step) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return "unknown"
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// backEdges mirrors every forward edge. PlayerSelection has no entry: going
// back from it cancels the flow. Playing is terminal.
var backEdges = map[Step]Step{
	StepPackSelection:   StepPlayerSelection,
	StepCountSelection:  StepPackSelection,
	StepModeSelection:   StepCountSelection,
	StepManualSelection: StepModeSelection,
}

// Status reports whether a flow is still being set up or has ended.
type Status string

const (
	StatusActive  Status = "active"
	StatusAborted Status = "aborted"
	StatusStarted Status = "started"
)

// Transition describes a committed change of step or status. Seq counts
// the flow's transitions from 1 and is assigned under the controller lock,
// so observers running concurrently can discard anything older than what
// they already delivered.
type Transition struct {
	FlowID    string
	Seq       uint64
	From      Step
	To        Step
	Status    Status
	SessionID string
}
