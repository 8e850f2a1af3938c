package hybrid

// State is a module's position in the construction sequence.
type State int

const (
	Uninitialized State = iota
	SourceAcquired
	DefinitionResolved
	Bound
)

var stateNames = [...]string{
	Uninitialized:      "uninitialized",
	SourceAcquired:     "source acquired",
	DefinitionResolved: "definition resolved",
	Bound:              "bound",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}
