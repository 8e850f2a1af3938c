// Package output renders command results for terminals, pipes and machines.
package output

// OutputMode selects how a Renderer formats results.
type OutputMode string

// Output modes accepted by --output.
const (
	ModeAuto OutputMode = "auto" // styled text on a TTY, plain text otherwise
	ModeText OutputMode = "text"
	ModeJSON OutputMode = "json"
	ModeYAML OutputMode = "yaml"
)

// Mode converts a flag or config value into an OutputMode.
// Unknown values fall back to ModeAuto.
func Mode(s string) OutputMode {
	switch m := OutputMode(s); m {
	case ModeText, ModeJSON, ModeYAML:
		return m
	default:
		return ModeAuto
	}
}

// Structured reports whether the mode emits machine-readable data.
func (m OutputMode) Structured() bool {
	return m == ModeJSON || m == ModeYAML
}
