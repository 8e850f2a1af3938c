package output

// ModuleInfo describes a loaded module for inspect output.
type ModuleInfo struct {
	Name      string   `json:"name" yaml:"name"`
	File      string   `json:"file" yaml:"file"`
	Signature string   `json:"signature" yaml:"signature"`
	Params    []string `json:"params" yaml:"params"`
	Required  int      `json:"required" yaml:"required"`
	Globals   []string `json:"globals" yaml:"globals"`
	UnitID    string   `json:"unit_id" yaml:"unit_id"`
	State     string   `json:"state" yaml:"state"`
}

// CheckResult is the outcome of checking one file.
type CheckResult struct {
	File  string `json:"file" yaml:"file"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	State string `json:"state" yaml:"state"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// CheckOutput is the result of the check command.
type CheckOutput struct {
	Results []CheckResult `json:"results" yaml:"results"`
	Passed  int           `json:"passed" yaml:"passed"`
	Failed  int           `json:"failed" yaml:"failed"`
}

// RunOutput is the result of the run command.
type RunOutput struct {
	Name   string `json:"name" yaml:"name"`
	Path   string `json:"path" yaml:"path"` // "native" or "symbolic"
	Result any    `json:"result" yaml:"result"`
}
