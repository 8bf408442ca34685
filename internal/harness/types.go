package harness

// TraceEvent is one journal row as read back from the store, with
// operations named by kind.
type TraceEvent struct {
	Seq    int64    `json:"seq"`
	Kind   string   `json:"kind"`
	Op     string   `json:"op"`
	Index  int      `json:"index"`
	NewOps []string `json:"new_ops"`
	Unsafe bool     `json:"unsafe"`
}

// Diagnostic is a verification failure, with the operation named by its
// scenario id.
type Diagnostic struct {
	Op      string `json:"op"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every step and assertion held.
	Pass bool `json:"pass"`

	// Session is the journal session the run recorded under.
	Session string `json:"session"`

	// Order is the final block order by op id.
	Order []string `json:"order"`

	// Diagnostics are the verification failures of the final program.
	Diagnostics []Diagnostic `json:"diagnostics"`

	// Trace is the recorded rewrite journal.
	Trace []TraceEvent `json:"trace"`

	// Errors holds step and assertion failures.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:        true,
		Order:       []string{},
		Diagnostics: []Diagnostic{},
		Trace:       []TraceEvent{},
		Errors:      []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
