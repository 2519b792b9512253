package validation

// Result aggregates the findings of one pipeline run.
type Result struct {
	// Diagnostics holds every finding in layer order. When Strict is set,
	// warnings have already been promoted to errors here.
	Diagnostics []Diagnostic `json:"diagnostics" yaml:"diagnostics"`

	// LayersPassed and LayersFailed partition the layers by whether any
	// error-severity diagnostic (after promotion) came from them.
	LayersPassed []Layer `json:"layers_passed" yaml:"layers_passed"`
	LayersFailed []Layer `json:"layers_failed" yaml:"layers_failed"`

	// Strict records whether strict mode shaped this result.
	Strict bool `json:"strict" yaml:"strict"`
}

// Passed reports the aggregate verdict: true iff no error-severity
// diagnostic remains. Strict promotion has already happened by the time a
// Result exists, so warnings in a strict run count as errors here.
func (r *Result) Passed() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Errors returns the error-severity diagnostics.
func (r *Result) Errors() []Diagnostic {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity diagnostics.
func (r *Result) Warnings() []Diagnostic {
	return r.filter(SeverityWarning)
}

// Infos returns the info-severity diagnostics.
func (r *Result) Infos() []Diagnostic {
	return r.filter(SeverityInfo)
}

// Counts returns the number of diagnostics per severity.
func (r *Result) Counts() (errors, warnings, infos int) {
	for _, d := range r.Diagnostics {
		switch d.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		case SeverityInfo:
			infos++
		}
	}
	return errors, warnings, infos
}

func (r *Result) filter(sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}
