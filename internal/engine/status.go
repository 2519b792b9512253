package engine

// Status tracks an engine operation through its lifecycle. The engine sits
// at idle between operations; a single operation moves through diffing and,
// for a real apply, applying, before reaching one of the terminal statuses.
// Reports record the terminal status of the operation that produced them.
type Status string

const (
	// StatusIdle means no operation is in flight.
	StatusIdle Status = "idle"

	// StatusDiffing covers the read-only front half of an operation:
	// validation, state capture, and change-set computation.
	StatusDiffing Status = "diffing"

	// StatusDryRun is the terminal status of a dry-run apply: a report
	// was produced and nothing was mutated or registered.
	StatusDryRun Status = "dry_run"

	// StatusApplying means changes are being written to the project tree.
	StatusApplying Status = "applying"

	// StatusApplied is the terminal status of an operation whose entries
	// all completed.
	StatusApplied Status = "applied"

	// StatusFailed is the terminal status of a halted operation.
	StatusFailed Status = "failed"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the status ends an operation.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDryRun, StatusApplied, StatusFailed:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks whether a transition from the current status to
// the target status is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	// Terminal statuses never transition.
	if s.IsTerminal() {
		return false
	}

	allowedTransitions := map[Status][]Status{
		StatusIdle:     {StatusDiffing},
		StatusDiffing:  {StatusDryRun, StatusApplying, StatusFailed},
		StatusApplying: {StatusApplied, StatusFailed},
	}

	allowed, ok := allowedTransitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}
