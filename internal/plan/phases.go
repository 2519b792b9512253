package plan

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// TestingPhase is the phase name every plan must declare. The validator
// pipeline enforces its presence; the parser does not.
const TestingPhase = "testing"

// Phase is one development phase. Priority drives execution order;
// priority ties break on declaration order within the document.
type Phase struct {
	// Name is the phase's key in the plan's phases mapping.
	Name string `yaml:"-" json:"name"`
	// Priority orders execution, ascending. Must be positive.
	Priority int `yaml:"priority" json:"priority"`
	// Description is optional free text.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Dependencies names phases that must execute before this one.
	Dependencies []string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	// Tasks are ordered opaque identifiers. Unimplemented task ids are
	// accepted and ignored, never rejected.
	Tasks []string `yaml:"tasks" json:"tasks"`

	declIndex int
}

// PhaseMap is an insertion-ordered phase collection. Plan documents declare
// phases as a YAML mapping, and declaration order is significant (priority
// ties break on it), so the mapping decodes through yaml.Node instead of a
// Go map.
type PhaseMap struct {
	phases []*Phase
	byName map[string]*Phase
}

// NewPhaseMap builds a PhaseMap from phases in the given declaration order.
func NewPhaseMap(phases ...*Phase) PhaseMap {
	var pm PhaseMap
	for _, ph := range phases {
		pm.Set(ph)
	}
	return pm
}

// Set appends a phase, or replaces one with the same name in place.
func (p *PhaseMap) Set(ph *Phase) {
	if p.byName == nil {
		p.byName = make(map[string]*Phase)
	}
	if existing, ok := p.byName[ph.Name]; ok {
		ph.declIndex = existing.declIndex
		p.phases[existing.declIndex] = ph
		p.byName[ph.Name] = ph
		return
	}
	ph.declIndex = len(p.phases)
	p.phases = append(p.phases, ph)
	p.byName[ph.Name] = ph
}

// Get returns the named phase.
func (p PhaseMap) Get(name string) (*Phase, bool) {
	ph, ok := p.byName[name]
	return ph, ok
}

// Has reports whether the named phase is declared.
func (p PhaseMap) Has(name string) bool {
	_, ok := p.byName[name]
	return ok
}

// All returns the phases in declaration order.
func (p PhaseMap) All() []*Phase {
	return p.phases
}

// Names returns the phase names in declaration order.
func (p PhaseMap) Names() []string {
	names := make([]string, len(p.phases))
	for i, ph := range p.phases {
		names[i] = ph.Name
	}
	return names
}

// Len returns the number of declared phases.
func (p PhaseMap) Len() int {
	return len(p.phases)
}

// UnmarshalYAML decodes a YAML mapping into an ordered PhaseMap,
// preserving document order and rejecting duplicate phase names.
func (p *PhaseMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return &SchemaError{Field: "phases", Reason: "must be a mapping of phase name to phase definition"}
	}

	p.phases = nil
	p.byName = make(map[string]*Phase)

	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode, valNode := value.Content[i], value.Content[i+1]

		var name string
		if err := keyNode.Decode(&name); err != nil {
			return &SchemaError{Field: "phases", Reason: "phase name must be a string"}
		}
		if _, dup := p.byName[name]; dup {
			return &SchemaError{Field: "phases." + name, Reason: "duplicate phase name"}
		}

		var rp rawPhase
		if err := valNode.Decode(&rp); err != nil {
			return &SchemaError{Field: "phases." + name, Reason: shapeReason(err)}
		}
		if rp.Priority == nil {
			return &SchemaError{Field: "phases." + name + ".priority", Reason: "required field is missing"}
		}
		if rp.Tasks == nil {
			return &SchemaError{Field: "phases." + name + ".tasks", Reason: "required field is missing"}
		}

		ph := &Phase{
			Name:         name,
			Priority:     *rp.Priority,
			Description:  rp.Description,
			Dependencies: rp.Dependencies,
			Tasks:        *rp.Tasks,
			declIndex:    len(p.phases),
		}
		p.phases = append(p.phases, ph)
		p.byName[name] = ph
	}
	return nil
}

// rawPhase distinguishes missing required phase fields from zero values.
type rawPhase struct {
	Priority     *int      `yaml:"priority"`
	Description  string    `yaml:"description"`
	Dependencies []string  `yaml:"dependencies"`
	Tasks        *[]string `yaml:"tasks"`
}

// MarshalYAML encodes the phases as a mapping in declaration order.
func (p PhaseMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, ph := range p.phases {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: ph.Name}
		valNode := &yaml.Node{}
		if err := valNode.Encode(ph); err != nil {
			return nil, fmt.Errorf("encode phase %s: %w", ph.Name, err)
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}

// MarshalJSON encodes the phases as an ordered array of named objects, since
// a JSON object would lose declaration order.
func (p PhaseMap) MarshalJSON() ([]byte, error) {
	out := make([]*Phase, len(p.phases))
	copy(out, p.phases)
	return json.Marshal(out)
}
