package plan

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fancybread-com/cursor-plans/internal/fsops"
	"github.com/fancybread-com/cursor-plans/internal/types"
)

// SchemaError reports a malformed plan document. Field is the path of the
// offending field in the document (e.g. "resources.dependencies[2]").
type SchemaError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("plan schema error at %s: %s", e.Field, e.Reason)
}

// dependencyList rejects structured dependency entries at decode time.
// Dependencies are plain strings, never objects; the offending index is
// reported in the schema error.
type dependencyList []string

func (d *dependencyList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return &SchemaError{Field: "resources.dependencies", Reason: "must be a sequence of strings"}
	}
	out := make([]string, 0, len(value.Content))
	for i, item := range value.Content {
		if item.Kind != yaml.ScalarNode {
			return &SchemaError{
				Field:  fmt.Sprintf("resources.dependencies[%d]", i),
				Reason: "must be a plain string, not a structured object",
			}
		}
		out = append(out, item.Value)
	}
	*d = out
	return nil
}

// rawDocument mirrors Document with pointer fields so missing sections are
// distinguishable from empty ones.
type rawDocument struct {
	SchemaVersion *string        `yaml:"schema_version"`
	Project       *Project       `yaml:"project"`
	TargetState   *TargetState   `yaml:"target_state"`
	Resources     *rawResources  `yaml:"resources"`
	Phases        *PhaseMap      `yaml:"phases"`
	Validation    *rawValidation `yaml:"validation"`
	Constraints   []Constraint   `yaml:"constraints"`
}

type rawResources struct {
	Files        *[]FileResource `yaml:"files"`
	Dependencies *dependencyList `yaml:"dependencies"`
}

type rawValidation struct {
	PreApply  *[]string `yaml:"pre_apply"`
	PostApply []string  `yaml:"post_apply"`
}

// Parse decodes and shape-checks a plan document. It fails with a
// PLAN_PARSE_FAILED error for malformed YAML, PLAN_VERSION_UNSUPPORTED for
// an unknown schema_version, and PLAN_SCHEMA_INVALID (wrapping a
// SchemaError naming the offending field) for missing required fields or
// wrongly shaped values. Semantic invariants such as the mandatory testing
// phase are left to the validator pipeline.
func Parse(raw []byte) (*Document, error) {
	var rd rawDocument
	if err := yaml.Unmarshal(raw, &rd); err != nil {
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) {
			return nil, types.WrapError(types.PLAN_SCHEMA_INVALID, "invalid plan document", schemaErr)
		}
		return nil, types.WrapError(types.PLAN_PARSE_FAILED, "plan document is not valid YAML", err)
	}

	doc, err := rd.toDocument()
	if err != nil {
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) && schemaErr.Field == "schema_version" {
			return nil, types.WrapError(types.PLAN_VERSION_UNSUPPORTED, "unsupported plan schema version", err)
		}
		return nil, types.WrapError(types.PLAN_SCHEMA_INVALID, "invalid plan document", err)
	}
	return doc, nil
}

// toDocument validates required fields and assembles the public Document.
func (rd *rawDocument) toDocument() (*Document, error) {
	doc := &Document{SchemaVersion: SchemaVersion1}

	if rd.SchemaVersion != nil {
		doc.SchemaVersion = *rd.SchemaVersion
	}
	if !schemaVersionSupported(doc.SchemaVersion) {
		return nil, &SchemaError{
			Field:  "schema_version",
			Reason: fmt.Sprintf("version %q is not supported (supported: %s)", doc.SchemaVersion, strings.Join(SupportedSchemaVersions, ", ")),
		}
	}

	if rd.Project == nil {
		return nil, &SchemaError{Field: "project", Reason: "required section is missing"}
	}
	if rd.Project.Name == "" {
		return nil, &SchemaError{Field: "project.name", Reason: "required field is missing or empty"}
	}
	if rd.Project.Version == "" {
		return nil, &SchemaError{Field: "project.version", Reason: "required field is missing or empty"}
	}
	doc.Project = *rd.Project

	if rd.TargetState == nil {
		return nil, &SchemaError{Field: "target_state", Reason: "required section is missing"}
	}
	doc.TargetState = *rd.TargetState

	if rd.Resources == nil {
		return nil, &SchemaError{Field: "resources", Reason: "required section is missing"}
	}
	if rd.Resources.Files == nil {
		return nil, &SchemaError{Field: "resources.files", Reason: "required field is missing"}
	}
	if rd.Resources.Dependencies == nil {
		return nil, &SchemaError{Field: "resources.dependencies", Reason: "required field is missing"}
	}
	doc.Resources = Resources{
		Files:        *rd.Resources.Files,
		Dependencies: []string(*rd.Resources.Dependencies),
	}

	for i, f := range doc.Resources.Files {
		if f.Path == "" {
			return nil, &SchemaError{Field: fieldFileResource(i, "path"), Reason: "required field is missing or empty"}
		}
		if err := fsops.ValidateRelPath(f.Path); err != nil {
			return nil, &SchemaError{Field: fieldFileResource(i, "path"), Reason: err.Error()}
		}
		if f.Type == "" {
			return nil, &SchemaError{Field: fieldFileResource(i, "type"), Reason: "required field is missing or empty"}
		}
		if f.Template == "" {
			return nil, &SchemaError{Field: fieldFileResource(i, "template"), Reason: "required field is missing or empty"}
		}
	}

	if rd.Phases == nil {
		return nil, &SchemaError{Field: "phases", Reason: "required section is missing"}
	}
	doc.Phases = *rd.Phases

	if rd.Validation == nil {
		return nil, &SchemaError{Field: "validation", Reason: "required section is missing"}
	}
	if rd.Validation.PreApply == nil {
		return nil, &SchemaError{Field: "validation.pre_apply", Reason: "required field is missing"}
	}
	doc.Validation = ValidationSpec{
		PreApply:  *rd.Validation.PreApply,
		PostApply: rd.Validation.PostApply,
	}

	doc.Constraints = rd.Constraints
	return doc, nil
}

// Serialize encodes the document back to YAML. The output round-trips:
// Parse(Serialize(d)) is semantically equal to d, including phase and file
// declaration order.
func (d *Document) Serialize() ([]byte, error) {
	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, types.WrapError(types.PLAN_PARSE_FAILED, "failed to serialize plan document", err)
	}
	if err := enc.Close(); err != nil {
		return nil, types.WrapError(types.PLAN_PARSE_FAILED, "failed to serialize plan document", err)
	}
	return []byte(buf.String()), nil
}

func schemaVersionSupported(v string) bool {
	for _, s := range SupportedSchemaVersions {
		if v == s {
			return true
		}
	}
	return false
}

func fieldFileResource(i int, field string) string {
	return fmt.Sprintf("resources.files[%d].%s", i, field)
}

// shapeReason flattens a yaml decode error into a single-line reason.
func shapeReason(err error) string {
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
		return strings.Join(typeErr.Errors, "; ")
	}
	return err.Error()
}
