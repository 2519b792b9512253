// Package rules supplies the default project-rules collaborators: a
// file-based rule provider and the built-in team standards hook. Both plug
// into the validation pipeline; neither is required for it to run.
package rules

import (
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fancybread-com/cursor-plans/internal/fsops"
	"github.com/fancybread-com/cursor-plans/internal/validation"
)

// RulesFileName is the project rule set file, looked up at the project
// root.
const RulesFileName = ".devplan-rules.yaml"

// FileProvider loads the project rule set from RulesFileName under the
// project root. A missing file means the project simply has no rules:
// RulesFor returns (nil, nil) and the context layer reports absence as
// info. Read or parse failures surface as errors, which the context layer
// downgrades to a warning.
type FileProvider struct {
	fs fsops.FS
}

// NewFileProvider builds a FileProvider reading through fs. A nil fs means
// the real filesystem.
func NewFileProvider(fs fsops.FS) *FileProvider {
	if fs == nil {
		fs = fsops.NewOSFS()
	}
	return &FileProvider{fs: fs}
}

// RulesFor implements validation.RuleProvider.
func (p *FileProvider) RulesFor(projectRoot string) (*validation.RuleSet, error) {
	path := filepath.Join(projectRoot, RulesFileName)

	data, err := p.fs.ReadFile(path)
	if err != nil {
		if fsops.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", RulesFileName, err)
	}

	var rs validation.RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", RulesFileName, err)
	}
	return &rs, nil
}
