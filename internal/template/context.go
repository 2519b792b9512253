package template

import "path"

// Context carries the plan-derived values template bodies may reference.
// All fields are optional; bodies guard against empty values themselves,
// so rendering with a zero Context still succeeds.
type Context struct {
	// ProjectName, ProjectVersion, and Description come from the plan's
	// project block.
	ProjectName    string
	ProjectVersion string
	Description    string

	// Path is the project-relative path of the file being rendered.
	// FileName is its final path element, derived when empty.
	Path     string
	FileName string

	// FileType and TemplateName echo the resource declaration that
	// requested the render. TemplateName is the name the plan asked for,
	// which may differ from the template actually used when the registry
	// falls back.
	FileType     string
	TemplateName string

	// Features and Architecture come from the plan's target state;
	// Dependencies from the resource section. The requirements template
	// renders Dependencies one per line.
	Features     []string
	Dependencies []string
	Architecture map[string]string
}

// normalized returns a copy with derived fields populated. FileName falls
// back to the base of Path so bodies can rely on it being set.
func (c Context) normalized() Context {
	if c.FileName == "" && c.Path != "" {
		c.FileName = path.Base(c.Path)
	}
	return c
}
