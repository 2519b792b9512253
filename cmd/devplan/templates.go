package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/fancybread-com/cursor-plans/internal/template"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the known file templates",
	Long: `List every template name a plan may reference. Implemented templates
render real content; planned templates pass validation but render fallback
content with a warning at apply time.`,
	RunE: runTemplates,
}

// templateInfo is one row of the templates listing.
type templateInfo struct {
	Name   string `json:"name" yaml:"name"`
	Status string `json:"status" yaml:"status"`
}

func runTemplates(cmd *cobra.Command, args []string) error {
	registry := template.NewRegistry()

	infos := make([]templateInfo, 0)
	for _, name := range registry.Names() {
		infos = append(infos, templateInfo{Name: name, Status: "implemented"})
	}
	for _, name := range registry.Planned() {
		infos = append(infos, templateInfo{Name: name, Status: "fallback"})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{info.Name, info.Status})
	}
	return formatterFor(cmd).PrintTable([]string{"template", "status"}, rows)
}
