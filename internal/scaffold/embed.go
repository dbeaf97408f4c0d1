// Package scaffold creates microflame projects and their components from
// templates embedded in the binary.
package scaffold

import (
	"embed"
	iofs "io/fs"
	"text/template"
)

// templateFiles holds the starter project and the component templates.
//
//go:embed all:templates/project templates/components/*.tmpl
var templateFiles embed.FS

const projectRoot = "templates/project"

var components = template.Must(template.ParseFS(templateFiles, "templates/components/*.tmpl"))

// ProjectFiles returns the starter project tree rooted at its top directory.
func ProjectFiles() iofs.FS {
	sub, err := iofs.Sub(templateFiles, projectRoot)
	if err != nil {
		panic(err)
	}
	return sub
}
