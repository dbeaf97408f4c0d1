package scaffold

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"microflame/internal/errors"
	"microflame/internal/fs"
)

// Kind is a component type that can be generated.
type Kind string

const (
	KindController Kind = "controller"
	KindModel      Kind = "model"
	KindView       Kind = "view"
	KindRoute      Kind = "route"
)

// Controller modes.
const (
	ModeAPI   = "api"
	ModeViews = "views"
)

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Names are the forms of a component name available to templates.
type Names struct {
	Name   string // as given, used for file names
	Pascal string // UserProfile
	Camel  string // userProfile
}

// NewNames derives the template names from a component name such as
// "user-profile" or "user_profile".
func NewNames(name string) Names {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	var b strings.Builder
	for _, w := range words {
		r := []rune(w)
		b.WriteRune(unicode.ToUpper(r[0]))
		b.WriteString(string(r[1:]))
	}
	pascal := b.String()
	camel := ""
	if pascal != "" {
		r := []rune(pascal)
		camel = string(unicode.ToLower(r[0])) + string(r[1:])
	}
	return Names{Name: name, Pascal: pascal, Camel: camel}
}

// Target returns the template name and the project-relative output path
// for a component.
func Target(kind Kind, name, mode string) (tmpl, rel string, err error) {
	switch kind {
	case KindController:
		switch mode {
		case "", ModeAPI:
			return "controller.api.js.tmpl", filepath.Join("controllers", "api", "v1", name+".controller.js"), nil
		case ModeViews:
			return "controller.views.js.tmpl", filepath.Join("controllers", "views", name+".controller.js"), nil
		default:
			return "", "", errors.New(errors.EUsage, fmt.Sprintf("unknown controller mode %q: use %s or %s", mode, ModeAPI, ModeViews))
		}
	case KindModel:
		return "model.js.tmpl", filepath.Join("models", name+".model.js"), nil
	case KindView:
		return "view.ejs.tmpl", filepath.Join("views", name+".ejs"), nil
	case KindRoute:
		return "route.js.tmpl", filepath.Join("routes", "api", "v1", name+".routes.js"), nil
	default:
		return "", "", errors.New(errors.EUsage,
			fmt.Sprintf("unknown type %q: use controller, model, view or route", kind))
	}
}

// Generate renders a component into the project at dir and returns its
// project-relative path. Existing files are never overwritten.
func Generate(fsys fs.FS, dir string, kind Kind, name, mode string) (string, error) {
	if !namePattern.MatchString(name) {
		return "", errors.New(errors.EUsage,
			fmt.Sprintf("invalid name %q: use letters, digits, '-' and '_', starting with a letter", name))
	}

	tmpl, rel, err := Target(kind, name, mode)
	if err != nil {
		return "", err
	}

	target := filepath.Join(dir, rel)
	if _, err := fsys.Stat(target); err == nil {
		return "", errors.New(errors.EFileExists, fmt.Sprintf("%s already exists", rel))
	} else if !stderrors.Is(err, os.ErrNotExist) {
		return "", errors.WrapPath(errors.EInternal, rel, err)
	}

	var buf bytes.Buffer
	if err := components.ExecuteTemplate(&buf, tmpl, NewNames(name)); err != nil {
		return "", errors.Wrap(errors.EInternal, "cannot render "+tmpl, err)
	}

	if err := fsys.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", errors.WrapPath(errors.EWriteFailed, rel, err)
	}
	if err := fs.WriteFileAtomic(fsys, target, buf.Bytes(), 0644); err != nil {
		return "", errors.WrapPath(errors.EWriteFailed, rel, err)
	}
	return rel, nil
}
