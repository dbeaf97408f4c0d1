// Package registrar adds an environment variable to every env file of a
// project and declares it in the configuration schema file, keeping both
// consistent for the project's startup validation.
//
// Registration is idempotent: keys already present in an env file are left
// untouched and existing schema entries are never overwritten. Every file is
// replaced atomically, so re-running after an interruption is the recovery
// path.
package registrar

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"microflame/internal/config"
	"microflame/internal/envfile"
	"microflame/internal/errors"
	"microflame/internal/fs"
	"microflame/internal/schema"
)

// Spec describes the variable to register.
type Spec struct {
	Key      string
	Value    string // written to env files that lack the key
	Label    string // schema only
	Required bool
	Path     string // logical config name; LogicalName(Key) when empty
}

// Status is the outcome for one file.
type Status string

const (
	StatusUpdated   Status = "updated"
	StatusUnchanged Status = "unchanged"
)

// FileChange records what happened to one file.
type FileChange struct {
	Path   string // relative to the project directory
	Status Status
}

// Conflict is a schema disagreement that was reported instead of written.
type Conflict struct {
	Path string // logical config name
	Msg  string
}

// Result summarizes a registration.
type Result struct {
	Key        string
	ConfigPath string
	EnvFiles   []FileChange
	Schema     FileChange
	Conflicts  []Conflict
}

// Registrar registers environment variables in one project.
type Registrar struct {
	cfg config.Config
	fs  fs.FS
	log *logrus.Entry
}

// New creates a Registrar for the project described by cfg.
func New(cfg config.Config, fsys fs.FS, log *logrus.Entry) *Registrar {
	return &Registrar{cfg: cfg, fs: fsys, log: log.WithField("component", "registrar")}
}

type envTarget struct {
	path    string
	file    *envfile.File
	changed bool
}

// Register ensures spec.Key is present in every env file and declared in
// the schema file. Nothing is written unless every file parses.
func (r *Registrar) Register(spec Spec) (Result, error) {
	if !ValidKey(spec.Key) {
		return Result{}, errors.New(errors.EInvalidKey,
			fmt.Sprintf("invalid key %q: use letters, digits and underscores, not starting with a digit", spec.Key))
	}

	configPath := spec.Path
	if configPath == "" {
		configPath = LogicalName(spec.Key)
	}
	if !schema.ValidPath(configPath) {
		return Result{}, errors.New(errors.EInvalidKey,
			fmt.Sprintf("invalid config path %q for key %s", configPath, spec.Key))
	}

	if _, err := envfile.FormatValue(spec.Value); err != nil {
		return Result{}, errors.Wrap(errors.EInvalidValue,
			fmt.Sprintf("value for %s has no quoting that every dotenv loader reads back unchanged", spec.Key), err)
	}

	log := r.log.WithFields(logrus.Fields{"key": spec.Key, "config_path": configPath})

	envPaths, err := r.ResolveEnvFiles()
	if err != nil {
		return Result{}, err
	}

	schemaPath := r.cfg.SchemaPath()
	doc, err := r.loadSchema(schemaPath)
	if err != nil {
		return Result{}, err
	}

	targets := make([]*envTarget, 0, len(envPaths))
	for _, p := range envPaths {
		f, err := r.loadEnvFile(p)
		if err != nil {
			return Result{}, err
		}
		targets = append(targets, &envTarget{path: p, file: f})
	}

	result := Result{Key: spec.Key, ConfigPath: configPath}

	// The schema entry is settled first so that a key is never appended to
	// an env file without being declared.
	schemaChanged, conflicts, err := r.declare(doc, spec, configPath)
	if err != nil {
		return Result{}, err
	}
	result.Conflicts = conflicts
	for _, c := range conflicts {
		log.WithField("conflict", c.Msg).Warn("schema entry not written")
	}

	for _, t := range targets {
		if t.file.Has(spec.Key) {
			log.WithField("file", r.rel(t.path)).Debug("key already present, leaving file unchanged")
			continue
		}
		if err := t.file.Append(spec.Key, spec.Value); err != nil {
			return Result{}, errors.Wrap(errors.EInvalidValue, err.Error(), err)
		}
		t.changed = true
	}

	for _, t := range targets {
		change := FileChange{Path: r.rel(t.path), Status: StatusUnchanged}
		if t.changed {
			if err := fs.ReplaceFile(r.fs, t.path, t.file.Bytes()); err != nil {
				return result, errors.WrapPath(errors.EWriteFailed, r.rel(t.path), err)
			}
			change.Status = StatusUpdated
			log.WithField("file", change.Path).Debug("appended variable")
		}
		result.EnvFiles = append(result.EnvFiles, change)
	}

	result.Schema = FileChange{Path: r.rel(schemaPath), Status: StatusUnchanged}
	if schemaChanged {
		data, err := doc.Bytes()
		if err != nil {
			return result, errors.Wrap(errors.EInternal, "cannot serialize schema", err)
		}
		if err := fs.ReplaceFile(r.fs, schemaPath, data); err != nil {
			return result, errors.WrapPath(errors.EWriteFailed, r.rel(schemaPath), err)
		}
		result.Schema.Status = StatusUpdated
		log.WithField("file", result.Schema.Path).Debug("declared variable in schema")
	}

	return result, nil
}

// declare adds the schema entry for spec unless the variable is already
// declared. Disagreements with an existing entry for spec.Key are returned
// as conflicts; a config path taken by something else is an error.
func (r *Registrar) declare(doc *schema.Document, spec Spec, configPath string) (bool, []Conflict, error) {
	if existing, ok := doc.FindByEnv(spec.Key); ok {
		var conflicts []Conflict
		if spec.Path != "" && existing.Path != spec.Path {
			conflicts = append(conflicts, Conflict{
				Path: existing.Path,
				Msg:  fmt.Sprintf("%s is already declared at %q, not %q", spec.Key, existing.Path, spec.Path),
			})
		}
		if existing.Required != spec.Required {
			conflicts = append(conflicts, Conflict{
				Path: existing.Path,
				Msg:  fmt.Sprintf("%s: existing entry has required=%t, keeping it (requested %t)", existing.Path, existing.Required, spec.Required),
			})
		}
		if existing.Label != spec.Label {
			conflicts = append(conflicts, Conflict{
				Path: existing.Path,
				Msg:  fmt.Sprintf("%s: existing entry has label %q, keeping it (requested %q)", existing.Path, existing.Label, spec.Label),
			})
		}
		return false, conflicts, nil
	}

	entry := schema.Entry{
		Path:     configPath,
		Env:      spec.Key,
		Required: spec.Required,
		Label:    spec.Label,
	}
	if !spec.Required {
		def := spec.Value
		entry.Default = &def
	}

	if err := doc.Insert(entry); err != nil {
		msg := fmt.Sprintf("cannot declare %s at %q: %v", spec.Key, configPath, err)
		if other, ok := doc.Lookup(configPath); ok {
			msg = fmt.Sprintf("cannot declare %s: %q already declares %s", spec.Key, configPath, other.Env)
		}
		if stderrors.Is(err, schema.ErrPathOccupied) || stderrors.Is(err, schema.ErrPathBlocked) {
			return false, nil, errors.New(errors.EInvalidKey, msg+"; choose another name with --path")
		}
		return false, nil, errors.Wrap(errors.EInternal, msg, err)
	}
	return true, nil, nil
}

// ResolveEnvFiles returns the env files of the project: the configured list,
// or every regular ".env" / ".env.<name>" file in the project directory.
func (r *Registrar) ResolveEnvFiles() ([]string, error) {
	if paths := r.cfg.EnvFilePaths(); paths != nil {
		for _, p := range paths {
			if _, err := r.fs.Stat(p); err != nil {
				if stderrors.Is(err, os.ErrNotExist) {
					return nil, errors.New(errors.EFileNotFound, fmt.Sprintf("env file not found: %s", r.rel(p)))
				}
				return nil, errors.WrapPath(errors.EInternal, r.rel(p), err)
			}
		}
		return paths, nil
	}

	entries, err := r.fs.ReadDir(r.cfg.ProjectDir)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.New(errors.EFileNotFound, fmt.Sprintf("project directory not found: %s", r.cfg.ProjectDir))
		}
		return nil, errors.Wrap(errors.EInternal, "cannot list project directory", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !IsEnvFileName(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(r.cfg.ProjectDir, e.Name()))
	}

	if len(paths) == 0 {
		return nil, errors.New(errors.EFileNotFound,
			fmt.Sprintf("no .env files found in %s: run this command from a project root", r.cfg.ProjectDir))
	}
	return paths, nil
}

// IsEnvFileName reports whether name follows the env file naming convention.
func IsEnvFileName(name string) bool {
	return name == ".env" || (strings.HasPrefix(name, ".env.") && len(name) > len(".env."))
}

func (r *Registrar) loadSchema(path string) (*schema.Document, error) {
	data, err := r.fs.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.New(errors.EFileNotFound,
				fmt.Sprintf("schema file not found: %s: run this command from a project root", r.rel(path)))
		}
		return nil, errors.WrapPath(errors.EInternal, r.rel(path), err)
	}

	doc, err := schema.Parse(r.rel(path), data)
	if err != nil {
		return nil, errors.Wrap(errors.EParse, err.Error(), err)
	}
	return doc, nil
}

func (r *Registrar) loadEnvFile(path string) (*envfile.File, error) {
	data, err := r.fs.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.New(errors.EFileNotFound, fmt.Sprintf("env file not found: %s", r.rel(path)))
		}
		return nil, errors.WrapPath(errors.EInternal, r.rel(path), err)
	}

	f, err := envfile.Parse(r.rel(path), data)
	if err != nil {
		return nil, errors.Wrap(errors.EParse, err.Error(), err)
	}
	return f, nil
}

// rel returns path relative to the project directory for messages.
func (r *Registrar) rel(path string) string {
	rel, err := filepath.Rel(r.cfg.ProjectDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
