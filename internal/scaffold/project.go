package scaffold

import (
	stderrors "errors"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"microflame/internal/errors"
	"microflame/internal/fs"
)

// CopyResult holds the result of copying the project tree.
type CopyResult struct {
	Created []string // slash-separated paths relative to the target directory
	Skipped []string // files that already existed
}

// CopyProject copies the starter project into dir, creating dir if needed.
// Never overwrites existing files.
func CopyProject(fsys fs.FS, dir string, log *logrus.Entry) (CopyResult, error) {
	return copyTree(fsys, ProjectFiles(), dir, log)
}

func copyTree(fsys fs.FS, src iofs.FS, dir string, log *logrus.Entry) (CopyResult, error) {
	result := CopyResult{}

	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return result, errors.WrapPath(errors.EWriteFailed, dir, err)
	}

	err := iofs.WalkDir(src, ".", func(srcPath string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if srcPath == "." {
			return nil
		}

		p := outputName(srcPath)
		target := filepath.Join(dir, filepath.FromSlash(p))
		if d.IsDir() {
			if err := fsys.MkdirAll(target, 0755); err != nil {
				return errors.WrapPath(errors.EWriteFailed, p, err)
			}
			return nil
		}

		_, err = fsys.Stat(target)
		if err == nil {
			log.WithField("file", p).Debug("file exists, skipping")
			result.Skipped = append(result.Skipped, p)
			return nil
		}
		if !stderrors.Is(err, os.ErrNotExist) {
			return errors.WrapPath(errors.EInternal, p, err)
		}

		data, err := iofs.ReadFile(src, srcPath)
		if err != nil {
			return errors.Wrap(errors.EInternal, "cannot read template "+srcPath, err)
		}
		if err := fs.WriteFileAtomic(fsys, target, data, 0644); err != nil {
			return errors.WrapPath(errors.EWriteFailed, p, err)
		}

		log.WithField("file", p).Debug("created")
		result.Created = append(result.Created, p)
		return nil
	})

	return result, err
}

// outputName maps a template path to the path written in the project.
// The ignore file is stored without its dot so it does not apply to the
// template tree itself.
func outputName(p string) string {
	if path.Base(p) == "gitignore" {
		return path.Join(path.Dir(p), ".gitignore")
	}
	return p
}
