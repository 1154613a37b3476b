// Package scaffold materializes the generated Selenium project: the
// dependency manifest, the activation helper, the two automation scripts and
// the README.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Data holds the substitution points for the generated files.
type Data struct {
	ChromeVersion string
	ChromeMajor   string
	GeneratedAt   string
	ProjectDir    string
	VenvDir       string
}

// artifact describes one generated file: its name in the project directory,
// the template it is rendered from and its file mode.
type artifact struct {
	name string
	tmpl string
	mode os.FileMode
}

var artifacts = []artifact{
	{"requirements.txt", "requirements.txt.tmpl", 0o644},
	{"activate.sh", "activate.sh.tmpl", 0o755},
	{"test_selenium.py", "test_selenium.py.tmpl", 0o755},
	{"example.py", "example.py.tmpl", 0o755},
	{"README.txt", "README.txt.tmpl", 0o644},
}

// Scaffolder writes the generated project files through an afero filesystem.
type Scaffolder struct {
	fs        afero.Fs
	logger    logrus.FieldLogger
	templates *template.Template
}

// New returns a Scaffolder with all templates parsed.
func New(fs afero.Fs, logger logrus.FieldLogger) (*Scaffolder, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("could not parse the project templates: %w", err)
	}
	return &Scaffolder{fs: fs, logger: logger, templates: tmpl}, nil
}

// ArtifactNames returns the names of all generated files, in write order.
func ArtifactNames() []string {
	names := make([]string, len(artifacts))
	for i, a := range artifacts {
		names[i] = a.name
	}
	return names
}

// WriteProject renders every artifact into dir, creating it first if needed.
// Existing files are overwritten unconditionally, so re-running setup always
// refreshes the project with the current version and timestamp. Each file is
// written atomically (temp file, then rename) so an interrupted run never
// leaves a half-written artifact behind.
func (s *Scaffolder) WriteProject(dir string, data Data) error {
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create the project directory %s: %w", dir, err)
	}

	for _, a := range artifacts {
		var buf bytes.Buffer
		if err := s.templates.ExecuteTemplate(&buf, a.tmpl, data); err != nil {
			return fmt.Errorf("could not render %s: %w", a.name, err)
		}

		path := filepath.Join(dir, a.name)
		if err := writeFileAtomic(s.fs, path, buf.Bytes(), a.mode); err != nil {
			return fmt.Errorf("could not write %s: %w", a.name, err)
		}
		s.logger.WithField("path", path).Debug("wrote project file")
	}

	return nil
}

// writeFileAtomic writes data to a temp file next to path and renames it into
// place, so readers never observe a partially written file.
func writeFileAtomic(fs afero.Fs, path string, data []byte, mode os.FileMode) error {
	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, mode); err != nil {
		return err
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return err
	}
	return fs.Chmod(path, mode)
}
