// Package project locates and reads gravel.toml, the file that marks the
// root of a Groovy project and configures how gravel scans it.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"

	"github.com/dhamidi/gravel/groovy/codebase"
)

// FileName is the name of the project file.
const FileName = "gravel.toml"

var (
	ErrNoProject = errors.New("no " + FileName + " found")
	ErrExists    = errors.New(FileName + " already exists")
)

// Project is a loaded project configuration. Paths are absolute.
type Project struct {
	Name       string
	RootDir    string
	File       string // empty when no project file was found
	SourceDirs []string
	Extensions []string
	IndexPath  string
	LogLevel   int
	Exclude    []string
}

type tomlFile struct {
	Project *tomlProject `toml:"project"`
}

type tomlProject struct {
	Name       string   `toml:"name"`
	SourceDirs []string `toml:"source-dirs,omitempty"`
	Extensions []string `toml:"extensions,omitempty"`
	Index      string   `toml:"index,omitempty"`
	LogLevel   int      `toml:"log-level"`
	Exclude    []string `toml:"exclude,omitempty"`
}

func defaults(name string) *tomlProject {
	return &tomlProject{
		Name:       name,
		SourceDirs: []string{"src"},
		Extensions: codebase.DefaultExtensions,
		Index:      filepath.Join(".gravel", "index.db"),
		LogLevel:   0,
		Exclude:    []string{"build", "out"},
	}
}

// Load loads the project enclosing the current directory.
func Load() (*Project, error) {
	return LoadFrom(".")
}

// LoadFrom looks for gravel.toml in dir and its parents. Without one, the
// default configuration rooted at dir is returned.
func LoadFrom(dir string) (*Project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	file, err := Find(abs)
	if errors.Is(err, ErrNoProject) {
		return resolve(abs, "", defaults(filepath.Base(abs))), nil
	}
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return Parse(file, content)
}

// Parse reads the contents of a project file located at path.
func Parse(path string, content []byte) (*Project, error) {
	root := filepath.Dir(path)
	tf := &tomlFile{}
	if err := toml.Unmarshal(content, tf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	tp := mergeDefaults(tf.Project, defaults(filepath.Base(root)))
	if tp.LogLevel < 0 || tp.LogLevel > 5 {
		return nil, fmt.Errorf("parse %s: log-level %d out of range 0..5", path, tp.LogLevel)
	}
	return resolve(root, path, tp), nil
}

// mergeDefaults fills the keys missing from tp.
func mergeDefaults(tp, def *tomlProject) *tomlProject {
	if tp == nil {
		return def
	}
	if tp.Name == "" {
		tp.Name = def.Name
	}
	if tp.SourceDirs == nil {
		tp.SourceDirs = def.SourceDirs
	}
	if tp.Extensions == nil {
		tp.Extensions = def.Extensions
	}
	if tp.Index == "" {
		tp.Index = def.Index
	}
	if tp.Exclude == nil {
		tp.Exclude = def.Exclude
	}
	return tp
}

// Find returns the path of the nearest gravel.toml at or above dir.
func Find(dir string) (string, error) {
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProject
		}
		dir = parent
	}
}

func resolve(root, file string, tp *tomlProject) *Project {
	p := &Project{
		Name:       tp.Name,
		RootDir:    root,
		File:       file,
		Extensions: tp.Extensions,
		IndexPath:  absolute(root, tp.Index),
		LogLevel:   tp.LogLevel,
		Exclude:    tp.Exclude,
	}
	if len(p.Extensions) == 0 {
		p.Extensions = codebase.DefaultExtensions
	}
	for _, dir := range tp.SourceDirs {
		path := absolute(root, dir)
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			p.SourceDirs = append(p.SourceDirs, path)
		}
	}
	if len(p.SourceDirs) == 0 {
		p.SourceDirs = []string{root}
	}
	return p
}

func absolute(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// Codebase creates a codebase configured for the project. It is not
// scanned yet.
func (p *Project) Codebase() *codebase.Codebase {
	return codebase.New(p.RootDir, p.CodebaseOptions()...)
}

// CodebaseOptions are the options Codebase uses, for callers that create
// the codebase themselves.
func (p *Project) CodebaseOptions() []codebase.Option {
	return []codebase.Option{
		codebase.WithSourceDirs(p.SourceDirs...),
		codebase.WithExtensions(p.Extensions...),
		codebase.WithExclude(p.Exclude...),
	}
}

// Init writes a default gravel.toml into dir.
func Init(dir, name string) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return "", ErrExists
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	if name == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", dir, err)
		}
		name = filepath.Base(abs)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(&tomlFile{Project: defaults(name)}); err != nil {
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	return path, nil
}
