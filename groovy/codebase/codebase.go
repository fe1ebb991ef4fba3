package codebase

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/gravel/groovy"
	"github.com/dhamidi/gravel/groovy/parser"
)

var log = commonlog.GetLogger("gravel.codebase")

// DefaultExtensions are the file extensions scanned when none are given.
var DefaultExtensions = []string{".groovy", ".gvy"}

type Codebase struct {
	mu         sync.RWMutex
	rootDir    string
	sourceDirs []string
	extensions []string
	exclude    []string
	files      map[string]*FileInfo
	byRoot     map[*parser.Node]*FileInfo
	types      map[string]*groovy.TypeDefinition
}

type FileInfo struct {
	Path    string
	Content []byte
	AST     *parser.Node
	Package string
	Types   []*groovy.TypeDefinition
	// Version counts the edits applied to AST since the file was first
	// parsed.
	Version int
}

type Option func(*Codebase)

// WithExtensions sets the extensions of the files ScanAll picks up.
func WithExtensions(exts ...string) Option {
	return func(c *Codebase) {
		if len(exts) > 0 {
			c.extensions = exts
		}
	}
}

// WithSourceDirs limits scanning to the given directories instead of the
// whole root.
func WithSourceDirs(dirs ...string) Option {
	return func(c *Codebase) {
		c.sourceDirs = append(c.sourceDirs, dirs...)
	}
}

// WithExclude skips directories with the given names during ScanAll.
func WithExclude(dirs ...string) Option {
	return func(c *Codebase) {
		c.exclude = append(c.exclude, dirs...)
	}
}

func New(rootDir string, opts ...Option) *Codebase {
	c := &Codebase{
		rootDir:    rootDir,
		extensions: DefaultExtensions,
		files:      make(map[string]*FileInfo),
		byRoot:     make(map[*parser.Node]*FileInfo),
		types:      make(map[string]*groovy.TypeDefinition),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codebase) RootDir() string {
	return c.rootDir
}

// IsSource reports whether path has one of the scanned extensions.
func (c *Codebase) IsSource(path string) bool {
	return slices.Contains(c.extensions, filepath.Ext(path))
}

// SourceDirs returns the directories scanned for sources.
func (c *Codebase) SourceDirs() []string {
	if len(c.sourceDirs) == 0 {
		return []string{c.rootDir}
	}
	return c.sourceDirs
}

// skipDir reports whether a directory is hidden or excluded.
func (c *Codebase) skipDir(path string, name string) bool {
	if path == c.rootDir || slices.Contains(c.sourceDirs, path) {
		return false
	}
	return strings.HasPrefix(name, ".") || slices.Contains(c.exclude, name)
}

func (c *Codebase) ScanAll() error {
	count := 0
	for _, dir := range c.SourceDirs() {
		err := c.walkSources(dir, func(path string, _ os.FileInfo) {
			if err := c.ScanFile(path); err != nil {
				log.Warningf("scan %s: %s", path, err)
				return
			}
			count++
		})
		if err != nil {
			return fmt.Errorf("scan %s: %w", dir, err)
		}
	}
	log.Infof("scanned %d files under %s", count, c.rootDir)
	return nil
}

// walkSources calls fn for every source file below dir, skipping hidden
// and excluded directories.
func (c *Codebase) walkSources(dir string, fn func(path string, info os.FileInfo)) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if c.skipDir(path, info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if c.IsSource(path) {
			fn(path, info)
		}
		return nil
	})
}

func (c *Codebase) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return c.UpdateFile(path, content)
}

// UpdateFile parses content as the new text of path. When the file is
// already known its compilation unit is kept and its children replaced, so
// anything holding the root sees the edit through its listeners.
func (c *Codebase) UpdateFile(path string, content []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.updateFileLocked(path, content)
}

func (c *Codebase) updateFileLocked(path string, content []byte) error {
	ast := parser.Parse(content, parser.WithFile(filepath.Base(path)))
	if ast == nil {
		return fmt.Errorf("parse %s: no syntax tree", path)
	}

	f := c.files[path]
	if f == nil {
		f = &FileInfo{Path: path, AST: ast}
		ast.OnSubtreeChanged(func(*parser.Node) { f.Version++ })
		c.files[path] = f
		c.byRoot[ast] = f
	} else {
		for _, td := range f.Types {
			td.SubtreeChanged()
		}
		f.AST.SetChildren(ast.Children)
		f.AST.Span = ast.Span
	}

	f.Content = content
	f.Package = groovy.PackageName(f.AST)
	f.Types = groovy.AllTypeDefinitions(f.AST)
	if errs := parser.Errors(f.AST); len(errs) > 0 {
		log.Debugf("%s: %d syntax errors", path, len(errs))
	}

	c.rebuildTypesLocked()
	return nil
}

func (c *Codebase) rebuildTypesLocked() {
	types := make(map[string]*groovy.TypeDefinition)
	for _, path := range c.pathsLocked() {
		for _, td := range c.files[path].Types {
			qn := td.QualifiedName()
			if qn == "" {
				continue
			}
			if _, dup := types[qn]; !dup {
				types[qn] = td
			}
		}
	}
	c.types = types
}

func (c *Codebase) pathsLocked() []string {
	paths := make([]string, 0, len(c.files))
	for path := range c.files {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f := c.files[path]; f != nil {
		delete(c.byRoot, f.AST)
	}
	delete(c.files, path)
	c.rebuildTypesLocked()
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// Paths returns the known files in lexical order.
func (c *Codebase) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pathsLocked()
}

// AllTypes returns every named type definition, ordered by qualified name.
func (c *Codebase) AllTypes() []*groovy.TypeDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.types))
	for qn := range c.types {
		names = append(names, qn)
	}
	slices.Sort(names)
	types := make([]*groovy.TypeDefinition, len(names))
	for i, qn := range names {
		types[i] = c.types[qn]
	}
	return types
}

// FindType looks a type up by qualified name, then by simple name.
func (c *Codebase) FindType(name string) *groovy.TypeDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.findTypeLocked(name)
}

func (c *Codebase) findTypeLocked(name string) *groovy.TypeDefinition {
	if td := c.types[name]; td != nil {
		return td
	}
	if strings.Contains(name, ".") {
		return nil
	}
	for _, path := range c.pathsLocked() {
		for _, td := range c.files[path].Types {
			if td.Name() == name && td.QualifiedName() != "" {
				return td
			}
		}
	}
	return nil
}

// FileOf returns the file a node belongs to.
func (c *Codebase) FileOf(node *parser.Node) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fileOfLocked(node)
}

func (c *Codebase) fileOfLocked(node *parser.Node) *FileInfo {
	if node == nil {
		return nil
	}
	return c.byRoot[node.Root()]
}
