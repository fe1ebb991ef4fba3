package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFromWithoutFile(t *testing.T) {
	dir := t.TempDir()

	p, err := LoadFrom(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Base(dir), p.Name)
	require.Equal(t, "", p.File)
	require.Equal(t, []string{dir}, p.SourceDirs, "missing src falls back to the root")
	require.Equal(t, []string{".groovy", ".gvy"}, p.Extensions)
	require.Equal(t, filepath.Join(dir, ".gravel", "index.db"), p.IndexPath)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "src"), 0o755))
	p, err = LoadFrom(dir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "src")}, p.SourceDirs)
}

func TestLoadFromParent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scripts", "deep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`
[project]
name = "demo"
source-dirs = ["scripts"]
extensions = [".groovy"]
index = "/tmp/demo.db"
log-level = 2
exclude = ["deep"]
`), 0o644))

	p, err := LoadFrom(filepath.Join(dir, "scripts", "deep"))
	require.NoError(t, err)
	require.Equal(t, "demo", p.Name)
	require.Equal(t, dir, p.RootDir)
	require.Equal(t, filepath.Join(dir, FileName), p.File)
	require.Equal(t, []string{filepath.Join(dir, "scripts")}, p.SourceDirs)
	require.Equal(t, []string{".groovy"}, p.Extensions)
	require.Equal(t, "/tmp/demo.db", p.IndexPath)
	require.Equal(t, 2, p.LogLevel)
	require.Equal(t, []string{"deep"}, p.Exclude)
}

func TestParseDefaults(t *testing.T) {
	p, err := Parse("/nowhere/app/gravel.toml", []byte("[project]\nname = \"app\"\n"))
	require.NoError(t, err)
	require.Equal(t, "app", p.Name)
	require.Equal(t, []string{"/nowhere/app"}, p.SourceDirs)
	require.Equal(t, "/nowhere/app/.gravel/index.db", p.IndexPath)
	require.Equal(t, []string{"build", "out"}, p.Exclude)

	p, err = Parse("/nowhere/app/gravel.toml", nil)
	require.NoError(t, err)
	require.Equal(t, "app", p.Name)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("/x/gravel.toml", []byte("[project\n"))
	require.Error(t, err)

	_, err = Parse("/x/gravel.toml", []byte("[project]\nlog-level = 9\n"))
	require.ErrorContains(t, err, "log-level")
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	_, err := Find(dir)
	require.ErrorIs(t, err, ErrNoProject)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	path, err := Init(dir, "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, FileName), path)

	p, err := LoadFrom(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Base(dir), p.Name)
	require.Equal(t, []string{".groovy", ".gvy"}, p.Extensions)
	require.Equal(t, filepath.Join(dir, ".gravel", "index.db"), p.IndexPath)

	_, err = Init(dir, "again")
	require.ErrorIs(t, err, ErrExists)
}

func TestCodebaseUsesConfiguration(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "out"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "A.groovy"), []byte("class A {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "out", "B.groovy"), []byte("class B {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Root.groovy"), []byte("class Root {}"), 0o644))

	p, err := LoadFrom(dir)
	require.NoError(t, err)

	c := p.Codebase()
	require.NoError(t, c.ScanAll())
	require.NotNil(t, c.FindType("A"))
	require.Nil(t, c.FindType("B"))
	require.Nil(t, c.FindType("Root"))
}
