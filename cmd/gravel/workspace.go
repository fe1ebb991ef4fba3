package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhamidi/gravel/groovy/codebase"
	"github.com/dhamidi/gravel/project"
)

// loadCodebase loads the project around projectDir and scans its sources.
// Files named on the command line are added even when they lie outside the
// source directories.
func loadCodebase(files ...string) (*project.Project, *codebase.Codebase, error) {
	p, err := project.LoadFrom(projectDir)
	if err != nil {
		return nil, nil, err
	}
	c := p.Codebase()
	if err := c.ScanAll(); err != nil {
		return nil, nil, err
	}
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve %s: %w", file, err)
		}
		if c.GetFile(abs) == nil {
			if err := c.ScanFile(abs); err != nil {
				return nil, nil, err
			}
		}
	}
	return p, c, nil
}

// parsePosition reads a "line:column" argument.
func parsePosition(s string) (int, int, error) {
	lineStr, colStr, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("position %q: want line:column", s)
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil || line < 1 {
		return 0, 0, fmt.Errorf("position %q: bad line", s)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil || col < 1 {
		return 0, 0, fmt.Errorf("position %q: bad column", s)
	}
	return line, col, nil
}

func mustAbs(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
