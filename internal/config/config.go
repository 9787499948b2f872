// Package config loads the tgairbot project configuration file and resolves
// individual settings with the precedence used by every command: explicit
// command-line input, then the per-project override under "projects", then
// the global value, then a compiled-in default.
//
// The configuration is kept as a generic tree rather than a struct because
// project names are arbitrary strings (they may contain dots) and settings
// such as "compilerOptions.builder" accept either a string or an object.
package config

import (
	"fmt"
	"strings"
)

const projectsKey = "projects"

// Defaults shared by the commands.
const (
	DefaultOutDir                = "dist"
	DefaultSourceRoot            = "src"
	DefaultEntryFile             = "main"
	DefaultExec                  = "node"
	DefaultCollection            = "@tgairbot/schematics"
	DefaultBundlerConfigFilename = "webpack.config.js"
	DefaultTsConfigPath          = "tsconfig.build.json"
	FallbackTsConfigPath         = "tsconfig.json"
)

// DefaultTree returns a fresh copy of the compiled-in configuration.
func DefaultTree() map[string]any {
	return map[string]any{
		"language":   "ts",
		"sourceRoot": DefaultSourceRoot,
		"collection": DefaultCollection,
		"entryFile":  DefaultEntryFile,
		"exec":       DefaultExec,
		"monorepo":   false,
		"projects":   map[string]any{},
		"compilerOptions": map[string]any{
			"assets":       []any{},
			"plugins":      []any{},
			"webpack":      false,
			"deleteOutDir": false,
			"watchAssets":  false,
			"tsConfigPath": DefaultTsConfigPath,
		},
		"generateOptions": map[string]any{},
	}
}

// Configuration is an immutable, fully merged configuration tree.
type Configuration struct {
	tree   map[string]any
	source string
}

// Default returns the compiled-in configuration.
func Default() *Configuration {
	return &Configuration{tree: DefaultTree()}
}

// FromMap merges fileTree over the compiled-in defaults the same way a
// loaded file is merged: top-level keys replace defaults and
// "compilerOptions" is merged one level deep.
func FromMap(fileTree map[string]any) (*Configuration, error) {
	tree := DefaultTree()
	for k, v := range fileTree {
		if k == "compilerOptions" {
			if opts, ok := v.(map[string]any); ok {
				merged := tree[k].(map[string]any)
				for key, value := range opts {
					merged[key] = value
				}
				continue
			}
		}
		tree[k] = v
	}

	if err := validateProjects(tree[projectsKey]); err != nil {
		return nil, err
	}

	return &Configuration{tree: tree}, nil
}

func validateProjects(v any) error {
	if v == nil {
		return nil
	}
	projects, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("%q must be an object, got %T", projectsKey, v)
	}
	for name, p := range projects {
		if strings.Contains(name, quote) {
			return fmt.Errorf("project name %q must not contain a double quote", name)
		}
		if _, ok := p.(map[string]any); !ok && p != nil {
			return fmt.Errorf("project %q must be an object, got %T", name, p)
		}
	}
	return nil
}

// Source returns the file the configuration was read from, or "" when the
// compiled-in defaults are in use.
func (c *Configuration) Source() string {
	return c.source
}

// HasProject reports whether name has an entry under "projects".
func (c *Configuration) HasProject(name string) bool {
	projects, ok := c.tree[projectsKey].(map[string]any)
	if !ok {
		return false
	}
	p, ok := projects[name]
	return ok && p != nil
}

// ProjectNames lists the configured project names.
func (c *Configuration) ProjectNames() []string {
	projects, _ := c.tree[projectsKey].(map[string]any)
	names := make([]string, 0, len(projects))
	for name := range projects {
		names = append(names, name)
	}
	return names
}

// Get returns the global value at path without any project override.
func (c *Configuration) Get(path string) (any, bool) {
	tokens, err := ParsePath(path)
	if err != nil {
		return nil, false
	}
	return Lookup(c.tree, tokens)
}
