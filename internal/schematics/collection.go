// Package schematics runs code generators from a schematics collection.
package schematics

import (
	"context"
	"fmt"

	clierrors "github.com/tgairbot/cli/internal/errors"
)

// Schematic describes one generator of the collection.
type Schematic struct {
	Name        string
	Alias       string
	Description string
	hidden      bool
}

var builtinSchematics = []Schematic{
	{Name: "application", Alias: "application", Description: "Generate a new application workspace"},
	{Name: "angular-app", Alias: "ng-app", hidden: true},
	{Name: "middleware", Alias: "mi", Description: "Generate a middleware declaration"},
	{Name: "layout", Alias: "l", Description: "Generate a layout declaration"},
	{Name: "storage", Alias: "s", Description: "Generate a custom storage declaration"},
}

// Collection is a named set of schematics executed through a Runner.
type Collection struct {
	name   string
	runner Runner
}

// NewCollection creates the collection called name.
func NewCollection(name string, runner Runner) *Collection {
	return &Collection{name: name, runner: runner}
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Schematics lists the schematics users can pick.
func (c *Collection) Schematics() []Schematic {
	out := make([]Schematic, 0, len(builtinSchematics))
	for _, s := range builtinSchematics {
		if !s.hidden {
			out = append(out, s)
		}
	}
	return out
}

// Resolve maps a schematic name or alias to its name.
func (c *Collection) Resolve(name string) (string, error) {
	for _, s := range builtinSchematics {
		if s.Name == name || s.Alias == name {
			return s.Name, nil
		}
	}
	return "", clierrors.NewConfigError(clierrors.ErrCodeInvalidSchematic,
		fmt.Sprintf("invalid schematic %q, ensure that %q exists in this collection", name, name), nil)
}

// Args returns the runner arguments for executing name with options.
func (c *Collection) Args(name string, options []Option) []string {
	args := []string{c.name + ":" + name}
	for _, o := range options {
		if arg, ok := o.Arg(); ok {
			args = append(args, arg)
		}
	}
	return args
}

// Execute validates name and runs the schematic in dir.
func (c *Collection) Execute(ctx context.Context, dir, name string, options []Option) error {
	schematic, err := c.Resolve(name)
	if err != nil {
		return err
	}
	if err := c.runner.Run(ctx, dir, c.Args(schematic, options)); err != nil {
		return clierrors.NewBackendError(clierrors.ErrCodeBuildFailed,
			fmt.Sprintf("schematic %s failed", schematic), err)
	}
	return nil
}
