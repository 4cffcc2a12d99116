// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package commandregistry

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/rashell/internal/command"
	"github.com/matt-FFFFFF/rashell/internal/ctxlog"
	"github.com/matt-FFFFFF/rashell/internal/define"
)

var (
	// ErrUnknownCommand is returned when a command name is not registered.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrCommandUnmarshal is returned when a command document cannot be decoded.
	ErrCommandUnmarshal = errors.New("failed to unmarshal command definition")
	// ErrCommandCreation is returned when the factory rejects the bound values.
	ErrCommandCreation = errors.New("failed to create command")
)

// Registry holds the mapping between command names and their factories.
type Registry map[string]*define.Factory

// DefaultRegistry is the default registry for command names.
var DefaultRegistry = make(Registry)

// Register registers a factory under a command name in the default registry.
func Register(name string, factory *define.Factory) {
	DefaultRegistry[name] = factory
}

// Get returns the factory registered under name.
func Get(name string) (*define.Factory, bool) {
	f, ok := DefaultRegistry[name]

	return f, ok
}

// Names returns the registered command names, sorted.
func Names() []string {
	names := make([]string, 0, len(DefaultRegistry))
	for name := range DefaultRegistry {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// definition is the YAML shape of a command document.
type definition struct {
	Command string         `yaml:"command"`
	Options map[string]any `yaml:"options"`
	Rest    []any          `yaml:"rest"`
	Dir     string         `yaml:"dir"`
	Env     []string       `yaml:"env"`
}

// CreateFromYAML decodes a command document and builds a descriptor through
// the registered factory.
func CreateFromYAML(ctx context.Context, yamlData []byte) (*command.Command, error) {
	var def definition
	if err := yaml.Unmarshal(yamlData, &def); err != nil {
		return nil, errors.Join(ErrCommandUnmarshal, err)
	}

	factory, exists := DefaultRegistry[def.Command]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, def.Command)
	}

	ctxlog.Debug(ctx, "building command from document",
		"command", def.Command, "options", len(def.Options), "rest", len(def.Rest))

	cmd, err := factory.Command(def.Options, def.Rest,
		define.WithDir(def.Dir), define.WithEnv(def.Env))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCommandCreation, def.Command, err)
	}

	return cmd, nil
}
