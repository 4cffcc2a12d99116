// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package define

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/rashell/internal/command"
)

var (
	// ErrInvalidSchema is returned by New when the schema is malformed. It
	// aggregates every problem found, so a schema fails completely on first
	// construction rather than option by option.
	ErrInvalidSchema = errors.New("invalid option schema")
	// ErrUnknownOption is returned when a bind names an option the schema
	// does not declare.
	ErrUnknownOption = errors.New("unknown option")
)

// Kind is the shape of a declared option.
type Kind int

const (
	// KindFlag emits the option token when the bound value is truthy.
	KindFlag Kind = iota + 1
	// KindValue emits the option token paired with each stringified bound value.
	KindValue
)

// Option declares one named command-line option.
type Option struct {
	// Name is the bind name callers use.
	Name string
	// Kind is the option shape, KindFlag or KindValue.
	Kind Kind
	// Token is the literal argument emitted for this option, e.g. "-r" or "--depth".
	Token string
	// Multiple marks a value option as accepting a collection; the token is
	// emitted once per element, in input order.
	Multiple bool
	// Stringify overrides the default conversion of a bound value to a string.
	Stringify func(any) string
}

// Schema declares a program and its options. It is plain data consumed by New.
type Schema struct {
	// Program is the executable to run.
	Program string
	// Doc describes the produced command, informational only.
	Doc string
	// Options are emitted in declaration order.
	Options []Option
	// PrependRest places the rest fragment before the declared options
	// instead of after them.
	PrependRest bool
}

// Factory produces command descriptors from bound option values. Construct
// one with New.
type Factory struct {
	schema Schema
	index  map[string]Option
}

// New validates the schema eagerly and returns a factory. Every malformed
// declaration is reported at once; a schema with any problem never produces
// a factory.
func New(schema Schema) (*Factory, error) {
	var merr *multierror.Error

	if schema.Program == "" {
		merr = multierror.Append(merr, errors.New("schema has no program"))
	}

	index := make(map[string]Option, len(schema.Options))

	for i, opt := range schema.Options {
		if opt.Name == "" {
			merr = multierror.Append(merr, fmt.Errorf("option %d has no name", i))
			continue
		}

		if _, dup := index[opt.Name]; dup {
			merr = multierror.Append(merr, fmt.Errorf("option %q declared twice", opt.Name))
			continue
		}

		if opt.Kind != KindFlag && opt.Kind != KindValue {
			merr = multierror.Append(merr,
				fmt.Errorf("option %q is neither flag nor value shape", opt.Name))
			continue
		}

		if opt.Token == "" {
			merr = multierror.Append(merr, fmt.Errorf("option %q has no token", opt.Name))
			continue
		}

		if opt.Kind == KindFlag && (opt.Multiple || opt.Stringify != nil) {
			merr = multierror.Append(merr,
				fmt.Errorf("option %q: flag options take neither multiple nor stringify", opt.Name))
			continue
		}

		index[opt.Name] = opt
	}

	if err := merr.ErrorOrNil(); err != nil {
		return nil, errors.Join(ErrInvalidSchema, err)
	}

	return &Factory{schema: schema, index: index}, nil
}

// MustNew is New, panicking on a malformed schema. Intended for fixed schemas
// registered at package init.
func MustNew(schema Schema) *Factory {
	f, err := New(schema)
	if err != nil {
		panic(err)
	}

	return f
}

// Doc returns the schema's description.
func (f *Factory) Doc() string {
	return f.schema.Doc
}

// Binds maps declared option names to bound values. Absent names contribute
// nothing to the argument vector.
type Binds map[string]any

// CallOption configures one factory call. Dir and Env flow straight into the
// produced descriptor.
type CallOption func(*callConfig)

type callConfig struct {
	dir string
	env []string
}

// WithDir sets the working directory of the produced descriptor.
func WithDir(dir string) CallOption {
	return func(c *callConfig) { c.dir = dir }
}

// WithEnv sets the environment bindings of the produced descriptor.
func WithEnv(env []string) CallOption {
	return func(c *callConfig) { c.env = env }
}

// Command builds a command descriptor from the bound values. Declared options
// are emitted in declaration order; rest elements are stringified and
// appended after them (or prepended when the schema says so). Binding a name
// the schema does not declare is a usage error.
func (f *Factory) Command(binds Binds, rest []any, opts ...CallOption) (*command.Command, error) {
	for name := range binds {
		if _, ok := f.index[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownOption, name)
		}
	}

	cfg := callConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var argv []string

	for _, opt := range f.schema.Options {
		v, bound := binds[opt.Name]
		if !bound || v == nil {
			continue
		}

		switch opt.Kind {
		case KindFlag:
			if truthy(v) {
				argv = append(argv, opt.Token)
			}
		case KindValue:
			argv = append(argv, valueTokens(opt, v)...)
		}
	}

	restArgs := make([]string, 0, len(rest))
	for _, r := range rest {
		restArgs = append(restArgs, stringify(r))
	}

	if f.schema.PrependRest {
		argv = append(restArgs, argv...)
	} else {
		argv = append(argv, restArgs...)
	}

	return &command.Command{
		Program: f.schema.Program,
		Args:    argv,
		Dir:     cfg.dir,
		Env:     cfg.env,
		Doc:     f.schema.Doc,
	}, nil
}

// valueTokens emits the (token, value) pairs for one bound value option:
// 2N tokens for a multiple option bound to N elements, 2 for a single one.
func valueTokens(opt Option, v any) []string {
	conv := opt.Stringify
	if conv == nil {
		conv = stringify
	}

	if !opt.Multiple {
		return []string{opt.Token, conv(v)}
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []string{opt.Token, conv(v)}
	}

	out := make([]string, 0, 2*rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out = append(out, opt.Token, conv(rv.Index(i).Interface()))
	}

	return out
}

// truthy reports whether a flag option's bound value counts as set.
func truthy(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}

	return v != nil
}

// stringify is the default conversion of a bound value to an argument:
// a string is used unchanged, a fmt.Stringer contributes its String form,
// anything else its generic textual representation.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
