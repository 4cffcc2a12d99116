// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the subcommand that launches a command described
// by a YAML document and supervises it until it terminates.
package run

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/rashell/internal/command"
	"github.com/matt-FFFFFF/rashell/internal/commandregistry"
	"github.com/matt-FFFFFF/rashell/internal/ctxlog"
	"github.com/matt-FFFFFF/rashell/internal/signalbroker"
	_ "github.com/matt-FFFFFF/rashell/internal/utilities"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	fileArg         = "file"
	stdinFileFlag   = "stdin-file"
	stdoutFileFlag  = "stdout-file"
	stderrFileFlag  = "stderr-file"
	onMissingFlag   = "on-missing"
	onExistingFlag  = "on-existing"
	mergeStderrFlag = "merge-stderr"
)

var (
	// ErrReadFile is returned when the command document cannot be read.
	ErrReadFile = fmt.Errorf("failed to read file")
	// ErrUnknownPolicy is returned when a file policy flag has an unknown value.
	ErrUnknownPolicy = fmt.Errorf("unknown file policy")
)

// fs is the filesystem used to read command documents.
// Tests swap it for an in-memory implementation.
var fs = afero.NewOsFs()

// RunCmd is the command that launches a process described by a YAML document.
var RunCmd = &cli.Command{
	Name:        "run",
	Description: "Launch the command described by a YAML document and wait for it to terminate.",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      fileArg,
			UsageText: "YAMLFILE",
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
	},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      stdinFileFlag,
			Usage:     "Connect the child's standard input to this file",
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:      stdoutFileFlag,
			Usage:     "Connect the child's standard output to this file",
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:      stderrFileFlag,
			Usage:     "Connect the child's standard error to this file",
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:        onMissingFlag,
			Usage:       "Policy when an input file is missing: abort-silently, abort-with-error or create-empty",
			Value:       "abort-silently",
			DefaultText: "abort-silently",
		},
		&cli.StringFlag{
			Name:        onExistingFlag,
			Usage:       "Policy when an output file exists: abort-silently, abort-with-error, truncate or append",
			Value:       "abort-silently",
			DefaultText: "abort-silently",
		},
		&cli.BoolFlag{
			Name:        mergeStderrFlag,
			Usage:       "Send the child's standard error to the same sink as standard output",
			Value:       false,
			DefaultText: "false",
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	yamlFileName := cmd.StringArg(fileArg)
	if yamlFileName == "" {
		return cli.Exit("Please provide a YAML file to run", 1)
	}

	bytes, err := afero.ReadFile(fs, yamlFileName)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to read file %s: %s", yamlFileName, err.Error()), 1)
	}

	desc, err := commandregistry.CreateFromYAML(ctx, bytes)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to build command from file %s: %s", yamlFileName, err.Error()), 1)
	}

	opts, err := startOptions(cmd)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	opts = append(opts, command.WithNotify(func(st command.Status) {
		ctxlog.Debug(ctx, "process state changed", "status", st.String())
	}))

	proc, err := desc.Start(ctx, opts...)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to start %s: %s", desc.Program, err.Error()), 1)
	}

	if proc == nil {
		ctxlog.Info(ctx, "launch declined by file policy", "program", desc.Program)
		return nil
	}

	status, err := supervise(ctx, proc)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to wait for %s: %s", desc.Program, err.Error()), 1)
	}

	ctxlog.Info(ctx, "process terminated",
		"program", desc.Program, "pid", proc.Pid(), "status", status.String())

	switch status.State {
	case command.StateExited:
		if status.Code != 0 {
			return cli.Exit("", status.Code)
		}
	case command.StateSignaled:
		return cli.Exit(fmt.Sprintf("%s killed by signal %d", desc.Program, status.Signal),
			128+int(status.Signal))
	}

	return nil
}

// supervise forwards caught signals to the child until it terminates, then
// releases its streams. The streams are released on every exit path, a wait
// failure included.
func supervise(ctx context.Context, proc *command.Process) (command.Status, error) {
	defer proc.Close() //nolint:errcheck

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()

	sigCh := signalbroker.New(watchCtx)
	go signalbroker.Forward(watchCtx, sigCh, proc)

	return proc.Wait(ctx)
}

// startOptions translates the redirection flags into start options.
func startOptions(cmd *cli.Command) ([]command.StartOption, error) {
	missing, err := missingPolicy(cmd.String(onMissingFlag))
	if err != nil {
		return nil, err
	}

	existing, err := existingPolicy(cmd.String(onExistingFlag))
	if err != nil {
		return nil, err
	}

	var opts []command.StartOption

	if name := cmd.String(stdinFileFlag); name != "" {
		opts = append(opts, command.WithStdin(command.Path(name).Missing(missing)))
	}

	if name := cmd.String(stdoutFileFlag); name != "" {
		opts = append(opts, command.WithStdout(command.Path(name).Existing(existing)))
	}

	switch {
	case cmd.Bool(mergeStderrFlag):
		opts = append(opts, command.WithStderr(command.MergeWithStdout()))
	case cmd.String(stderrFileFlag) != "":
		opts = append(opts, command.WithStderr(
			command.Path(cmd.String(stderrFileFlag)).Existing(existing)))
	}

	return opts, nil
}

func missingPolicy(name string) (command.MissingFilePolicy, error) {
	switch name {
	case "abort-silently":
		return command.MissingAbortSilently, nil
	case "abort-with-error":
		return command.MissingAbortWithError, nil
	case "create-empty":
		return command.MissingCreateEmpty, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

func existingPolicy(name string) (command.ExistingFilePolicy, error) {
	switch name {
	case "abort-silently":
		return command.ExistingAbortSilently, nil
	case "abort-with-error":
		return command.ExistingAbortWithError, nil
	case "truncate":
		return command.ExistingTruncate, nil
	case "append":
		return command.ExistingAppend, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}
