// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package script implements the subcommand that renders a scripted
// conversation document as a shell script.
package script

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/rashell/internal/conversation"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const fileArg = "file"

var (
	// ErrReadFile is returned when the conversation document cannot be read.
	ErrReadFile = fmt.Errorf("failed to read file")
	// ErrUnmarshal is returned when the conversation document cannot be decoded.
	ErrUnmarshal = errors.New("failed to unmarshal conversation")
)

// fs is the filesystem used to read conversation documents.
// Tests swap it for an in-memory implementation.
var fs = afero.NewOsFs()

// ScriptCmd is the command that prints the shell script generated from a
// YAML conversation document.
var ScriptCmd = &cli.Command{
	Name:        "script",
	Description: "Print the shell script generated from a YAML conversation document.",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      fileArg,
			UsageText: "YAMLFILE",
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
	},
	Action: actionFunc,
}

func actionFunc(_ context.Context, cmd *cli.Command) error {
	yamlFileName := cmd.StringArg(fileArg)
	if yamlFileName == "" {
		return cli.Exit("Please provide a YAML conversation file", 1)
	}

	bytes, err := afero.ReadFile(fs, yamlFileName)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to read file %s: %s", yamlFileName, err.Error()), 1)
	}

	clauses, err := clausesFromYAML(bytes)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to decode file %s: %s", yamlFileName, err.Error()), 1)
	}

	fmt.Fprint(cmd.Writer, conversation.Script(clauses))

	return nil
}

// clauseDoc is the YAML shape of one conversation clause.
// Exactly one field is expected to be set per list item.
type clauseDoc struct {
	Sleep       *float64 `yaml:"sleep"`
	WriteOutput *string  `yaml:"write-output"`
	WriteError  *string  `yaml:"write-error"`
	ReadInput   *string  `yaml:"read-input"`
	Exit        *int     `yaml:"exit"`
}

// clausesFromYAML decodes a conversation document into clauses. Items that
// set none of the known fields are dropped, mirroring the generator's
// treatment of unknown clauses.
func clausesFromYAML(yamlData []byte) ([]conversation.Clause, error) {
	var docs []clauseDoc
	if err := yaml.Unmarshal(yamlData, &docs); err != nil {
		return nil, errors.Join(ErrUnmarshal, err)
	}

	clauses := make([]conversation.Clause, 0, len(docs))

	for _, doc := range docs {
		switch {
		case doc.Sleep != nil:
			clauses = append(clauses, conversation.Sleep(*doc.Sleep))
		case doc.WriteOutput != nil:
			clauses = append(clauses, conversation.WriteOutput(*doc.WriteOutput))
		case doc.WriteError != nil:
			clauses = append(clauses, conversation.WriteError(*doc.WriteError))
		case doc.ReadInput != nil:
			clauses = append(clauses, conversation.ReadInput(*doc.ReadInput))
		case doc.Exit != nil:
			clauses = append(clauses, conversation.Exit(*doc.Exit))
		}
	}

	return clauses, nil
}
