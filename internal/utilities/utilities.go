// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package utilities

import (
	"github.com/matt-FFFFFF/rashell/internal/commandregistry"
	"github.com/matt-FFFFFF/rashell/internal/define"
)

// Cp copies files and directories.
var Cp = define.MustNew(define.Schema{
	Program: "cp",
	Doc:     "copy files and directories",
	Options: []define.Option{
		{Name: "recursive", Kind: define.KindFlag, Token: "-R"},
		{Name: "force", Kind: define.KindFlag, Token: "-f"},
		{Name: "preserve", Kind: define.KindFlag, Token: "-p"},
	},
})

// Mv moves or renames files.
var Mv = define.MustNew(define.Schema{
	Program: "mv",
	Doc:     "move or rename files",
	Options: []define.Option{
		{Name: "force", Kind: define.KindFlag, Token: "-f"},
		{Name: "no-clobber", Kind: define.KindFlag, Token: "-n"},
	},
})

// Rm removes files and directories.
var Rm = define.MustNew(define.Schema{
	Program: "rm",
	Doc:     "remove files and directories",
	Options: []define.Option{
		{Name: "recursive", Kind: define.KindFlag, Token: "-r"},
		{Name: "force", Kind: define.KindFlag, Token: "-f"},
	},
})

// Find walks file hierarchies. The rest fragment is the list of starting
// points, which find expects before its expression options.
var Find = define.MustNew(define.Schema{
	Program:     "find",
	Doc:         "walk a file hierarchy",
	PrependRest: true,
	Options: []define.Option{
		{Name: "name", Kind: define.KindValue, Token: "-name"},
		{Name: "type", Kind: define.KindValue, Token: "-type"},
		{Name: "path", Kind: define.KindValue, Token: "-path", Multiple: true},
	},
})

// Mktemp creates temporary files and directories.
var Mktemp = define.MustNew(define.Schema{
	Program: "mktemp",
	Doc:     "create a temporary file or directory",
	Options: []define.Option{
		{Name: "directory", Kind: define.KindFlag, Token: "-d"},
		{Name: "template", Kind: define.KindValue, Token: "-t"},
	},
})

func init() {
	commandregistry.Register("cp", Cp)
	commandregistry.Register("mv", Mv)
	commandregistry.Register("rm", Rm)
	commandregistry.Register("find", Find)
	commandregistry.Register("mktemp", Mktemp)
}
