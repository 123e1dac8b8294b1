// Copyright (c) 2025 The Ccomp Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package main

import (
	"fmt"
	"os"

	"github.com/rawatamit/ccomp/compile"
)

func usage() int {
	fmt.Println("Usage: ccomp [--lex|--parse|--tacky|--codegen] <file.c>")
	return compile.ExitUsage
}

func run(args []string) int {
	switch len(args) {
	case 2:
		return compile.CompileFile(args[1], compile.PhaseLink)
	case 3:
		var phase compile.Phase
		switch args[1] {
		case "--lex":
			phase = compile.PhaseLex
		case "--parse":
			phase = compile.PhaseParse
		case "--tacky":
			phase = compile.PhaseTacky
		case "--codegen":
			phase = compile.PhaseCodegen
		default:
			return usage()
		}
		return compile.CompileFile(args[2], phase)
	default:
		return usage()
	}
}

func main() {
	os.Exit(run(os.Args))
}
