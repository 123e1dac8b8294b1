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

// Package compile drives the pipeline: preprocess, lex, parse, resolve,
// tacky, asmgen, codegen, then assemble and link with the system C
// compiler. The diagnostic handler is checked after every stage and the
// driver stops at the earliest stage that reported.
package compile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/rawatamit/ccomp/ast"
	"github.com/rawatamit/ccomp/compile/codegen"
	"github.com/rawatamit/ccomp/compile/tacky"
	"github.com/rawatamit/ccomp/diag"
	"github.com/rawatamit/ccomp/utils"
)

const DebugPrintTokens = false
const DebugPrintAst = false
const DebugDumpTacky = false
const DebugDumpAsm = false

// Phase selects how far the pipeline runs.
type Phase int

const (
	PhaseLex Phase = iota
	PhaseParse
	PhaseTacky
	PhaseCodegen
	PhaseLink
)

// Exit codes follow the sysexits convention the original toolchain used.
const (
	ExitOK    = 0
	ExitUsage = 1
	ExitDiag  = 65
	ExitIO    = 70
)

func stemPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext)
}

// preprocess runs the external preprocessor and returns the contents of the
// resulting translation unit.
func preprocess(path string) (string, error) {
	prePath := stemPath(path) + ".pre"
	wd := filepath.Dir(path)
	if _, err := utils.ExecuteCmd(wd, "gcc", "-E", "-P", path, "-o", prePath); err != nil {
		return "", errors.Wrapf(err, "preprocessing %s", path)
	}
	source, err := os.ReadFile(prePath)
	if err != nil {
		return "", errors.Wrapf(err, "reading preprocessed file %s", prePath)
	}
	return string(source), nil
}

// CompileSource runs the pipeline on in-memory source up to the requested
// phase and returns the emitted assembly text when the phase reaches
// codegen. All diagnostics end up in errs; callers check it.
func CompileSource(source string, phase Phase, errs *diag.Handler) string {
	lexer := ast.NewLexerFromString(source, errs)
	tokens := lexer.Tokenize()
	if DebugPrintTokens {
		for _, t := range tokens {
			fmt.Printf("%v\n", t)
		}
	}
	if errs.HasErrors() || phase == PhaseLex {
		return ""
	}

	parser := ast.NewParser(tokens, errs)
	fns := parser.Parse()
	if errs.HasErrors() || phase == PhaseParse {
		return ""
	}

	ast.Resolve(fns, errs)
	if errs.HasErrors() {
		return ""
	}
	if DebugPrintAst {
		ast.PrintAst(fns)
	}

	gen := tacky.NewTackyGen(errs)
	tackyProg := gen.Gen(fns)
	if DebugDumpTacky {
		fmt.Printf("== TACKY ==\n%v\n", tackyProg)
	}
	if errs.HasErrors() || phase == PhaseTacky {
		return ""
	}

	asmProg := codegen.ReplacePseudos(codegen.Lower(tackyProg))
	if DebugDumpAsm {
		fmt.Printf("== ASM IR ==\n%v\n", asmProg)
	}
	if errs.HasErrors() {
		return ""
	}

	return codegen.CodeGen(asmProg)
}

// CompileFile preprocesses and compiles one file. With PhaseLink the
// assembly is written to <stem>.s next to the input and handed to the
// system C compiler; earlier phases print assembly to stdout (codegen) or
// nothing at all. The return value is the process exit code.
func CompileFile(path string, phase Phase) int {
	source, err := preprocess(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return ExitIO
	}

	errs := diag.NewHandler()
	code := CompileSource(source, phase, errs)
	if errs.HasErrors() {
		errs.Report()
		return ExitDiag
	}
	if phase < PhaseCodegen {
		return ExitOK
	}

	if phase == PhaseCodegen {
		fmt.Printf("%s", code)
		return ExitOK
	}

	asmPath := stemPath(path) + ".s"
	if err := os.WriteFile(asmPath, []byte(code), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", errors.Wrapf(err, "writing %s", asmPath))
		return ExitIO
	}

	binPath := stemPath(path)
	wd := filepath.Dir(path)
	if _, err := utils.ExecuteCmd(wd, "gcc", asmPath, "-o", binPath); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", errors.Wrapf(err, "assembling %s", asmPath))
		return ExitIO
	}
	return ExitOK
}
