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
package tacky

import (
	"fmt"

	"github.com/rawatamit/ccomp/ast"
	"github.com/rawatamit/ccomp/diag"
	"github.com/rawatamit/ccomp/utils"
)

// TackyGen lowers resolved functions to Tacky in emit-while-evaluate style:
// genExpr returns the value holding the expression's result and appends the
// side-effecting instructions to the current function's stream.
//
// Both name counters live on the generator, so one compilation gets one
// namespace and repeated compilations are deterministic.
type TackyGen struct {
	errs      *diag.Handler
	instrs    []Instr
	nextTmp   int
	nextLabel int
}

func NewTackyGen(errs *diag.Handler) *TackyGen {
	return &TackyGen{errs: errs}
}

// Gen lowers every function of the translation unit.
func (g *TackyGen) Gen(fns []*ast.FuncDecl) *Program {
	prog := &Program{}
	for _, fn := range fns {
		prog.Functions = append(prog.Functions, g.genFunction(fn))
	}
	return prog
}

func (g *TackyGen) uniqueVar() string {
	name := fmt.Sprintf("tmp.%d", g.nextTmp)
	g.nextTmp++
	return name
}

func (g *TackyGen) uniqueLabel(desc string) string {
	name := fmt.Sprintf("T%s.%d", desc, g.nextLabel)
	g.nextLabel++
	return name
}

// varName mangles a user variable into its IR identifier. Composing the name
// with the declaration scope level keeps shadowing declarations apart without
// a renaming pass.
func varName(name string, level int) string {
	return fmt.Sprintf("%s_scope_level%d", name, level)
}

func breakLabel(loopId int) string {
	return fmt.Sprintf("break.%d", loopId)
}

func continueLabel(loopId int) string {
	return fmt.Sprintf("continue.%d", loopId)
}

func (g *TackyGen) emit(in Instr) {
	g.instrs = append(g.instrs, in)
}

func (g *TackyGen) genFunction(fn *ast.FuncDecl) *Function {
	g.instrs = make([]Instr, 0)
	g.genStmt(fn.Body)

	// Every function falls off its end into return 0, so the stream always
	// has a terminator even when the source has no explicit return.
	g.emit(Return{Value: Constant{Value: 0}})
	return &Function{Name: fn.Name, Instrs: g.instrs}
}

func (g *TackyGen) genStmt(stmt ast.AstStmt) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		for _, inner := range s.Stmts {
			g.genStmt(inner)
		}
	case *ast.SimpleStmt:
		g.genExpr(s.Expr)
	case *ast.DeclStmt:
		if s.Init != nil {
			src := g.genExpr(s.Init)
			g.emit(Copy{Src: src, Dst: Var{Identifier: varName(s.Name, s.ScopeLevel)}})
		}
	case *ast.IfStmt:
		g.genIf(s)
	case *ast.ReturnStmt:
		if s.Expr != nil {
			g.emit(Return{Value: g.genExpr(s.Expr)})
		} else {
			g.emit(Return{Value: Constant{Value: 0}})
		}
	case *ast.WhileStmt:
		// continue.N:
		//   c = <cond>
		//   jumpz c, break.N
		//   <body>
		//   jump continue.N
		// break.N:
		g.emit(Label{Name: continueLabel(s.LoopId)})
		cond := g.genExpr(s.Cond)
		g.emit(JumpIfZero{Cond: cond, Target: breakLabel(s.LoopId)})
		g.genStmt(s.Body)
		g.emit(Jump{Target: continueLabel(s.LoopId)})
		g.emit(Label{Name: breakLabel(s.LoopId)})
	case *ast.DoWhileStmt:
		// start:
		//   <body>
		// continue.N:
		//   c = <cond>
		//   jumpnz c, start
		// break.N:
		start := g.uniqueLabel("do_start")
		g.emit(Label{Name: start})
		g.genStmt(s.Body)
		g.emit(Label{Name: continueLabel(s.LoopId)})
		cond := g.genExpr(s.Cond)
		g.emit(JumpIfNotZero{Cond: cond, Target: start})
		g.emit(Label{Name: breakLabel(s.LoopId)})
	case *ast.ForStmt:
		//   <init>
		// start:
		//   c = <cond>        (if present)
		//   jumpz c, break.N
		//   <body>
		// continue.N:
		//   <post>
		//   jump start
		// break.N:
		if s.Init != nil {
			g.genStmt(s.Init)
		}
		start := g.uniqueLabel("for_start")
		g.emit(Label{Name: start})
		if s.Cond != nil {
			cond := g.genExpr(s.Cond)
			g.emit(JumpIfZero{Cond: cond, Target: breakLabel(s.LoopId)})
		}
		g.genStmt(s.Body)
		g.emit(Label{Name: continueLabel(s.LoopId)})
		if s.Post != nil {
			g.genExpr(s.Post)
		}
		g.emit(Jump{Target: start})
		g.emit(Label{Name: breakLabel(s.LoopId)})
	case *ast.BreakStmt:
		g.emit(Jump{Target: breakLabel(s.LoopId)})
	case *ast.ContinueStmt:
		g.emit(Jump{Target: continueLabel(s.LoopId)})
	case *ast.NullStmt:
	default:
		utils.ShouldNotReachHere()
	}
}

func (g *TackyGen) genIf(s *ast.IfStmt) {
	cond := g.genExpr(s.Cond)
	end := g.uniqueLabel("if_end")

	if s.Else == nil {
		g.emit(JumpIfZero{Cond: cond, Target: end})
		g.genStmt(s.Then)
	} else {
		elseLabel := g.uniqueLabel("if_else")
		g.emit(JumpIfZero{Cond: cond, Target: elseLabel})
		g.genStmt(s.Then)
		g.emit(Jump{Target: end})
		g.emit(Label{Name: elseLabel})
		g.genStmt(s.Else)
	}
	g.emit(Label{Name: end})
}

func (g *TackyGen) genExpr(expr ast.AstExpr) Value {
	switch e := expr.(type) {
	case *ast.IntExpr:
		return Constant{Value: e.Value}
	case *ast.VarExpr:
		return Var{Identifier: varName(e.Name, e.ScopeLevel)}
	case *ast.UnaryExpr:
		src := g.genExpr(e.Right)
		dst := Var{Identifier: g.uniqueVar()}
		g.emit(Unary{Op: e.Opt, Src: src, Dst: dst})
		return dst
	case *ast.BinaryExpr:
		if e.Opt.IsShortCircuitOp() {
			return g.genLogical(e)
		}
		src1 := g.genExpr(e.Left)
		src2 := g.genExpr(e.Right)
		dst := Var{Identifier: g.uniqueVar()}
		g.emit(Binary{Op: e.Opt, Src1: src1, Src2: src2, Dst: dst})
		return dst
	case *ast.AssignExpr:
		src := g.genExpr(e.Right)
		dst, isVar := g.genExpr(e.Left).(Var)
		// anything else is a resolver bug, not a user error
		utils.Assert(isVar, "assignment target must be a variable")
		g.emit(Copy{Src: src, Dst: dst})
		return dst
	case *ast.TernaryExpr:
		return g.genTernary(e)
	default:
		utils.ShouldNotReachHere()
		return nil
	}
}

// genLogical lowers && and || with short-circuit control flow: the right
// operand's instructions sit behind a conditional jump on the left operand,
// so they only run when the left side cannot already decide the result.
func (g *TackyGen) genLogical(e *ast.BinaryExpr) Value {
	shortLabel := g.uniqueLabel("logical")
	endLabel := g.uniqueLabel("logical")

	jump := func(cond Value) {
		if e.Opt == ast.TK_LOGAND {
			g.emit(JumpIfZero{Cond: cond, Target: shortLabel})
		} else {
			g.emit(JumpIfNotZero{Cond: cond, Target: shortLabel})
		}
	}

	v1 := g.genExpr(e.Left)
	jump(v1)
	v2 := g.genExpr(e.Right)
	jump(v2)

	// && yields 1 when neither jump fired, || yields 0; the short-circuit
	// label holds the opposite.
	success := 0
	if e.Opt == ast.TK_LOGAND {
		success = 1
	}
	result := Var{Identifier: g.uniqueVar()}
	g.emit(Copy{Src: Constant{Value: success}, Dst: result})
	g.emit(Jump{Target: endLabel})
	g.emit(Label{Name: shortLabel})
	g.emit(Copy{Src: Constant{Value: 1 - success}, Dst: result})
	g.emit(Label{Name: endLabel})
	return result
}

func (g *TackyGen) genTernary(e *ast.TernaryExpr) Value {
	cond := g.genExpr(e.Cond)
	elseLabel := g.uniqueLabel("ternary_else")
	g.emit(JumpIfZero{Cond: cond, Target: elseLabel})

	thenVal := g.genExpr(e.Then)
	result := Var{Identifier: g.uniqueVar()}
	g.emit(Copy{Src: thenVal, Dst: result})

	endLabel := g.uniqueLabel("ternary_end")
	g.emit(Jump{Target: endLabel})
	g.emit(Label{Name: elseLabel})

	elseVal := g.genExpr(e.Else)
	g.emit(Copy{Src: elseVal, Dst: result})
	g.emit(Label{Name: endLabel})
	return result
}
