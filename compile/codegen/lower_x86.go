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
package codegen

import (
	"github.com/rawatamit/ccomp/ast"
	"github.com/rawatamit/ccomp/compile/tacky"
	"github.com/rawatamit/ccomp/utils"
)

// ------------------------------------------------------------------------------
// Instruction selection
//
// One pass over the Tacky stream. Each instruction maps to a short burst of
// assembly instructions; Tacky variables become Pseudo operands, to be
// replaced by stack slots in the rewrite pass.

// Lower selects instructions for a whole program. The result still contains
// Pseudo operands.
func Lower(prog *tacky.Program) *Program {
	out := &Program{}
	for _, fn := range prog.Functions {
		out.Functions = append(out.Functions, lowerFunction(fn))
	}
	return out
}

func lowerFunction(fn *tacky.Function) *Function {
	out := &Function{Name: fn.Name}
	for _, in := range fn.Instrs {
		out.Instrs = append(out.Instrs, lowerInstr(in)...)
	}
	return out
}

func lowerValue(v tacky.Value) Operand {
	switch val := v.(type) {
	case tacky.Constant:
		return Imm{Value: val.Value}
	case tacky.Var:
		return Pseudo{Name: val.Identifier}
	default:
		utils.ShouldNotReachHere()
		return nil
	}
}

func condCode(op ast.TokenKind) CondCode {
	switch op {
	case ast.TK_EQ:
		return CC_E
	case ast.TK_NE:
		return CC_NE
	case ast.TK_LT:
		return CC_L
	case ast.TK_LE:
		return CC_LE
	case ast.TK_GT:
		return CC_G
	case ast.TK_GE:
		return CC_GE
	}
	utils.ShouldNotReachHere()
	return 0
}

func lowerInstr(in tacky.Instr) []Instr {
	switch i := in.(type) {
	case tacky.Copy:
		return []Instr{Mov{Src: lowerValue(i.Src), Dst: lowerValue(i.Dst)}}
	case tacky.Unary:
		return lowerUnary(i)
	case tacky.Binary:
		return lowerBinary(i)
	case tacky.Jump:
		return []Instr{Jmp{Target: i.Target}}
	case tacky.JumpIfZero:
		return []Instr{
			Cmp{Src: Imm{Value: 0}, Dst: lowerValue(i.Cond)},
			JmpCC{Cond: CC_E, Target: i.Target},
		}
	case tacky.JumpIfNotZero:
		return []Instr{
			Cmp{Src: Imm{Value: 0}, Dst: lowerValue(i.Cond)},
			JmpCC{Cond: CC_NE, Target: i.Target},
		}
	case tacky.Label:
		return []Instr{Label{Name: i.Name}}
	case tacky.Return:
		return []Instr{
			Mov{Src: lowerValue(i.Value), Dst: Register{Reg: AX}},
			Ret{},
		}
	default:
		utils.ShouldNotReachHere()
		return nil
	}
}

func lowerUnary(i tacky.Unary) []Instr {
	src := lowerValue(i.Src)
	dst := lowerValue(i.Dst)

	switch i.Op {
	case ast.TK_LOGNOT:
		// !x is x == 0
		return []Instr{
			Cmp{Src: Imm{Value: 0}, Dst: src},
			Mov{Src: Imm{Value: 0}, Dst: dst},
			SetCC{Cond: CC_E, Operand: dst},
		}
	case ast.TK_BITNOT:
		return []Instr{
			Mov{Src: src, Dst: dst},
			Unary{Op: NOTL, Operand: dst},
		}
	case ast.TK_MINUS:
		return []Instr{
			Mov{Src: src, Dst: dst},
			Unary{Op: NEGL, Operand: dst},
		}
	default:
		utils.ShouldNotReachHere()
		return nil
	}
}

func lowerBinary(i tacky.Binary) []Instr {
	src1 := lowerValue(i.Src1)
	src2 := lowerValue(i.Src2)
	dst := lowerValue(i.Dst)

	switch i.Op {
	case ast.TK_DIV, ast.TK_MOD:
		// idivl computes %edx:%eax / operand, quotient in %eax and
		// remainder in %edx.
		resReg := AX
		if i.Op == ast.TK_MOD {
			resReg = DX
		}
		return []Instr{
			Mov{Src: src1, Dst: Register{Reg: AX}},
			Cdq{},
			Idiv{Operand: src2},
			Mov{Src: Register{Reg: resReg}, Dst: dst},
		}
	case ast.TK_PLUS:
		return lowerArith(ADDL, src1, src2, dst)
	case ast.TK_MINUS:
		return lowerArith(SUBL, src1, src2, dst)
	case ast.TK_TIMES:
		return lowerArith(IMULL, src1, src2, dst)
	default:
		utils.Assert(i.Op.IsCmpOp(), "unexpected binary op %v", i.Op)
		return []Instr{
			Cmp{Src: src2, Dst: src1},
			Mov{Src: Imm{Value: 0}, Dst: dst},
			SetCC{Cond: condCode(i.Op), Operand: dst},
		}
	}
}

func lowerArith(op BinaryOp, src1, src2, dst Operand) []Instr {
	return []Instr{
		Mov{Src: src1, Dst: dst},
		Binary{Op: op, Src: src2, Dst: dst},
	}
}
