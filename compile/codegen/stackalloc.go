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
	"github.com/rawatamit/ccomp/utils"
)

// ------------------------------------------------------------------------------
// Rewrite pass
//
// There is no register allocation; every pseudo becomes a 4-byte stack slot.
// Replacing pseudos with memory operands creates operand combinations the
// ISA rejects (memory-to-memory moves, immediate divisors, ...), so each
// instruction is then expanded through the scratch registers: r10d carries
// sources of memory-memory forms and division, r11d carries imul's
// destination and cmp's immediate second operand. Every expansion consumes
// its scratch within the burst, so the scratches are never live across
// instructions.

type stackAllocator struct {
	offsets   map[string]int
	frameSize int
}

// ReplacePseudos rewrites every function so that no Pseudo operand remains
// and every instruction honours the ISA operand constraints. The first
// instruction of each rewritten function allocates the frame.
func ReplacePseudos(prog *Program) *Program {
	out := &Program{}
	for _, fn := range prog.Functions {
		out.Functions = append(out.Functions, replaceFunction(fn))
	}
	return out
}

func replaceFunction(fn *Function) *Function {
	alloc := &stackAllocator{offsets: make(map[string]int)}
	instrs := make([]Instr, 0, len(fn.Instrs)+1)
	for _, in := range fn.Instrs {
		instrs = append(instrs, alloc.rewrite(in)...)
	}

	out := &Function{Name: fn.Name}
	out.Instrs = append(out.Instrs, AllocateStack{Size: alloc.frameSize})
	out.Instrs = append(out.Instrs, instrs...)
	return out
}

// operand replaces a Pseudo with its stack slot, binding a fresh slot on
// first sight. Stack operands are outputs of this pass, never inputs.
func (a *stackAllocator) operand(op Operand) Operand {
	switch o := op.(type) {
	case Pseudo:
		offset, ok := a.offsets[o.Name]
		if !ok {
			a.frameSize += 4
			offset = a.frameSize
			a.offsets[o.Name] = offset
		}
		return Stack{Offset: offset}
	case Imm, Register:
		return op
	case Stack:
		utils.ShouldNotReachHere()
		return nil
	default:
		utils.ShouldNotReachHere()
		return nil
	}
}

func isStack(op Operand) bool {
	_, ok := op.(Stack)
	return ok
}

func isImm(op Operand) bool {
	_, ok := op.(Imm)
	return ok
}

func (a *stackAllocator) rewrite(in Instr) []Instr {
	switch i := in.(type) {
	case Mov:
		src := a.operand(i.Src)
		dst := a.operand(i.Dst)
		if isStack(src) && isStack(dst) {
			// movl mem, mem is not encodable
			r10 := Register{Reg: R10}
			return []Instr{
				Mov{Src: src, Dst: r10},
				Mov{Src: r10, Dst: dst},
			}
		}
		return []Instr{Mov{Src: src, Dst: dst}}

	case Cmp:
		src := a.operand(i.Src)
		dst := a.operand(i.Dst)
		if isStack(src) && isStack(dst) {
			r10 := Register{Reg: R10}
			return []Instr{
				Mov{Src: src, Dst: r10},
				Cmp{Src: r10, Dst: dst},
			}
		}
		if isImm(dst) {
			// cmpl's second operand cannot be an immediate
			r11 := Register{Reg: R11}
			return []Instr{
				Mov{Src: dst, Dst: r11},
				Cmp{Src: src, Dst: r11},
			}
		}
		return []Instr{Cmp{Src: src, Dst: dst}}

	case Binary:
		src := a.operand(i.Src)
		dst := a.operand(i.Dst)
		switch i.Op {
		case ADDL, SUBL:
			if isStack(src) && isStack(dst) {
				r10 := Register{Reg: R10}
				return []Instr{
					Mov{Src: src, Dst: r10},
					Binary{Op: i.Op, Src: r10, Dst: dst},
				}
			}
		case IMULL:
			if isStack(dst) {
				// imull cannot target memory
				r11 := Register{Reg: R11}
				return []Instr{
					Mov{Src: dst, Dst: r11},
					Binary{Op: IMULL, Src: src, Dst: r11},
					Mov{Src: r11, Dst: dst},
				}
			}
		}
		return []Instr{Binary{Op: i.Op, Src: src, Dst: dst}}

	case Idiv:
		op := a.operand(i.Operand)
		if isImm(op) {
			r10 := Register{Reg: R10}
			return []Instr{
				Mov{Src: op, Dst: r10},
				Idiv{Operand: r10},
			}
		}
		return []Instr{Idiv{Operand: op}}

	case Unary:
		return []Instr{Unary{Op: i.Op, Operand: a.operand(i.Operand)}}

	case SetCC:
		return []Instr{SetCC{Cond: i.Cond, Operand: a.operand(i.Operand)}}

	case Cdq, Jmp, JmpCC, Label, Ret:
		return []Instr{in}

	case AllocateStack:
		// produced by this pass, never consumed
		utils.ShouldNotReachHere()
		return nil

	default:
		utils.ShouldNotReachHere()
		return nil
	}
}
