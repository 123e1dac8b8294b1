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
	"fmt"
	"strings"

	"github.com/rawatamit/ccomp/utils"
)

// Assembler linearises the rewritten assembly IR to GNU assembler text,
// AT&T syntax, System V prologue/epilogue.
type Assembler struct {
	buf strings.Builder
}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// CodeGen emits the textual assembly for a whole program. The input must
// have been through the rewrite pass already; a Pseudo here is a compiler
// bug.
func CodeGen(prog *Program) string {
	asm := NewAssembler()
	for _, fn := range prog.Functions {
		asm.emitFunction(fn)
	}
	// mark the object as not needing an executable stack
	asm.buf.WriteString(".section .note.GNU-stack,\"\",@progbits\n")
	return asm.buf.String()
}

func (asm *Assembler) emitFunction(fn *Function) {
	fmt.Fprintf(&asm.buf, ".globl %s\n", fn.Name)
	fmt.Fprintf(&asm.buf, "%s:\n", fn.Name)
	asm.emit1("pushq", "%rbp")
	asm.emit2("movq", "%rsp", "%rbp")
	for _, in := range fn.Instrs {
		asm.emit(in)
	}
}

func (asm *Assembler) operand(op Operand) string {
	switch o := op.(type) {
	case Imm:
		return fmt.Sprintf("$%d", o.Value)
	case Register:
		return o.Reg.String()
	case Stack:
		return fmt.Sprintf("-%d(%%rbp)", o.Offset)
	case Pseudo:
		utils.ShouldNotReachHere()
	default:
		utils.ShouldNotReachHere()
	}
	return "<unknown>"
}

// jump targets and label definitions share the local-label prefix so they
// stay out of the object's symbol table
func (asm *Assembler) label(name string) string {
	return ".L_" + name
}

func (asm *Assembler) emit0(mnemonic string) {
	fmt.Fprintf(&asm.buf, "  %s\n", mnemonic)
}

func (asm *Assembler) emit1(mnemonic string, operand string) {
	fmt.Fprintf(&asm.buf, "  %s %s\n", mnemonic, operand)
}

func (asm *Assembler) emit2(mnemonic string, src string, dst string) {
	fmt.Fprintf(&asm.buf, "  %s %s, %s\n", mnemonic, src, dst)
}

func (asm *Assembler) emit(in Instr) {
	switch i := in.(type) {
	case Mov:
		asm.emit2("movl", asm.operand(i.Src), asm.operand(i.Dst))
	case Unary:
		asm.emit1(i.Op.String(), asm.operand(i.Operand))
	case Binary:
		asm.emit2(i.Op.String(), asm.operand(i.Src), asm.operand(i.Dst))
	case Cmp:
		asm.emit2("cmpl", asm.operand(i.Src), asm.operand(i.Dst))
	case Idiv:
		asm.emit1("idivl", asm.operand(i.Operand))
	case Cdq:
		asm.emit0("cdq")
	case Jmp:
		asm.emit1("jmp", asm.label(i.Target))
	case JmpCC:
		asm.emit1("j"+i.Cond.String(), asm.label(i.Target))
	case SetCC:
		asm.emit1("set"+i.Cond.String(), asm.operand(i.Operand))
	case Label:
		fmt.Fprintf(&asm.buf, "%s:\n", asm.label(i.Name))
	case AllocateStack:
		asm.emit2("subq", fmt.Sprintf("$%d", i.Size), "%rsp")
	case Ret:
		asm.emit2("movq", "%rbp", "%rsp")
		asm.emit1("popq", "%rbp")
		asm.emit0("ret")
	default:
		utils.ShouldNotReachHere()
	}
}
