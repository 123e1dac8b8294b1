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

// Package diag collects non-fatal diagnostics. Passes push errors and keep
// going where they can; the driver checks the handler between stages.
package diag

import (
	"fmt"
	"io"
	"os"
)

type Error struct {
	Line    int
	Where   string
	Message string
}

func (e Error) String() string {
	return fmt.Sprintf("[line %d] Error%s: %s", e.Line, e.Where, e.Message)
}

type Handler struct {
	errors []Error
}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Add(line int, where string, message string) {
	h.errors = append(h.errors, Error{Line: line, Where: where, Message: message})
}

func (h *Handler) HasErrors() bool {
	return len(h.errors) > 0
}

func (h *Handler) Errors() []Error {
	return h.errors
}

func (h *Handler) Clear() {
	h.errors = nil
}

func (h *Handler) Report() {
	h.ReportTo(os.Stderr)
}

func (h *Handler) ReportTo(w io.Writer) {
	for _, e := range h.errors {
		fmt.Fprintln(w, e.String())
	}
}
