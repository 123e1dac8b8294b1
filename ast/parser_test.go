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
package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawatamit/ccomp/diag"
)

func parse(t *testing.T, source string) ([]*FuncDecl, *diag.Handler) {
	t.Helper()
	errs := diag.NewHandler()
	tokens := NewLexerFromString(source, errs).Tokenize()
	require.False(t, errs.HasErrors(), "unexpected lex errors: %v", errs.Errors())
	return NewParser(tokens, errs).Parse(), errs
}

func parseOK(t *testing.T, source string) []*FuncDecl {
	t.Helper()
	fns, errs := parse(t, source)
	require.False(t, errs.HasErrors(), "unexpected parse errors: %v", errs.Errors())
	return fns
}

func TestParseFunction(t *testing.T) {
	fns := parseOK(t, "int main(void){return 2;}")
	require.Len(t, fns, 1)
	assert.Equal(t, "main", fns[0].Name)
	assert.Empty(t, fns[0].Params)
	require.Len(t, fns[0].Body.Stmts, 1)

	ret, ok := fns[0].Body.Stmts[0].(*ReturnStmt)
	require.True(t, ok)
	lit, ok := ret.Expr.(*IntExpr)
	require.True(t, ok)
	assert.Equal(t, 2, lit.Value)
}

func TestParseParams(t *testing.T) {
	fns := parseOK(t, "int add(int a, int b){return 0;}")
	require.Len(t, fns, 1)
	assert.Equal(t, []string{"a", "b"}, fns[0].Params)
}

func TestParsePrecedence(t *testing.T) {
	fns := parseOK(t, "int main(void){return 1+2*3;}")
	ret := fns[0].Body.Stmts[0].(*ReturnStmt)

	add, ok := ret.Expr.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, TK_PLUS, add.Opt)

	mul, ok := add.Right.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, TK_TIMES, mul.Opt)
}

func TestParseLeftAssociativity(t *testing.T) {
	fns := parseOK(t, "int main(void){return 10-4-3;}")
	ret := fns[0].Body.Stmts[0].(*ReturnStmt)

	// (10-4)-3, not 10-(4-3)
	outer, ok := ret.Expr.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, TK_MINUS, outer.Opt)
	inner, ok := outer.Left.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, TK_MINUS, inner.Opt)
}

func TestParseUnaryNesting(t *testing.T) {
	fns := parseOK(t, "int main(void){return ~(-5);}")
	ret := fns[0].Body.Stmts[0].(*ReturnStmt)

	not, ok := ret.Expr.(*UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, TK_BITNOT, not.Opt)
	neg, ok := not.Right.(*UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, TK_MINUS, neg.Opt)
}

func TestParseTernary(t *testing.T) {
	fns := parseOK(t, "int main(void){return 1 ? 2 : 3 ? 4 : 5;}")
	ret := fns[0].Body.Stmts[0].(*ReturnStmt)

	// ternary is right associative: 1 ? 2 : (3 ? 4 : 5)
	outer, ok := ret.Expr.(*TernaryExpr)
	require.True(t, ok)
	_, ok = outer.Else.(*TernaryExpr)
	require.True(t, ok)
}

func TestParseAssignRightAssociative(t *testing.T) {
	fns := parseOK(t, "int main(void){int a; int b; a = b = 1; return a;}")
	stmt := fns[0].Body.Stmts[2].(*SimpleStmt)

	outer, ok := stmt.Expr.(*AssignExpr)
	require.True(t, ok)
	_, ok = outer.Right.(*AssignExpr)
	require.True(t, ok)
}

func TestParseShortCircuitPrecedence(t *testing.T) {
	fns := parseOK(t, "int main(void){return 1 || 0 && 0;}")
	ret := fns[0].Body.Stmts[0].(*ReturnStmt)

	// && binds tighter: 1 || (0 && 0)
	or, ok := ret.Expr.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, TK_LOGOR, or.Opt)
	and, ok := or.Right.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, TK_LOGAND, and.Opt)
}

func TestParseIfElse(t *testing.T) {
	fns := parseOK(t, `
	int main(void) {
		if (1)
			return 2;
		else
			return 3;
	}`)
	stmt, ok := fns[0].Body.Stmts[0].(*IfStmt)
	require.True(t, ok)
	require.NotNil(t, stmt.Else)
}

func TestParseDanglingElse(t *testing.T) {
	fns := parseOK(t, "int main(void){ if (1) if (0) return 1; else return 2; return 3; }")
	outer := fns[0].Body.Stmts[0].(*IfStmt)
	// else binds to the nearest if
	require.Nil(t, outer.Else)
	inner, ok := outer.Then.(*IfStmt)
	require.True(t, ok)
	require.NotNil(t, inner.Else)
}

func TestParseLoops(t *testing.T) {
	fns := parseOK(t, `
	int main(void) {
		int r = 0;
		while (r < 3) r = r + 1;
		do r = r - 1; while (r > 0);
		for (int i = 0; i < 5; i = i + 1) { if (i == 3) break; else continue; }
		for (;;) break;
		return r;
	}`)
	body := fns[0].Body.Stmts
	require.Len(t, body, 6)

	_, ok := body[1].(*WhileStmt)
	require.True(t, ok)
	_, ok = body[2].(*DoWhileStmt)
	require.True(t, ok)

	forStmt, ok := body[3].(*ForStmt)
	require.True(t, ok)
	_, ok = forStmt.Init.(*DeclStmt)
	require.True(t, ok)
	require.NotNil(t, forStmt.Cond)
	require.NotNil(t, forStmt.Post)

	bare, ok := body[4].(*ForStmt)
	require.True(t, ok)
	assert.Nil(t, bare.Init)
	assert.Nil(t, bare.Cond)
	assert.Nil(t, bare.Post)
}

func TestParseDeclWithoutInit(t *testing.T) {
	fns := parseOK(t, "int main(void){int a; return 0;}")
	decl, ok := fns[0].Body.Stmts[0].(*DeclStmt)
	require.True(t, ok)
	assert.Equal(t, "a", decl.Name)
	assert.Nil(t, decl.Init)
}

func TestParseNullStatement(t *testing.T) {
	fns := parseOK(t, "int main(void){;; return 0;}")
	_, ok := fns[0].Body.Stmts[0].(*NullStmt)
	require.True(t, ok)
}

func TestParseSyntaxError(t *testing.T) {
	_, errs := parse(t, "int main(void){return 2}")
	require.True(t, errs.HasErrors())
}

func TestParseMissingExpression(t *testing.T) {
	_, errs := parse(t, "int main(void){return +;}")
	require.True(t, errs.HasErrors())
}
