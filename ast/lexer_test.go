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

func tokenize(t *testing.T, source string) ([]Token, *diag.Handler) {
	t.Helper()
	errs := diag.NewHandler()
	lexer := NewLexerFromString(source, errs)
	return lexer.Tokenize(), errs
}

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Kind)
	}
	return out
}

func TestTokenizeReturn(t *testing.T) {
	tokens, errs := tokenize(t, "int main(void){return 2;}")
	require.False(t, errs.HasErrors())
	require.Equal(t, []TokenKind{
		KW_INT, TK_IDENT, TK_LPAREN, KW_VOID, TK_RPAREN, TK_LBRACE,
		KW_RETURN, LIT_INT, TK_SEMICOLON, TK_RBRACE, TK_EOF,
	}, kinds(tokens))
	assert.Equal(t, "main", tokens[1].Lexeme)
	assert.Equal(t, 2, tokens[7].Value)
}

func TestTokenizeOperators(t *testing.T) {
	tokens, errs := tokenize(t, "+ - * / % ~ ! == != < <= > >= && || ? : =")
	require.False(t, errs.HasErrors())
	require.Equal(t, []TokenKind{
		TK_PLUS, TK_MINUS, TK_TIMES, TK_DIV, TK_MOD, TK_BITNOT, TK_LOGNOT,
		TK_EQ, TK_NE, TK_LT, TK_LE, TK_GT, TK_GE, TK_LOGAND, TK_LOGOR,
		TK_QUESTION, TK_COLON, TK_ASSIGN, TK_EOF,
	}, kinds(tokens))
}

func TestTokenizeKeywords(t *testing.T) {
	tokens, errs := tokenize(t, "int void return if else while do for break continue intx")
	require.False(t, errs.HasErrors())
	require.Equal(t, []TokenKind{
		KW_INT, KW_VOID, KW_RETURN, KW_IF, KW_ELSE, KW_WHILE, KW_DO,
		KW_FOR, KW_BREAK, KW_CONTINUE, TK_IDENT, TK_EOF,
	}, kinds(tokens))
	assert.Equal(t, "intx", tokens[10].Lexeme)
}

func TestTokenizeLines(t *testing.T) {
	tokens, errs := tokenize(t, "int\nmain\n\n42")
	require.False(t, errs.HasErrors())
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 2, tokens[1].Line)
	assert.Equal(t, 4, tokens[2].Line)
}

func TestTokenizeUnknownChar(t *testing.T) {
	_, errs := tokenize(t, "int main # 2")
	require.True(t, errs.HasErrors())
}

func TestTokenizeLoneAmpersand(t *testing.T) {
	_, errs := tokenize(t, "a & b")
	require.True(t, errs.HasErrors())
}
