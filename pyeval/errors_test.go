// errors_test.go
package pyeval

import (
	"strings"
	"testing"
)

func Test_WrapErrorWithSource_ParseError(t *testing.T) {
	src := "[1, 2"
	_, err := ParseSExpr(src)
	if err == nil {
		t.Fatal("expected parse error")
	}
	wrapped := WrapErrorWithSource(err, src)
	msg := wrapped.Error()
	if !strings.Contains(msg, "PARSE ERROR") {
		t.Fatalf("missing header:\n%s", msg)
	}
	if !strings.Contains(msg, "[1, 2") {
		t.Fatalf("missing source line:\n%s", msg)
	}
	if !strings.Contains(msg, "^") {
		t.Fatalf("missing caret:\n%s", msg)
	}
}

func Test_WrapErrorWithSource_LexError(t *testing.T) {
	src := "1 @ 2"
	_, err := ParseSExpr(src)
	if err == nil {
		t.Fatal("expected lex error")
	}
	wrapped := WrapErrorWithSource(err, src)
	msg := wrapped.Error()
	if !strings.Contains(msg, "LEXICAL ERROR at 1:3") {
		t.Fatalf("wrong header:\n%s", msg)
	}
	// caret under the '@' (column 3)
	if !strings.Contains(msg, "|   ^") {
		t.Fatalf("caret misplaced:\n%s", msg)
	}
}

func Test_WrapErrorWithSource_PassesOthersThrough(t *testing.T) {
	err := &RuntimeError{Msg: "division by zero"}
	if got := WrapErrorWithSource(err, "1/0"); got != error(err) {
		t.Fatalf("runtime errors must pass through unchanged, got %v", got)
	}
}
