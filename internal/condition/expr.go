// Package condition parses and evaluates the condition expressions used
// by trigger rules. Expressions are parsed once into a typed tree;
// anything unparseable fails closed to false.
package condition

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/alexanderramin/muse/internal/domain"
)

// Kind discriminates the expression variants.
type Kind int

const (
	// KindCompare is a relational comparison against a number, e.g. "> 40".
	KindCompare Kind = iota
	// KindKeyword matches a categorical value by its literal name, e.g.
	// "increasing" or "end_sentence".
	KindKeyword
	// KindBool is a boolean literal.
	KindBool
)

// CompareOp is a relational operator.
type CompareOp string

const (
	OpGT  CompareOp = ">"
	OpLT  CompareOp = "<"
	OpGTE CompareOp = ">="
	OpLTE CompareOp = "<="
	OpEQ  CompareOp = "="
)

// Expr is one parsed condition expression.
type Expr struct {
	Kind    Kind
	Op      CompareOp
	Operand float64
	Keyword string
	Bool    bool
}

// Parse turns an expression string into a typed Expr.
// Supported forms: relational numeric ("> 40", "<= 0.05"), trend or
// categorical keywords ("increasing", "end_sentence"), and boolean
// literals ("true"/"false").
func Parse(input string) (Expr, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Expr{}, fmt.Errorf("empty expression")
	}

	switch s {
	case "true":
		return Expr{Kind: KindBool, Bool: true}, nil
	case "false":
		return Expr{Kind: KindBool, Bool: false}, nil
	}

	if op, rest, ok := splitOperator(s); ok {
		operand, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
		if err != nil {
			return Expr{}, fmt.Errorf("operator %q needs a numeric operand, got %q", op, strings.TrimSpace(rest))
		}
		return Expr{Kind: KindCompare, Op: op, Operand: operand}, nil
	}

	if isKeyword(s) {
		return Expr{Kind: KindKeyword, Keyword: s}, nil
	}

	return Expr{}, fmt.Errorf("unparseable expression %q", input)
}

func splitOperator(s string) (CompareOp, string, bool) {
	switch {
	case strings.HasPrefix(s, ">="):
		return OpGTE, s[2:], true
	case strings.HasPrefix(s, "<="):
		return OpLTE, s[2:], true
	case strings.HasPrefix(s, ">"):
		return OpGT, s[1:], true
	case strings.HasPrefix(s, "<"):
		return OpLT, s[1:], true
	case strings.HasPrefix(s, "="):
		return OpEQ, s[1:], true
	}
	return "", "", false
}

func isKeyword(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '_' {
			return false
		}
	}
	return true
}

// Eval applies the expression to one metric value. Type mismatches
// (keyword expression against a number and vice versa) evaluate to
// false rather than erroring: a mismatched rule simply never fires.
func (e Expr) Eval(value domain.MetricValue) bool {
	switch e.Kind {
	case KindCompare:
		if value.IsWord {
			return false
		}
		switch e.Op {
		case OpGT:
			return value.Number > e.Operand
		case OpLT:
			return value.Number < e.Operand
		case OpGTE:
			return value.Number >= e.Operand
		case OpLTE:
			return value.Number <= e.Operand
		case OpEQ:
			return value.Number == e.Operand
		}
		return false
	case KindKeyword:
		return value.IsWord && value.Keyword == e.Keyword
	case KindBool:
		if value.IsWord {
			return (value.Keyword == "true") == e.Bool
		}
		return (value.Number != 0) == e.Bool
	}
	return false
}

// Evaluate is the one-shot convenience form: parse plus eval, false on
// any parse failure.
func Evaluate(value domain.MetricValue, expression string) bool {
	expr, err := Parse(expression)
	if err != nil {
		return false
	}
	return expr.Eval(value)
}
