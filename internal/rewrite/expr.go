package rewrite

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// HCLEvaluator implements Evaluator on top of hashicorp/hcl's expression
// syntax and zclconf/go-cty's typed values. hclsyntax parses a bare
// expression (not a whole HCL body), giving a textual arithmetic/string
// expression surface: arithmetic, comparison, boolean operators, and string
// interpolation/concatenation.
type HCLEvaluator struct{}

// Evaluate implements Evaluator.
func (HCLEvaluator) Evaluate(vars map[string]string, expr, decimalPlaces string, warn WarnFunc) (string, error) {
	parsed, diags := hclsyntax.ParseExpression([]byte(expr), "transformation", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return "", fmt.Errorf("%w: %s", ErrEvaluationFailed, diags.Error())
	}

	ctx := &hcl.EvalContext{Variables: make(map[string]cty.Value, len(vars))}
	for name, literal := range vars {
		ctx.Variables[name] = typedCtyValue(literal)
	}

	result, diags := parsed.Value(ctx)
	if diags.HasErrors() {
		return "", fmt.Errorf("%w: %s", ErrEvaluationFailed, diags.Error())
	}

	return formatResult(result, decimalPlaces, warn), nil
}

// typedCtyValue types a captured variable's literal: signed 64-bit integer
// first, then 64-bit float, else string.
func typedCtyValue(literal string) cty.Value {
	if i, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return cty.NumberIntVal(i)
	}
	if f, err := strconv.ParseFloat(literal, 64); err == nil {
		return cty.NumberFloatVal(f)
	}
	return cty.StringVal(literal)
}

// formatResult renders an evaluated cty.Value as the output text.
//
// cty folds integers and floats into a single arbitrary-precision Number
// type. Without a decimal_places option, formatting an int-valued and a
// float-valued Number the same way produces identical minimal-decimal text,
// so they don't need to stay distinguished here.
func formatResult(v cty.Value, decimalPlaces string, warn WarnFunc) string {
	if v.IsNull() {
		warn("empty_value", "expression evaluated to null")
		return ""
	}

	switch {
	case v.Type() == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		if decimalPlaces == "" {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		n, err := strconv.Atoi(decimalPlaces)
		if err != nil || n < 0 {
			warn("decimal_places_not_parsable", fmt.Sprintf("%s: %v", decimalPlaces, err))
			return decimalPlaces
		}
		return strconv.FormatFloat(f, 'f', n, 64)

	case v.Type() == cty.String:
		return stripMatchedQuotes(v.AsString())

	default:
		converted, err := convert(v)
		if err != nil {
			warn("empty_value", "expression evaluated to an unsupported type")
			return ""
		}
		return stripMatchedQuotes(converted)
	}
}

// stripMatchedQuotes removes exactly one leading and one trailing ASCII
// double quote when both are present.
func stripMatchedQuotes(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}

// convert renders a non-numeric, non-string cty.Value (typically Bool) as
// text for the default branch of the result-formatting rules.
func convert(v cty.Value) (string, error) {
	if v.Type() == cty.Bool {
		if v.True() {
			return "true", nil
		}
		return "false", nil
	}
	return "", fmt.Errorf("unsupported result type %s", v.Type().FriendlyName())
}
