package rewrite

import "errors"

// ErrEvaluationFailed is returned when an expression fails to parse or
// evaluate. It is fatal to the whole transform.
var ErrEvaluationFailed = errors.New("expression evaluation failed")
