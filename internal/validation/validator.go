// Package validation implements the layered input validation for quote
// requests: string coercion, malicious-pattern rejection, decimal-exact
// numeric parsing and range bounding. Each field goes through the layers in
// order and the first failing layer decides the error for that field.
package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maliciousPatterns covers the injection shapes rejected before any numeric
// parsing happens: XSS vectors, inline event handlers, HTML tags, shell
// metacharacters and SQL keywords.
var maliciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script.*?>.*?</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)<.*?>`),
	regexp.MustCompile("[;&|`$]"),
	regexp.MustCompile(`(?i)union\s+select`),
	regexp.MustCompile(`(?i)drop\s+table`),
	regexp.MustCompile(`(?i)insert\s+into`),
	regexp.MustCompile(`(?i)delete\s+from`),
}

// Bound is an inclusive field limit. Display is the text rendered in
// violation messages; it preserves the exact source notation ("50.0" stays
// "50.0") where Decimal.String would trim trailing zeros.
type Bound struct {
	Value   decimal.Decimal
	Display string
}

// NewBound parses s as a decimal bound, keeping s as the display text.
// It panics on unparseable input, so bounds are package-level constants in
// practice.
func NewBound(s string) *Bound {
	return &Bound{Value: decimal.RequireFromString(s), Display: s}
}

// Validator checks raw request field values against the defense layers.
// It only emits logs: a warning when a malicious pattern is rejected and an
// error when a validation step fails unexpectedly.
type Validator struct {
	logger *zap.Logger
}

// New creates a Validator with the injected logger.
func New(logger *zap.Logger) *Validator {
	return &Validator{logger: logger}
}

// Field validates a single raw field value and returns the parsed decimal or
// a descriptive error whose text is safe to show to the caller. min and max
// are inclusive bounds; either may be nil. Field never panics: an unexpected
// failure in any layer is recovered and reported as a generic validation
// error for the field.
func (v *Validator) Field(raw json.RawMessage, field string, min, max *Bound) (val decimal.Decimal, err error) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("validation panic",
				zap.String("field", field),
				zap.Any("panic", r),
			)
			val = decimal.Decimal{}
			err = fmt.Errorf("Validation error for %s", field)
		}
	}()

	str := coerce(raw)
	if str == "" {
		return decimal.Decimal{}, fmt.Errorf("%s cannot be empty", field)
	}

	for _, pattern := range maliciousPatterns {
		if pattern.MatchString(str) {
			v.logger.Warn("malicious pattern detected",
				zap.String("field", field),
				zap.String("value", str),
			)
			return decimal.Decimal{}, fmt.Errorf("Invalid characters detected in %s", field)
		}
	}

	d, parseErr := decimal.NewFromString(str)
	if parseErr != nil {
		return decimal.Decimal{}, fmt.Errorf("%s must be a valid number", field)
	}

	if min != nil && d.LessThan(min.Value) {
		return decimal.Decimal{}, fmt.Errorf("%s must be at least %s", field, min.Display)
	}
	if max != nil && d.GreaterThan(max.Value) {
		return decimal.Decimal{}, fmt.Errorf("%s must be no more than %s", field, max.Display)
	}

	return d, nil
}

// coerce turns the raw JSON value into a trimmed string. JSON strings are
// unquoted first; any other value keeps its original JSON text, so numeric
// literals reach the decimal parser without a float round-trip. Absent and
// null values coerce to the empty string.
func coerce(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	str := strings.TrimSpace(string(raw))
	if str == "null" {
		return ""
	}
	return str
}
