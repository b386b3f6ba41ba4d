package edi

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mercuryedi/mercury/internal/model"
)

// FormatElement renders a raw value according to its element spec.
//
// Empty input always renders empty, regardless of spec. Dates already in
// 8-character form pass through unchanged. Numeric values with no
// fractional part render as integers; whole-number elements additionally
// lose any decimal point. Everything else is stringified and silently
// truncated to the spec's maximum length. Mandatory-but-missing handling
// is the caller's concern, not the formatter's.
func FormatElement(value any, spec model.ElementSpec) string {
	if value == nil {
		return ""
	}

	s := stringify(value)
	if s == "" {
		return ""
	}

	if spec.Type == model.ElementTypeDate && len(s) == 8 {
		return s
	}

	switch spec.Type {
	case model.ElementTypeNumeric, model.ElementTypeDecimal, model.ElementTypeReal:
		if f, ok := asFloat(value); ok && f == math.Trunc(f) {
			return strconv.FormatInt(int64(f), 10)
		}
		if spec.Type == model.ElementTypeNumeric {
			return strings.ReplaceAll(s, ".", "")
		}
		return s
	}

	if spec.MaximumLength > 0 && len(s) > spec.MaximumLength {
		s = s[:spec.MaximumLength]
	}

	return s
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
