package loggable

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// Hidden replaces argument and return values when ShowArgValues is off.
const Hidden = "***"

// renderArgs renders call arguments for "called with args" lines.
func renderArgs(args []any, show bool) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		if show {
			parts[i] = renderValue(a)
		} else {
			parts[i] = Hidden
		}
	}
	return strings.Join(parts, ", ")
}

// renderResult renders a returned value.
func renderResult(v any, show bool) string {
	if !show {
		return Hidden
	}
	return renderValue(v)
}

// renderValue serializes v as JSON, falling back to its %v form for values
// JSON cannot represent (channels, funcs, cyclic data).
func renderValue(v any) (out string) {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	}

	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("%v", v)
		}
	}()
	s, err := sonic.ConfigStd.MarshalToString(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return s
}
