package tracing

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/syifan/goseth"
)

// An ArgEncoder turns the arguments of an activity into a single string that
// can be stored in a table cell.
type ArgEncoder func(args []any) (string, error)

// FormatArgs formats each argument with %v and joins them with commas.
func FormatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = fmt.Sprintf("%v", arg)
	}

	return strings.Join(parts, ", ")
}

// FormatArgEncoder is the ArgEncoder form of FormatArgs.
func FormatArgEncoder(args []any) (string, error) {
	return FormatArgs(args), nil
}

// SethArgs returns an ArgEncoder that serializes the arguments as a JSON
// array, following pointers up to maxDepth levels.
func SethArgs(maxDepth int) ArgEncoder {
	return func(args []any) (string, error) {
		buf := bytes.NewBufferString("[")

		for i, arg := range args {
			if i > 0 {
				buf.WriteString(",")
			}

			if arg == nil {
				buf.WriteString("null")
				continue
			}

			serializer := goseth.NewSerializer()
			serializer.SetRoot(arg)
			serializer.SetMaxDepth(maxDepth)

			err := serializer.Serialize(buf)
			if err != nil {
				return "", fmt.Errorf("argument %d: %w", i, err)
			}
		}

		buf.WriteString("]")

		return buf.String(), nil
	}
}
