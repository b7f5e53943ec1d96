package splunk

import (
	"fmt"
	"strings"
	"time"
)

// FormatDatetime renders a timestamp as an ISO-8601 literal for use
// in query text, e.g. "2021-01-01T00:00:00".
func FormatDatetime(ts time.Time) string {
	return ts.Format("2006-01-02T15:04:05")
}

// FormatList renders values as a comma-separated list of double-quoted
// literals, preserving order. Values are not escaped.
func FormatList(values []interface{}) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf(`"%v"`, v)
	}
	return strings.Join(quoted, ",")
}
