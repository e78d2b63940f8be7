package output

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// sqlLiteral renders a scanned value as a PostgreSQL literal suitable for
// a generated script.
func sqlLiteral(value interface{}) string {
	if value == nil {
		return "NULL"
	}

	switch v := value.(type) {
	case string:
		// Only quotes need doubling: with standard_conforming_strings
		// (the default) a backslash inside '...' is literal.
		escaped := strings.ReplaceAll(v, "'", "''")
		return fmt.Sprintf("'%s'", escaped)

	case []byte:
		return fmt.Sprintf("'\\x%x'", v)

	case time.Time:
		return fmt.Sprintf("'%s'", v.Format(time.RFC3339Nano))

	case bool:
		if v {
			return "true"
		}
		return "false"

	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)

	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)

	case float32, float64:
		return fmt.Sprintf("%v", v)

	case map[string]interface{}:
		return jsonbLiteral(v)

	case []interface{}:
		return arrayLiteral(v)

	default:
		str := fmt.Sprintf("%v", v)
		escaped := strings.ReplaceAll(str, "'", "''")
		return fmt.Sprintf("'%s'", escaped)
	}
}

// jsonbLiteral renders a decoded jsonb value with sorted keys so repeated
// exports produce identical output.
func jsonbLiteral(m map[string]interface{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(m))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf(`"%s":%s`, k, jsonValue(m[k])))
	}

	return fmt.Sprintf("'{%s}'::jsonb", strings.Join(parts, ","))
}

func jsonValue(value interface{}) string {
	if value == nil {
		return "null"
	}

	switch v := value.(type) {
	case string:
		escaped := strings.ReplaceAll(v, "\\", "\\\\")
		escaped = strings.ReplaceAll(escaped, `"`, `\"`)
		return fmt.Sprintf(`"%s"`, escaped)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64, int, int64:
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf(`"%v"`, v)
	}
}

func arrayLiteral(arr []interface{}) string {
	if len(arr) == 0 {
		return "ARRAY[]"
	}

	elements := make([]string, len(arr))
	for i, elem := range arr {
		elements[i] = sqlLiteral(elem)
	}

	return fmt.Sprintf("ARRAY[%s]", strings.Join(elements, ", "))
}
