package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ToString converts various types to string. Vendor JSON files carry
// attribute values as strings, numbers, or booleans depending on the
// vendor; the engine works on strings.
func ToString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		// JSON numbers decode as float64; integral values must not pick up
		// a trailing ".000000".
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToBool converts various types to bool. It handles bool, numeric types
// (1=true), and strings ("1", "true", "Y").
func ToBool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case float64:
		return v == 1
	case int:
		return v == 1
	case string:
		s := strings.ToLower(v)
		return s == "1" || s == "true" || s == "y" || s == "yes"
	case []byte:
		return ToBool(string(v))
	default:
		return false
	}
}
