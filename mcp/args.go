package mcp

// StringArg returns a string argument, or fallback when the argument is
// absent, empty, or not a string.
func StringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// NumberArg returns a numeric argument. JSON numbers decode as float64.
func NumberArg(args map[string]any, key string) (float64, bool) {
	v, ok := args[key].(float64)
	return v, ok
}

// IntArg returns a numeric argument truncated to int.
func IntArg(args map[string]any, key string) (int, bool) {
	v, ok := args[key].(float64)
	return int(v), ok
}
