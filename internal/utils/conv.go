package utils

import "strconv"

// StringToInt parses route and query parameters. Anything unparseable maps
// to 0, which callers treat the same as a missing parameter.
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}
