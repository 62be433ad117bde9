package track

import "reflect"

// Ready-made extractors for common call shapes. Pass them to
// WithQueryExtractor, WithCountExtractor, and WithContextExtractor.

// QueryFromString reports a string argument as the query. Non-string
// arguments yield "" and fall back to the wrapper's default.
func QueryFromString(arg, _ any) string {
	s, _ := arg.(string)
	return s
}

// CountFromSlice reports the length of a slice, array, or map result.
func CountFromSlice(result any) int {
	if result == nil {
		return 0
	}
	v := reflect.ValueOf(result)
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return v.Len()
	}
	return 0
}

// CountFromResults reports the length of the "results" entry of a map
// result, for handlers that return a response document rather than a
// bare list.
func CountFromResults(result any) int {
	m, ok := result.(map[string]any)
	if !ok {
		return 0
	}
	return CountFromSlice(m["results"])
}

// PatternInfoFromResult reads pattern_match fields from a map result,
// substituting defaults for missing keys. The "unknown" match type
// default fails envelope validation, so results that carry no match
// type produce no event.
func PatternInfoFromResult(_, result any) map[string]any {
	info := map[string]any{
		"pattern":    "unknown",
		"confidence": 0.0,
		"match_type": "unknown",
	}
	m, ok := result.(map[string]any)
	if !ok {
		return info
	}
	for key := range info {
		if v, present := m[key]; present {
			info[key] = v
		}
	}
	return info
}
