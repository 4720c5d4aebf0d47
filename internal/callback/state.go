package callback

import "strings"

// NormalizeState strips the transport mangling Meta applies to the state
// parameter before it can be compared to the user id: everything from
// the first '#' on (Meta appends #_=_ style fragments), trailing '_'/'='
// filler, and surrounding whitespace. The function is idempotent.
func NormalizeState(state string) string {
	if i := strings.IndexByte(state, '#'); i >= 0 {
		state = state[:i]
	}
	state = strings.TrimSpace(state)
	state = strings.TrimRight(state, "_=")
	return strings.TrimSpace(state)
}
