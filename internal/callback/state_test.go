package callback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeState(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "abc123", "abc123"},
		{"meta fragment", "abc123#_=_", "abc123"},
		{"fragment only suffix", "abc123#anything=else", "abc123"},
		{"trailing filler", "abc123_=", "abc123"},
		{"surrounding whitespace", "  abc123  ", "abc123"},
		{"whitespace then filler", " abc123_= ", "abc123"},
		{"empty", "", ""},
		{"underscore inside kept", "ab_c123", "ab_c123"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeState(tc.in))
		})
	}
}

func TestNormalizeStateIdempotent(t *testing.T) {
	inputs := []string{
		"abc123#_=_",
		"  user-uid_= ",
		"plain",
		"trailing_ ",
		"#fragment",
	}
	for _, in := range inputs {
		once := NormalizeState(in)
		assert.Equal(t, once, NormalizeState(once), "input %q", in)
	}
}
