package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("abc"))
	assert.Equal(t, "", BearerToken(""))
	// only a leading prefix is stripped
	assert.Equal(t, "xBearer abc", BearerToken("xBearer abc"))
}
