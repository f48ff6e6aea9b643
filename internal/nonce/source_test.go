package nonce

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSource_State(t *testing.T) {
	p := Source{}
	state := p.State()
	assert.Len(t, state, 64, "Unexpected state length")
	assert.NotEqual(t, state, p.State(), "Two states must differ")
}

func TestSource_SessionID(t *testing.T) {
	p := Source{}
	id := p.SessionID()
	assert.Len(t, id, 32, "Unexpected session id length")
	assert.False(t, strings.Contains(id, "."), "Session id must not contain the cookie separator")
}

func TestSource_Alphabet(t *testing.T) {
	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-"

	p := Source{}
	for _, v := range []string{p.State(), p.SessionID()} {
		assert.Empty(t, strings.Trim(v, alphabet), "Unexpected character in %q", v)
	}
}
