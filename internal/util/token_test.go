package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandTokenLengthAndAlphabet(t *testing.T) {
	tok := RandToken(13)
	require.Len(t, tok, 13)
	for _, r := range tok {
		require.True(t, strings.ContainsRune(tokenAlphabet, r))
	}
}
