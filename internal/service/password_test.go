package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateTempPassword(t *testing.T) {
	seen := make(map[string]struct{})

	for i := 0; i < 50; i++ {
		pwd, err := generateTempPassword()
		require.NoError(t, err)
		require.Len(t, pwd, tempPasswordLen)
		require.True(t, strings.ContainsAny(pwd, lowerChars), "missing lower in %q", pwd)
		require.True(t, strings.ContainsAny(pwd, upperChars), "missing upper in %q", pwd)
		require.True(t, strings.ContainsAny(pwd, digitChars), "missing digit in %q", pwd)
		require.True(t, strings.ContainsAny(pwd, symbolChars), "missing symbol in %q", pwd)
		seen[pwd] = struct{}{}
	}

	require.Greater(t, len(seen), 1, "generator keeps returning the same password")
}
