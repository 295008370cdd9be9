package webserver

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRecoveryCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := generateRecoveryCode()
		require.NoError(t, err)
		assert.Len(t, code, 5)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 10000)
		assert.LessOrEqual(t, n, 99999)
		seen[code] = true
	}
	// 200 draws from a 90000-code space should not all collide
	assert.Greater(t, len(seen), 1)
}

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		password, err := generatePassword(9)
		require.NoError(t, err)
		assert.Len(t, password, 9)
		for _, r := range password {
			assert.True(t, strings.ContainsRune(passwordAlphabet, r),
				"unexpected character %q", r)
		}
		seen[password] = true
	}
	assert.Greater(t, len(seen), 1)
}
