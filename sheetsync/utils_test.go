package sheetsync

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeLogin(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ann.Smith", "ann.smith"},
		{"rené", "rene"},
		{"user+tag", "usertag"},
		{"jan_kowalski-2", "jan_kowalski-2"},
		{"Łódź", "odz"}, // Ł has no combining-mark decomposition and is dropped
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeLogin(tt.in), "sanitizeLogin(%q)", tt.in)
	}
}

func TestLoginFromEmail(t *testing.T) {
	assert.Equal(t, "a", loginFromEmail("a@x.com"))
	assert.Equal(t, "jose.garcia", loginFromEmail("José.García@x.com"))
	assert.Equal(t, "noatsign", loginFromEmail("noatsign"))
}

func TestGeneratePassword(t *testing.T) {
	var seen = NewSet[string]()
	for i := 0; i < 32; i++ {
		var p = generatePassword(16)
		assert.Len(t, p, 16)
		for _, r := range p {
			assert.True(t, strings.ContainsRune(passwordAlphabet, r))
		}
		seen.Add(p)
	}
	assert.Greater(t, len(seen), 1, "passwords must not repeat")
}

func TestNormalizeRoles(t *testing.T) {
	var roles = normalizeRoles([]string{" Company ", "editor,ADMIN", "a\nb", "", " "})
	assert.True(t, roles.Has("company"))
	assert.True(t, roles.Has("editor"))
	assert.True(t, roles.Has("admin"))
	assert.True(t, roles.Has("a"))
	assert.True(t, roles.Has("b"))
	assert.Len(t, roles, 5)
}

func TestToInt64(t *testing.T) {
	v, ok := toInt64("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), v)

	_, ok = toInt64("")
	assert.False(t, ok)

	_, ok = toInt64("x1")
	assert.False(t, ok)

	v, ok = toInt64(float64(7))
	assert.True(t, ok)
	assert.Equal(t, int64(7), v)

	_, ok = toInt64(nil)
	assert.False(t, ok)
}
