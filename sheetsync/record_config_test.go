package sheetsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldMapping(t *testing.T) {
	mapping, err := ParseFieldMapping([]string{
		"user_email = Email",
		"company=Company",
		"user_email = Primary Email",
	})
	require.NoError(t, err)
	assert.Equal(t, FieldMapping{
		{Key: FieldEmail, Label: "Primary Email"},
		{Key: "company", Label: "Company"},
	}, mapping, "later duplicate keys replace the label in place")

	_, err = ParseFieldMapping([]string{"no separator"})
	assert.Error(t, err)

	_, err = ParseFieldMapping([]string{"= Label"})
	assert.Error(t, err)
}

func TestSplitListValue(t *testing.T) {
	assert.Equal(t, []string{"company", "editor", "admin"},
		splitListValue(" company ,editor\nadmin\n"))
	assert.Empty(t, splitListValue(" , \n ,"))
}

func TestToBoolean(t *testing.T) {
	for raw, want := range map[string]bool{"1": true, "true": true, "ok": true, "0": false, "FALSE": false} {
		got, ok := toBoolean(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	got, ok := toBoolean([]any{"true"})
	assert.True(t, ok, "list-wrapped values unwrap")
	assert.True(t, got)

	_, ok = toBoolean("maybe")
	assert.False(t, ok)
	_, ok = toBoolean(nil)
	assert.False(t, ok)
}

func TestDefaultFieldMapping(t *testing.T) {
	var mapping = DefaultFieldMapping(2)
	// 19 base fields plus 6 per collaborator group
	assert.Len(t, mapping, 19+12)

	label, ok := mapping.Label(FieldRole)
	require.True(t, ok)
	assert.Equal(t, DefaultRoleLabel, label)

	label, ok = mapping.Label("collaborator2_linkedin")
	require.True(t, ok)
	assert.Equal(t, "Collaborator2 LinkedIn", label)

	_, ok = mapping.Label("collaborator3_email")
	assert.False(t, ok)
}
