package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPair_EveryUseCase(t *testing.T) {
	ClearCache()

	for _, uc := range []string{
		"skill-gap", "resume-optimization", "cover-letter",
		"interview-questions", "application-insight", "networking-tip",
	} {
		t.Run(uc, func(t *testing.T) {
			system, user, err := Pair(uc)
			require.NoError(t, err)
			assert.NotEmpty(t, system)
			assert.Contains(t, user, "{{.")
		})
	}
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(AdapterFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}! Notes: {{.Notes}}"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
		"Notes":   "  ",
	}

	result := Format(template, data)
	assert.Equal(t, "Hello Alice, welcome to Acme Corp! Notes: Not provided", result)
}

func TestFormat_DoesNotReexpandValues(t *testing.T) {
	result := Format("{{.A}} {{.B}}", map[string]string{"A": "{{.B}}", "B": "b"})
	assert.Equal(t, "{{.B}} b", result)
}

func TestOptional(t *testing.T) {
	s := "value"
	assert.Equal(t, "value", Optional(&s))
	assert.Equal(t, "", Optional(nil))
}

func TestList_Sorted(t *testing.T) {
	ClearCache()

	keys, err := List(AdapterFile)
	require.NoError(t, err)
	assert.Len(t, keys, 12)
	assert.Equal(t, "application-insight.system", keys[0])
}
