package languages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, "en", reg.DefaultCode())
}

func TestProfileLanguages(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "yo", "ig", "ha"}, reg.ProfileCodes())
	for _, code := range []string{"en", "yo", "ig", "ha"} {
		assert.True(t, reg.IsProfileLanguage(code), code)
	}
	assert.False(t, reg.IsProfileLanguage("sw"))
	assert.False(t, reg.IsProfileLanguage("fr"))
	assert.False(t, reg.IsProfileLanguage("xx"))
}

func TestNameFallsBackToDefault(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	assert.Equal(t, "Yoruba", reg.Name("yo"))
	assert.Equal(t, "Hausa", reg.Name("ha"))
	assert.Equal(t, "English", reg.Name("xx"))
	assert.Equal(t, "English", reg.Name(""))
}

func TestVoiceLookup(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	voice, ok := reg.Voice("en")
	require.True(t, ok)
	assert.Equal(t, "en-NG-AbeoNeural", voice)

	voice, ok = reg.Voice("ig")
	require.True(t, ok)
	assert.Equal(t, "ig-NG-EzinneNeural", voice)

	// Amharic is voiced even though it is not a profile language.
	voice, ok = reg.Voice("am")
	require.True(t, ok)
	assert.Equal(t, "am-ET-MekdesNeural", voice)

	// French and Portuguese have names but no audio support.
	_, ok = reg.Voice("fr")
	assert.False(t, ok)
	_, ok = reg.Voice("pt")
	assert.False(t, ok)
	_, ok = reg.Voice("xx")
	assert.False(t, ok)
}

func TestKnown(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	assert.True(t, reg.Known("pt"))
	assert.True(t, reg.Known("af"))
	assert.False(t, reg.Known("de"))
}
