package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	profile, err := Lookup("techflow", "https://techflow.co.kr")
	require.NoError(t, err)

	assert.Equal(t, "TechFlow", profile.Brand)
	assert.Equal(t, "https://techflow.co.kr", profile.BaseURL)
	assert.Equal(t, "#2563EB", profile.Palette.Primary)
	assert.NotEmpty(t, profile.Services)
	assert.Equal(t, []string{"ko", "en"}, profile.Locales)
}

func TestLookupSecondVariant(t *testing.T) {
	profile, err := Lookup("greenflow", "https://greenflow.co.kr")
	require.NoError(t, err)

	assert.Equal(t, "GreenFlow", profile.Brand)
	assert.NotEqual(t, "#2563EB", profile.Palette.Primary)
	assert.NotEmpty(t, profile.Hero.Ko)
	assert.NotEmpty(t, profile.Hero.En)
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("bogus", "https://example.com")
	require.Error(t, err)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"greenflow", "techflow"}, Names())
}

func TestLookupReturnsCopy(t *testing.T) {
	a, err := Lookup("techflow", "https://a.example")
	require.NoError(t, err)
	b, err := Lookup("techflow", "https://b.example")
	require.NoError(t, err)

	assert.Equal(t, "https://a.example", a.BaseURL)
	assert.Equal(t, "https://b.example", b.BaseURL)
}
