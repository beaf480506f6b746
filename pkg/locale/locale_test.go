package locale

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	cases := map[string]string{
		"":            English,
		"en":          English,
		"en-GB":       English,
		"es":          Spanish,
		"es-MX":       Spanish,
		"es_ES.UTF-8": Spanish,
		"ES":          Spanish,
		"C":           English,
		"C.UTF-8":     English,
		"fr-FR":       English,
		"not a tag!":  English,
	}
	for in, want := range cases {
		require.Equal(t, want, Match(in), "input %q", in)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "es_AR.UTF-8")
	require.Equal(t, Spanish, FromEnv())

	t.Setenv("LC_ALL", "en_US.UTF-8")
	require.Equal(t, English, FromEnv())
}

func TestCatalogFor(t *testing.T) {
	for _, lang := range []string{English, Spanish} {
		c := CatalogFor(lang)
		require.Equal(t, lang, c.Language)
		require.Len(t, c.QuickActions, 3)
		require.NotEmpty(t, c.ErrorBanner)
		require.NotEmpty(t, c.Placeholder)
		for _, qa := range c.QuickActions {
			require.NotEmpty(t, qa.Label)
			require.NotEmpty(t, qa.Prompt)
		}
	}
	require.Equal(t, "¡Copiado!", CatalogFor("es-419").Copied)
	require.Equal(t, English, CatalogFor("de").Language)
}
