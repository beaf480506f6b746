// Package locale picks the interface language and holds the UI strings.
package locale

import (
	"os"
	"strings"

	"golang.org/x/text/language"
)

const (
	English = "en"
	Spanish = "es"
)

var (
	supported = []string{English, Spanish}
	matcher   = language.NewMatcher([]language.Tag{language.English, language.Spanish})
)

// Match maps a BCP 47 tag or a POSIX locale such as "es_MX.UTF-8" to one of
// the supported languages. Anything unrecognized is English.
func Match(code string) string {
	code = strings.TrimSpace(code)
	if i := strings.IndexAny(code, ".@"); i >= 0 {
		code = code[:i]
	}
	code = strings.ReplaceAll(code, "_", "-")
	if code == "" || strings.EqualFold(code, "C") || strings.EqualFold(code, "POSIX") {
		return English
	}
	tag, err := language.Parse(code)
	if err != nil {
		return English
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return English
	}
	return supported[idx]
}

// FromEnv reads LC_ALL, LC_MESSAGES and LANG in that order.
func FromEnv() string {
	for _, k := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(k); v != "" {
			return Match(v)
		}
	}
	return English
}
