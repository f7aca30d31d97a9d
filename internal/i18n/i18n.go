// Package i18n translates user facing error messages. Catalogs live in locales/*.json and
// the locale of a request is negotiated from its Accept-Language header.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// DefaultLocale is served when nothing in Accept-Language matches.
const DefaultLocale = "en"

//go:embed locales/*.json
var catalogs embed.FS

var (
	defaultOnce       sync.Once
	defaultTranslator *Translator
)

// Translator holds one message catalog per locale.
type Translator struct {
	messages map[string]map[string]string
	locales  []string
	matcher  language.Matcher
}

// Load reads every catalog under locales/. The default locale is always first in the
// matcher so it wins ties.
func Load() (*Translator, error) {
	entries, err := catalogs.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	t := &Translator{messages: make(map[string]map[string]string, len(entries))}
	for _, e := range entries {
		raw, err := catalogs.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			return nil, err
		}
		var msgs map[string]string
		if err := json.Unmarshal(raw, &msgs); err != nil {
			return nil, fmt.Errorf("locale %s: %w", e.Name(), err)
		}
		t.messages[strings.TrimSuffix(e.Name(), ".json")] = msgs
	}
	if _, ok := t.messages[DefaultLocale]; !ok {
		return nil, fmt.Errorf("missing %s catalog", DefaultLocale)
	}

	t.locales = append(t.locales, DefaultLocale)
	for loc := range t.messages {
		if loc != DefaultLocale {
			t.locales = append(t.locales, loc)
		}
	}
	tags := make([]language.Tag, len(t.locales))
	for i, loc := range t.locales {
		tags[i] = language.Make(loc)
	}
	t.matcher = language.NewMatcher(tags)
	return t, nil
}

// Default returns the translator built from the embedded catalogs.
func Default() *Translator {
	defaultOnce.Do(func() {
		t, err := Load()
		if err != nil {
			panic(err)
		}
		defaultTranslator = t
	})
	return defaultTranslator
}

// Translate returns the message for key in locale, falling back to the default locale and
// then to the key itself.
func (t *Translator) Translate(key, locale string) string {
	if msg, ok := t.messages[locale][key]; ok {
		return msg
	}
	if msg, ok := t.messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Match picks the best supported locale for an Accept-Language value.
func (t *Translator) Match(acceptLanguage string) string {
	if acceptLanguage == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, index, confidence := t.matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	return t.locales[index]
}

// Locales lists the supported locales, default first.
func (t *Translator) Locales() []string {
	return append([]string(nil), t.locales...)
}

// Locale negotiates the locale of the request.
func Locale(c *gin.Context) string {
	return Default().Match(c.GetHeader("Accept-Language"))
}

// Message translates key for the request.
func Message(c *gin.Context, key string) string {
	return Default().Translate(key, Locale(c))
}
