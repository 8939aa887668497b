// Package i18n holds the static translation tables used by the review board
// and the language switcher that owns the current language.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var builtin embed.FS

// DefaultLanguage is the fallback table.
const DefaultLanguage = "en"

var ErrUnsupported = errors.New("unsupported language")

type Bundle struct {
	dict     map[string]map[string]string
	fallback string
	langs    []string
	matched  []string // language code per matcher tag index
	matcher  language.Matcher
}

// Load reads the embedded tables, then merges <dir>/<lang>.yaml over them
// when dir is non-empty. Keys from dir override built-in keys.
func Load(dir, fallback string) (*Bundle, error) {
	if fallback == "" {
		fallback = DefaultLanguage
	}
	b := &Bundle{dict: map[string]map[string]string{}, fallback: fallback}

	sub, err := fs.Sub(builtin, "locales")
	if err != nil {
		return nil, err
	}
	if err := b.merge(sub); err != nil {
		return nil, fmt.Errorf("builtin locales: %w", err)
	}
	if dir != "" {
		if err := b.merge(os.DirFS(dir)); err != nil {
			return nil, fmt.Errorf("locales %s: %w", dir, err)
		}
	}
	if _, ok := b.dict[fallback]; !ok {
		return nil, fmt.Errorf("fallback locale %s not loaded", fallback)
	}

	b.langs = make([]string, 0, len(b.dict))
	for l := range b.dict {
		b.langs = append(b.langs, l)
	}
	sort.Strings(b.langs)
	// fallback first: the matcher returns index 0 when nothing matches
	b.matched = []string{fallback}
	tags := []language.Tag{language.Make(fallback)}
	for _, l := range b.langs {
		if l != fallback {
			b.matched = append(b.matched, l)
			tags = append(tags, language.Make(l))
		}
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

func (b *Bundle) merge(fsys fs.FS) error {
	files, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return err
	}
	for _, f := range files {
		raw, err := fs.ReadFile(fsys, f)
		if err != nil {
			return err
		}
		var m map[string]string
		if err := yaml.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("unmarshal %s: %w", f, err)
		}
		lang := strings.ToLower(strings.TrimSuffix(filepath.Base(f), ".yaml"))
		if b.dict[lang] == nil {
			b.dict[lang] = map[string]string{}
		}
		for k, v := range m {
			b.dict[lang][k] = v
		}
	}
	return nil
}

// Supported returns the loaded language codes, sorted.
func (b *Bundle) Supported() []string {
	return append([]string(nil), b.langs...)
}

func (b *Bundle) IsSupported(lang string) bool {
	_, ok := b.dict[strings.ToLower(lang)]
	return ok
}

func (b *Bundle) Fallback() string { return b.fallback }

// T returns translation for key in lang, falling back to default and finally key.
func (b *Bundle) T(lang, key string) string {
	if m, ok := b.dict[strings.ToLower(lang)]; ok {
		if v, ok := m[key]; ok && v != "" {
			return v
		}
	}
	if v, ok := b.dict[b.fallback][key]; ok && v != "" {
		return v
	}
	return key
}

// Resolve picks the best supported language for an Accept-Language header.
func (b *Bundle) Resolve(acceptLang string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(b.matched) {
		return b.fallback
	}
	return b.matched[idx]
}
