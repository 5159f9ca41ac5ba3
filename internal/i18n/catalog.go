// Package i18n loads the message catalogs used to localize timelines.
//
// Catalogs live in locales/<locale>/<namespace>.yaml. Every file names its
// locale and namespace, which must match its path, and maps message keys
// to x/text format strings. en-US is the base locale: keys missing from
// another locale fall back to it.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the canonical source locale.
const BaseLocale = "en-US"

//go:embed locales/*/*.yaml
var embeddedFS embed.FS

type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

type localeCatalog struct {
	tag        language.Tag
	namespaces map[string]map[string]string
	messages   map[string]string
}

// Bundle holds every loaded locale and the compiled x/text catalog.
// A Bundle is immutable after loading and safe for concurrent use.
type Bundle struct {
	locales map[string]*localeCatalog
	tags    []language.Tag // base first
	names   []string       // parallel to tags
	matcher language.Matcher
	builder *catalog.Builder
}

// Load loads the catalogs embedded in the binary.
func Load() (*Bundle, error) {
	return LoadFromFS(embeddedFS)
}

// LoadFromFS loads catalogs from fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, ErrNoCatalogs
	}
	sort.Strings(paths)

	b := &Bundle{locales: map[string]*localeCatalog{}}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if err := b.addFile(p, file); err != nil {
			return nil, err
		}
	}

	if _, ok := b.locales[BaseLocale]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingBaseLocale, BaseLocale)
	}
	if err := b.compile(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bundle) addFile(p string, file catalogFile) error {
	localeFromPath := path.Base(path.Dir(p))
	namespaceFromPath := strings.TrimSuffix(path.Base(p), path.Ext(p))

	locale := strings.TrimSpace(file.Locale)
	if locale != localeFromPath {
		return fmt.Errorf("%w: %s: locale %q must match path locale %q", ErrInvalidCatalog, p, locale, localeFromPath)
	}
	namespace := strings.TrimSpace(file.Namespace)
	if namespace != namespaceFromPath {
		return fmt.Errorf("%w: %s: namespace %q must match file name %q", ErrInvalidCatalog, p, namespace, namespaceFromPath)
	}
	if len(file.Messages) == 0 {
		return fmt.Errorf("%w: %s: messages are required", ErrInvalidCatalog, p)
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("%w: %s: parse locale: %v", ErrInvalidCatalog, p, err)
	}

	lc, ok := b.locales[locale]
	if !ok {
		lc = &localeCatalog{
			tag:        tag,
			namespaces: map[string]map[string]string{},
			messages:   map[string]string{},
		}
		b.locales[locale] = lc
	}
	if _, exists := lc.namespaces[namespace]; exists {
		return fmt.Errorf("%w: %s: namespace %q already defined for %s", ErrInvalidCatalog, p, namespace, locale)
	}

	ns := make(map[string]string, len(file.Messages))
	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if !strings.HasPrefix(key, namespace+".") {
			return fmt.Errorf("%w: %s: key %q must start with %q", ErrInvalidCatalog, p, key, namespace+".")
		}
		if _, exists := lc.messages[key]; exists {
			return fmt.Errorf("%w: %s: duplicate key %q", ErrInvalidCatalog, p, key)
		}
		lc.messages[key] = value
		ns[key] = value
	}
	lc.namespaces[namespace] = ns
	return nil
}

// compile registers every locale with an x/text builder, filling gaps from
// the base locale.
func (b *Bundle) compile() error {
	base := b.locales[BaseLocale]
	b.builder = catalog.NewBuilder(catalog.Fallback(base.tag))

	b.names = append(b.names, BaseLocale)
	for _, name := range b.Locales() {
		if name != BaseLocale {
			b.names = append(b.names, name)
		}
	}

	for _, name := range b.names {
		lc := b.locales[name]
		b.tags = append(b.tags, lc.tag)

		keys := make([]string, 0, len(base.messages))
		for key := range base.messages {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			msg, ok := lc.messages[key]
			if !ok {
				msg = base.messages[key]
			}
			if err := b.builder.SetString(lc.tag, key, msg); err != nil {
				return fmt.Errorf("register %s %s: %w", name, key, err)
			}
		}
	}

	b.matcher = language.NewMatcher(b.tags)
	return nil
}

// Locales returns the loaded locale identifiers, sorted.
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.locales))
	for name := range b.locales {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// HasLocale reports whether locale was loaded exactly.
func (b *Bundle) HasLocale(locale string) bool {
	_, ok := b.locales[strings.TrimSpace(locale)]
	return ok
}

// Message returns the raw format string for key with base-locale fallback.
func (b *Bundle) Message(locale, key string) (string, bool) {
	if lc, ok := b.locales[strings.TrimSpace(locale)]; ok {
		if msg, ok := lc.messages[key]; ok {
			return msg, true
		}
	}
	msg, ok := b.locales[BaseLocale].messages[key]
	return msg, ok
}

// NamespaceMessages returns a copy of one namespace of a locale.
func (b *Bundle) NamespaceMessages(locale, namespace string) map[string]string {
	lc, ok := b.locales[strings.TrimSpace(locale)]
	if !ok {
		return map[string]string{}
	}
	out := make(map[string]string, len(lc.namespaces[namespace]))
	for k, v := range lc.namespaces[namespace] {
		out[k] = v
	}
	return out
}

// Match returns the loaded locale closest to the requested one. Unknown or
// empty requests resolve to the base locale.
func (b *Bundle) Match(requested string) string {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return BaseLocale
	}
	if b.HasLocale(requested) {
		return requested
	}
	tag, err := language.Parse(requested)
	if err != nil {
		return BaseLocale
	}
	_, idx, confidence := b.matcher.Match(tag)
	if confidence == language.No {
		return BaseLocale
	}
	return b.names[idx]
}

// Localizer returns a Localizer for the closest match to locale.
func (b *Bundle) Localizer(locale string) *Localizer {
	name := b.Match(locale)
	tag := b.locales[name].tag
	return &Localizer{
		locale:  name,
		printer: message.NewPrinter(tag, message.Catalog(b.builder)),
	}
}
