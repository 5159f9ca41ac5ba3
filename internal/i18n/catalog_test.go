package i18n

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/nerrad567/gray-logic-trace/internal/trace"
)

func mustLoad(t *testing.T) *Bundle {
	t.Helper()
	b, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return b
}

func TestLoad_Embedded(t *testing.T) {
	b := mustLoad(t)

	locales := b.Locales()
	if len(locales) != 2 || locales[0] != "de-DE" || locales[1] != "en-US" {
		t.Errorf("Locales() = %v", locales)
	}
	if got := len(b.NamespaceMessages("en-US", "describe")); got == 0 {
		t.Error("describe namespace is empty")
	}
}

func TestBaseCatalogMatchesEngineDefaults(t *testing.T) {
	b := mustLoad(t)

	for key, want := range trace.EnglishMessages() {
		got, ok := b.Message(BaseLocale, key)
		if !ok {
			t.Errorf("key %q missing from %s catalog", key, BaseLocale)
			continue
		}
		if got != want {
			t.Errorf("%s = %q, engine default %q", key, got, want)
		}
	}
}

func TestEveryLocaleCoversBase(t *testing.T) {
	b := mustLoad(t)
	base := b.locales[BaseLocale].messages

	for _, locale := range b.Locales() {
		for key := range base {
			if _, ok := b.locales[locale].messages[key]; !ok {
				t.Errorf("%s is missing %q", locale, key)
			}
		}
	}
}

func TestMatch(t *testing.T) {
	b := mustLoad(t)

	tests := []struct {
		requested string
		want      string
	}{
		{"", "en-US"},
		{"en-US", "en-US"},
		{"de-DE", "de-DE"},
		{"de", "de-DE"},
		{"de-AT", "de-DE"},
		{"en-GB", "en-US"},
		{"ja", "en-US"},
		{"not a tag!", "en-US"},
	}
	for _, tt := range tests {
		if got := b.Match(tt.requested); got != tt.want {
			t.Errorf("Match(%q) = %q, want %q", tt.requested, got, tt.want)
		}
	}
}

func TestLocalizer_Text(t *testing.T) {
	b := mustLoad(t)

	en := b.Localizer("en")
	if got := en.Text(trace.MsgChooseNamed, "Lights", "Evening"); got != "Lights: Evening executed" {
		t.Errorf("en choose = %q", got)
	}

	de := b.Localizer("de")
	if de.Locale() != "de-DE" {
		t.Errorf("Locale() = %q", de.Locale())
	}
	if got := de.Text(trace.MsgTimeLater, "5 Sekunden"); got != "5 Sekunden später" {
		t.Errorf("de time later = %q", got)
	}
	if got := de.Text(trace.MsgUnitSeconds); got != "%d Sekunden" {
		t.Errorf("de unit format = %q", got)
	}
	if got := de.Text("no.such.key"); got != "no.such.key" {
		t.Errorf("unknown key = %q", got)
	}
}

func TestLocalizer_DrivesReconstruct(t *testing.T) {
	b := mustLoad(t)
	got := trace.Reconstruct(&trace.Record{State: trace.StateRunning}, nil, nil,
		trace.WithLocalizer(b.Localizer("de-DE")))
	if got[0].Description != "Läuft noch" {
		t.Errorf("footer = %q", got[0].Description)
	}
}

func TestLoadFromFS_Errors(t *testing.T) {
	valid := "locale: en-US\nnamespace: trace\nmessages:\n  trace.a: \"A\"\n"

	tests := []struct {
		name string
		fs   fstest.MapFS
		want error
	}{
		{
			name: "empty",
			fs:   fstest.MapFS{},
			want: ErrNoCatalogs,
		},
		{
			name: "no base locale",
			fs: fstest.MapFS{
				"locales/de-DE/trace.yaml": {Data: []byte("locale: de-DE\nnamespace: trace\nmessages:\n  trace.a: \"A\"\n")},
			},
			want: ErrMissingBaseLocale,
		},
		{
			name: "locale mismatch",
			fs: fstest.MapFS{
				"locales/en-GB/trace.yaml": {Data: []byte(valid)},
			},
			want: ErrInvalidCatalog,
		},
		{
			name: "namespace mismatch",
			fs: fstest.MapFS{
				"locales/en-US/describe.yaml": {Data: []byte(valid)},
			},
			want: ErrInvalidCatalog,
		},
		{
			name: "foreign key prefix",
			fs: fstest.MapFS{
				"locales/en-US/trace.yaml": {Data: []byte("locale: en-US\nnamespace: trace\nmessages:\n  describe.a: \"A\"\n")},
			},
			want: ErrInvalidCatalog,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFS(tt.fs)
			if !errors.Is(err, tt.want) {
				t.Errorf("LoadFromFS() error = %v, want %v", err, tt.want)
			}
		})
	}

	b, err := LoadFromFS(fstest.MapFS{"locales/en-US/trace.yaml": {Data: []byte(valid)}})
	if err != nil {
		t.Fatalf("LoadFromFS(valid) error: %v", err)
	}
	if got := b.Localizer("fr").Text("trace.a"); got != "A" {
		t.Errorf("fallback text = %q", got)
	}
}
