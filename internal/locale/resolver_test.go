package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()

	cfg, err := NewConfig("en")
	require.NoError(t, err)

	return NewResolver(cfg)
}

func TestResolve_CookieRedirectsEveryLocale(t *testing.T) {
	r := newTestResolver(t)

	paths := []string{"/", "/about", "/pricing/faq", "/gallery/"}

	for _, tag := range All {
		for _, path := range paths {
			d := r.Resolve(Signals{Path: path, Cookie: tag.String(), AcceptLanguage: "fr", Country: "US"})

			assert.True(t, d.Redirect, path)
			assert.True(t, d.SetCookie, path)
			assert.Equal(t, tag, d.Locale, path)
			assert.Equal(t, SourceCookie, d.Source, path)

			want := "/" + tag.String() + path
			if path == "/" {
				want = "/" + tag.String()
			}
			assert.Equal(t, want, d.RedirectPath)
		}
	}
}

func TestResolve_PrefixedPathIsAuthoritative(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name       string
		signals    Signals
		locale     Tag
		wantCookie bool
	}{
		{"matching cookie", Signals{Path: "/en/about", Cookie: "en"}, English, false},
		{"disagreeing cookie", Signals{Path: "/en/about", Cookie: "pt-BR"}, English, true},
		{"no cookie", Signals{Path: "/pt-BR", AcceptLanguage: "en-US"}, PortugueseBrazil, true},
		{"header and country ignored", Signals{Path: "/en", Cookie: "en", AcceptLanguage: "pt-BR", Country: "BR"}, English, false},
		{"garbage cookie", Signals{Path: "/pt-BR/gallery", Cookie: "klingon"}, PortugueseBrazil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := r.Resolve(tt.signals)

			assert.False(t, d.Redirect)
			assert.Empty(t, d.RedirectPath)
			assert.Equal(t, tt.locale, d.Locale)
			assert.Equal(t, SourcePath, d.Source)
			assert.Equal(t, tt.wantCookie, d.SetCookie)
		})
	}
}

func TestResolve_AcceptLanguageHeaderOrder(t *testing.T) {
	r := newTestResolver(t)

	d := r.Resolve(Signals{Path: "/", AcceptLanguage: "pt-BR,en;q=0.5"})
	assert.Equal(t, PortugueseBrazil, d.Locale)
	assert.Equal(t, SourceHeader, d.Source)
	assert.Equal(t, "/pt-BR", d.RedirectPath)

	// a higher weight later in the list does not win
	d = r.Resolve(Signals{Path: "/", AcceptLanguage: "en-GB;q=0.1, pt;q=0.9"})
	assert.Equal(t, English, d.Locale)

	// unknown entries are skipped
	d = r.Resolve(Signals{Path: "/x", AcceptLanguage: "fr-FR, de;q=0.8, pt_br;q=0.2"})
	assert.Equal(t, PortugueseBrazil, d.Locale)
	assert.Equal(t, "/pt-BR/x", d.RedirectPath)
}

func TestResolve_Country(t *testing.T) {
	r := newTestResolver(t)

	d := r.Resolve(Signals{Path: "/", Country: "BR", AcceptLanguage: "fr, de"})
	assert.Equal(t, PortugueseBrazil, d.Locale)
	assert.Equal(t, SourceCountry, d.Source)

	d = r.Resolve(Signals{Path: "/", Country: "br"})
	assert.Equal(t, PortugueseBrazil, d.Locale)

	for _, country := range []string{"US", "PT", "DE", ""} {
		d = r.Resolve(Signals{Path: "/", Country: country})
		assert.Equal(t, English, d.Locale, country)
		assert.Equal(t, SourceDefault, d.Source, country)
	}
}

func TestResolve_DefaultIsConfigurable(t *testing.T) {
	cfg, err := NewConfig("pt-BR")
	require.NoError(t, err)

	d := NewResolver(cfg).Resolve(Signals{Path: "/about"})
	assert.Equal(t, PortugueseBrazil, d.Locale)
	assert.Equal(t, "/pt-BR/about", d.RedirectPath)

	_, err = NewConfig("fr")
	assert.Error(t, err)
}

func TestResolve_Bypass(t *testing.T) {
	r := newTestResolver(t)

	for _, path := range []string{
		"/api/generate",
		"/api",
		"/_next/static/chunk.js",
		"/_vercel/insights/script",
		"/static/logo",
		"/favicon.ico",
		"/images/hero.png",
		"/robots.txt",
		"/health",
		"/metrics",
	} {
		d := r.Resolve(Signals{Path: path, Cookie: "pt-BR"})
		assert.True(t, d.Bypass, path)
		assert.False(t, d.Redirect, path)
		assert.False(t, d.SetCookie, path)
	}

	// only whole segments bypass
	d := r.Resolve(Signals{Path: "/apiary"})
	assert.False(t, d.Bypass)
	assert.True(t, d.Redirect)
}

func TestResolve_UnknownLocaleSegment(t *testing.T) {
	r := newTestResolver(t)

	d := r.Resolve(Signals{Path: "/fr/about"})
	assert.True(t, d.Redirect)
	assert.Equal(t, "/en/fr/about", d.RedirectPath)

	d = r.Resolve(Signals{Path: "/fr/about", Cookie: "pt-BR"})
	assert.Equal(t, "/pt-BR/fr/about", d.RedirectPath)

	// prefix matching is case-sensitive
	d = r.Resolve(Signals{Path: "/pt-br/about"})
	assert.True(t, d.Redirect)
	assert.Equal(t, "/en/pt-br/about", d.RedirectPath)
}

func TestResolve_NeverFails(t *testing.T) {
	r := newTestResolver(t)

	for _, s := range []Signals{
		{},
		{Path: "//"},
		{Path: "/", AcceptLanguage: ",,,;q=1"},
		{Path: "/", Cookie: "", Country: "???"},
	} {
		d := r.Resolve(s)
		assert.Contains(t, All, d.Locale)
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		in   string
		want Tag
		ok   bool
	}{
		{"pt", PortugueseBrazil, true},
		{" PT-BR ", PortugueseBrazil, true},
		{"pt_BR", PortugueseBrazil, true},
		{"ptbr", PortugueseBrazil, true},
		{"br", PortugueseBrazil, true},
		{"en", English, true},
		{"EN-us", English, true},
		{"en-gb", English, true},
		{"en-au", English, true},
		{"en-ca", English, true},
		{"en-in", "", false},
		{"fr", "", false},
		{"", "", false},
		{"*", "", false},
	}

	for _, tt := range tests {
		got, ok := Match(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParse(t *testing.T) {
	tag, ok := Parse("pt-BR")
	assert.True(t, ok)
	assert.Equal(t, PortugueseBrazil, tag)

	_, ok = Parse("pt-br")
	assert.False(t, ok)

	assert.Equal(t, "English", English.Label())
}
