package locale

import (
	"strings"
)

// Source records which signal decided the locale.
type Source string

const (
	SourcePath     Source = "path"
	SourceCookie   Source = "cookie"
	SourceHeader   Source = "accept_language"
	SourceCountry  Source = "country"
	SourceDefault  Source = "default"
	SourceBypassed Source = "bypass"
)

// country headers set by the edge, checked in order
var countryHeaders = []string{"cf-ipcountry", "x-vercel-ip-country"}

// the raw per-request inputs
type Signals struct {
	// decoded path, used for matching
	Path string

	// path as sent on the wire, used to build the redirect; falls back to Path
	EscapedPath string

	Cookie         string
	AcceptLanguage string
	Country        string
}

// result of resolving one request
type Decision struct {
	Locale Tag
	Source Source

	// the path carried no locale prefix and the client must be sent to RedirectPath
	Redirect     bool
	RedirectPath string

	// the cookie must be (re)written with Locale
	SetCookie bool

	// the path is an API or asset path and was not resolved at all
	Bypass bool
}

type Resolver struct {
	config Config
}

func NewResolver(config Config) *Resolver {
	return &Resolver{config: config}
}

func (r *Resolver) Config() Config {
	return r.config
}

// Resolve decides the locale for a request. It never fails: with no usable signal it
// lands on the configured default.
func (r *Resolver) Resolve(signals Signals) Decision {
	path := signals.Path
	if path == "" {
		path = "/"
	}

	if r.ShouldBypass(path) {
		return Decision{Source: SourceBypassed, Bypass: true}
	}

	// the URL is authoritative once explicit
	if tag, ok := r.FromPath(path); ok {
		return Decision{
			Locale:    tag,
			Source:    SourcePath,
			SetCookie: signals.Cookie != tag.String(),
		}
	}

	tag, source := r.Detect(signals)

	target := signals.EscapedPath
	if target == "" {
		target = path
	}

	return Decision{
		Locale:       tag,
		Source:       source,
		Redirect:     true,
		RedirectPath: "/" + tag.String() + redirectSuffix(target),
		SetCookie:    true,
	}
}

// Detect runs the preference chain for a path without a locale prefix:
// cookie, Accept-Language in header order, country, default.
func (r *Resolver) Detect(signals Signals) (Tag, Source) {
	if tag, ok := r.config.parse(signals.Cookie); ok {
		return tag, SourceCookie
	}

	if tag, ok := r.fromAcceptLanguage(signals.AcceptLanguage); ok {
		return tag, SourceHeader
	}

	if tag, ok := r.config.CountryLocales[strings.ToUpper(strings.TrimSpace(signals.Country))]; ok && r.config.supports(tag) {
		return tag, SourceCountry
	}

	return r.config.Default, SourceDefault
}

// FromPath returns the locale named by the first path segment, if it is a supported tag.
func (r *Resolver) FromPath(path string) (Tag, bool) {
	segment, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	return r.config.parse(segment)
}

// ShouldBypass reports whether a path is an API, internal or static file path.
func (r *Resolver) ShouldBypass(path string) bool {
	for _, prefix := range r.config.BypassPrefixes {
		if hasSegmentPrefix(path, prefix) {
			return true
		}
	}

	lastSegment := path[strings.LastIndex(path, "/")+1:]
	return strings.Contains(lastSegment, ".")
}

// entries are taken in header order; quality weights are deliberately ignored
func (r *Resolver) fromAcceptLanguage(header string) (Tag, bool) {
	for _, entry := range strings.Split(header, ",") {
		value, _, _ := strings.Cut(entry, ";")

		if tag, ok := Match(value); ok && r.config.supports(tag) {
			return tag, true
		}
	}

	return "", false
}

// first non-empty edge country header
func countryFromHeaders(get func(string) string) string {
	for _, name := range countryHeaders {
		if value := strings.TrimSpace(get(name)); value != "" {
			return value
		}
	}

	return ""
}

func hasSegmentPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// root redirects to "/<tag>" rather than "/<tag>/"
func redirectSuffix(path string) string {
	if path == "/" {
		return ""
	}

	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}

	return path
}
