// Package locale decides which language variant of the site a request is served in
// and builds locale-prefixed paths for outbound links.
package locale

import "strings"

// Tag is one of the supported site locales. Values outside the constants below are
// never produced by this package: every parser returns (Tag, false) for unknown input.
type Tag string

const (
	PortugueseBrazil Tag = "pt-BR"
	English          Tag = "en"
)

// all tags the site ships translations for, in display order
var All = []Tag{PortugueseBrazil, English}

var labels = map[Tag]string{
	PortugueseBrazil: "Português (BR)",
	English:          "English",
}

// maps normalized language keys (lowercase, hyphenated) to supported tags
var aliases = map[string]Tag{
	"pt":    PortugueseBrazil,
	"pt-br": PortugueseBrazil,
	"ptbr":  PortugueseBrazil,
	"br":    PortugueseBrazil,
	"en":    English,
	"en-us": English,
	"en-gb": English,
	"en-au": English,
	"en-ca": English,
}

func (t Tag) String() string {
	return string(t)
}

// human readable name used by the language switcher
func (t Tag) Label() string {
	return labels[t]
}

// lowercase form used for hreflang comparisons and alias lookups
func (t Tag) key() string {
	return strings.ToLower(string(t))
}

// Parse accepts only the exact spelling of a supported tag, as found in URLs and cookies.
func Parse(value string) (Tag, bool) {
	for _, tag := range All {
		if string(tag) == value {
			return tag, true
		}
	}

	return "", false
}

// Match maps a free-form language tag (from Accept-Language or a query) onto a supported
// tag through the alias table.
func Match(value string) (Tag, bool) {
	key := normalizeKey(value)
	if key == "" {
		return "", false
	}

	if tag, ok := aliases[key]; ok {
		return tag, true
	}

	for _, tag := range All {
		if tag.key() == key {
			return tag, true
		}
	}

	return "", false
}

func normalizeKey(value string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "_", "-")
}
