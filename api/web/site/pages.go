// package site serves the localized page shells, robots.txt and sitemap.xml.
package site

import (
	"regexp"
	"strings"
)

type page struct {
	Path     string
	Title    map[string]string
	Nav      bool
	Indexed  bool
	Priority float64
	Changes  string
}

var pages = []page{
	{Path: "/", Nav: true, Indexed: true, Priority: 1.0, Changes: "daily", Title: map[string]string{
		"pt-BR": "Fotos com IA a partir de prompts",
		"en":    "AI photos from prompts",
	}},
	{Path: "/generator", Nav: true, Indexed: true, Priority: 0.9, Changes: "weekly", Title: map[string]string{
		"pt-BR": "Gerador",
		"en":    "Generator",
	}},
	{Path: "/prompts", Nav: true, Indexed: true, Priority: 0.8, Changes: "weekly", Title: map[string]string{
		"pt-BR": "Prompts",
		"en":    "Prompts",
	}},
	{Path: "/templates", Nav: true, Indexed: true, Priority: 0.8, Changes: "weekly", Title: map[string]string{
		"pt-BR": "Modelos",
		"en":    "Templates",
	}},
	{Path: "/tutorial", Nav: true, Indexed: true, Priority: 0.8, Changes: "weekly", Title: map[string]string{
		"pt-BR": "Tutorial",
		"en":    "Tutorial",
	}},
	{Path: "/blog", Nav: true, Indexed: true, Priority: 0.8, Changes: "weekly", Title: map[string]string{
		"pt-BR": "Blog",
		"en":    "Blog",
	}},
	{Path: "/contact", Indexed: true, Priority: 0.5, Changes: "monthly", Title: map[string]string{
		"pt-BR": "Contato",
		"en":    "Contact",
	}},
	{Path: "/privacy", Indexed: true, Priority: 0.5, Changes: "monthly", Title: map[string]string{
		"pt-BR": "Privacidade",
		"en":    "Privacy",
	}},
	{Path: "/terms", Indexed: true, Priority: 0.5, Changes: "monthly", Title: map[string]string{
		"pt-BR": "Termos de uso",
		"en":    "Terms",
	}},
	{Path: "/auth/signin", Title: map[string]string{
		"pt-BR": "Entrar",
		"en":    "Sign in",
	}},
	{Path: "/auth/error", Title: map[string]string{
		"pt-BR": "Erro de login",
		"en":    "Sign-in error",
	}},
}

var blogSlug = regexp.MustCompile(`^/blog/[a-z0-9]+(-[a-z0-9]+)*$`)

// finds the page for a path with the locale prefix already removed
func lookup(rest string) (page, bool) {
	if rest == "" {
		rest = "/"
	}

	if rest != "/" {
		rest = strings.TrimSuffix(rest, "/")
	}

	for _, p := range pages {
		if p.Path == rest {
			return p, true
		}
	}

	if blogSlug.MatchString(rest) {
		slug := strings.TrimPrefix(rest, "/blog/")
		title := strings.ReplaceAll(slug, "-", " ")

		return page{Path: rest, Title: map[string]string{"pt-BR": title, "en": title}}, true
	}

	return page{}, false
}
