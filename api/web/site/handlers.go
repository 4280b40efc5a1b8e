package site

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/promptfotos/server/internal/errors"
	"codeberg.org/promptfotos/server/internal/locale"
	"codeberg.org/promptfotos/server/internal/logger"
)

const siteName = "Prompt Gemini Fotos"

var shell = template.Must(template.New("shell").Parse(`<!doctype html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} | {{.SiteName}}</title>
<link rel="canonical" href="{{.Canonical}}">
{{range .Alternates}}<link rel="alternate" hreflang="{{.Lang}}" href="{{.URL}}">
{{end}}</head>
<body>
<nav>
{{range .Nav}}<a href="{{.Href}}"{{if .Active}} aria-current="page"{{end}}>{{.Title}}</a>
{{end}}{{range .Languages}}<a href="{{.Href}}" hreflang="{{.Lang}}">{{.Label}}</a>
{{end}}</nav>
<main id="app" data-locale="{{.Lang}}" data-page="{{.Page}}"></main>
</body>
</html>
`))

type link struct {
	Href   string
	Title  string
	Lang   string
	Label  string
	Active bool
}

type alternate struct {
	Lang string
	URL  string
}

type view struct {
	Lang       string
	Title      string
	SiteName   string
	Page       string
	Canonical  string
	Alternates []alternate
	Nav        []link
	Languages  []link
}

type Handler struct {
	resolver *locale.Resolver
	baseURL  string
}

func NewHandler(resolver *locale.Resolver, appURL string) *Handler {
	return &Handler{resolver: resolver, baseURL: strings.TrimRight(appURL, "/")}
}

// Pages renders the shell for known pages under a locale prefix. It is installed as
// the router's NoRoute handler, after the locale middleware has redirected unprefixed
// paths. Everything else is a 404: JSON under /api, HTML elsewhere.
func (h *Handler) Pages() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if h.resolver.ShouldBypass(path) {
			errors.NotFound(c, "route")
			return
		}

		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.AbortWithStatus(http.StatusMethodNotAllowed)
			return
		}

		tag, ok := h.resolver.FromPath(path)
		if !ok {
			h.notFound(c, locale.FromContext(c, h.resolver.Config().Default))
			return
		}

		rest := strings.TrimPrefix(path, "/"+tag.String())

		p, ok := lookup(rest)
		if !ok {
			h.notFound(c, tag)
			return
		}

		h.render(c, http.StatusOK, tag, p)
	}
}

func (h *Handler) notFound(c *gin.Context, tag locale.Tag) {
	h.render(c, http.StatusNotFound, tag, page{
		Path:  "/404",
		Title: map[string]string{"pt-BR": "Página não encontrada", "en": "Page not found"},
	})
}

func (h *Handler) render(c *gin.Context, status int, tag locale.Tag, p page) {
	v := view{
		Lang:      tag.String(),
		Title:     p.Title[tag.String()],
		SiteName:  siteName,
		Page:      p.Path,
		Canonical: h.baseURL + locale.BuildPath(tag, p.Path),
	}

	for _, other := range h.resolver.Config().Locales {
		v.Alternates = append(v.Alternates, alternate{Lang: other.String(), URL: h.baseURL + locale.BuildPath(other, p.Path)})
		v.Languages = append(v.Languages, link{
			Href:  h.resolver.SwitchPath(c.Request.URL.Path, other),
			Lang:  other.String(),
			Label: other.Label(),
		})
	}

	for _, item := range pages {
		if !item.Nav {
			continue
		}

		v.Nav = append(v.Nav, link{
			Href:   locale.BuildPath(tag, item.Path),
			Title:  item.Title[tag.String()],
			Active: locale.IsPathActive(c.Request.URL.Path, tag, item.Path),
		})
	}

	var buf bytes.Buffer
	if err := shell.Execute(&buf, v); err != nil {
		logger.FromContext(c.Request.Context()).Error("failed to render page", "error", err, "page", p.Path)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
