package site

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/promptfotos/server/internal/locale"
)

// crawlers that feed model training are kept out entirely
var blockedAgents = []string{"GPTBot", "CCBot", "ChatGPT-User", "Google-Extended"}

var disallowed = []string{"/api/", "/auth/", "/_next/", "/.well-known/"}

func (h *Handler) Robots() gin.HandlerFunc {
	return func(c *gin.Context) {
		var b strings.Builder

		b.WriteString("User-agent: *\nAllow: /\n")
		for _, path := range disallowed {
			fmt.Fprintf(&b, "Disallow: %s\n", path)
		}

		for _, agent := range blockedAgents {
			fmt.Fprintf(&b, "\nUser-agent: %s\nDisallow: /\n", agent)
		}

		fmt.Fprintf(&b, "\nSitemap: %s/sitemap.xml\n", h.baseURL)

		if parsed, err := url.Parse(h.baseURL); err == nil && parsed.Host != "" {
			fmt.Fprintf(&b, "Host: %s\n", parsed.Host)
		}

		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(b.String()))
	}
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod"`
	ChangeFreq string     `xml:"changefreq"`
	Priority   string     `xml:"priority"`
	Links      []xhtmlRef `xml:"xhtml:link"`
}

type xhtmlRef struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// one entry per indexed page and locale, each listing every locale as an alternate
func (h *Handler) Sitemap(now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		locales := h.resolver.Config().Locales
		lastMod := now().UTC().Format("2006-01-02")

		set := urlSet{
			XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
			XHTML: "http://www.w3.org/1999/xhtml",
		}

		for _, tag := range locales {
			for _, p := range pages {
				if !p.Indexed {
					continue
				}

				entry := sitemapURL{
					Loc:        h.baseURL + locale.BuildPath(tag, p.Path),
					LastMod:    lastMod,
					ChangeFreq: p.Changes,
					Priority:   fmt.Sprintf("%.1f", p.Priority),
				}

				for _, alt := range locales {
					entry.Links = append(entry.Links, xhtmlRef{
						Rel:      "alternate",
						Hreflang: alt.String(),
						Href:     h.baseURL + locale.BuildPath(alt, p.Path),
					})
				}

				set.URLs = append(set.URLs, entry)
			}
		}

		body, err := xml.MarshalIndent(set, "", "  ")
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), body...))
	}
}

func RegisterRoutes(router *gin.Engine, h *Handler) {
	router.GET("/robots.txt", h.Robots())
	router.GET("/sitemap.xml", h.Sitemap(time.Now))
	router.NoRoute(h.Pages())
}
