package locale

import (
	"net/http"

	"codeberg.org/promptfotos/server/internal/logger"
	"codeberg.org/promptfotos/server/internal/metrics"
	"github.com/gin-gonic/gin"
)

// gin context key holding the resolved Tag
const ContextKey = "locale"

// SignalsFromRequest collects the resolver inputs from an HTTP request.
func SignalsFromRequest(r *http.Request) Signals {
	signals := Signals{
		Path:           r.URL.Path,
		EscapedPath:    r.URL.EscapedPath(),
		AcceptLanguage: r.Header.Get("Accept-Language"),
		Country:        countryFromHeaders(r.Header.Get),
	}

	if cookie, err := r.Cookie(CookieName); err == nil {
		signals.Cookie = cookie.Value
	}

	return signals
}

// Middleware resolves the locale of every human-facing request. Paths without a locale
// prefix are answered with a 307 to the prefixed path (query preserved); prefixed paths
// continue with the cookie normalized to the path's locale.
func (r *Resolver) Middleware(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := r.Resolve(SignalsFromRequest(c.Request))

		if decision.Bypass {
			c.Next()
			return
		}

		c.Set(ContextKey, decision.Locale)

		if decision.SetCookie {
			SetCookie(c, decision.Locale, secureCookie)
		}

		if decision.Redirect {
			target := decision.RedirectPath
			if c.Request.URL.RawQuery != "" {
				target += "?" + c.Request.URL.RawQuery
			}

			metrics.LocaleRedirects.WithLabelValues(decision.Locale.String(), string(decision.Source)).Inc()
			logger.FromContext(c.Request.Context()).Debug("locale redirect",
				"from", c.Request.URL.Path,
				"to", target,
				"source", decision.Source,
			)

			c.Redirect(http.StatusTemporaryRedirect, target)
			c.Abort()

			return
		}

		c.Next()
	}
}

// SetCookie persists the locale choice for a year on the root path.
func SetCookie(c *gin.Context, tag Tag, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, tag.String(), int(CookieMaxAge.Seconds()), "/", "", secure, false)
}

// FromContext returns the locale resolved for this request, or the fallback when the
// middleware did not run (API paths).
func FromContext(c *gin.Context, fallback Tag) Tag {
	if value, ok := c.Get(ContextKey); ok {
		if tag, ok := value.(Tag); ok {
			return tag
		}
	}

	return fallback
}

// Preferred resolves the locale for a request that is not itself localized, such as the
// OAuth callback deciding where to land the user.
func (r *Resolver) Preferred(req *http.Request) Tag {
	tag, _ := r.Detect(SignalsFromRequest(req))
	return tag
}
