package security

import (
	"net/http"
	"strconv"
)

// HeadersConfig is the response header policy. Empty values are not sent.
type HeadersConfig struct {
	CSP                 string
	FrameOptions        string
	ContentTypeOptions  string
	ReferrerPolicy      string
	PermissionsPolicy   string
	CrossOriginOpener   string
	CrossOriginResource string

	// HSTS is only sent on TLS connections.
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
}

// DefaultHeadersConfig fits the server rendered pages: scripts from this
// origin and the htmx CDN, chart PNGs from this origin.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP: "default-src 'self'; " +
			"script-src 'self' https://unpkg.com; " +
			"style-src 'self' 'unsafe-inline'; " +
			"img-src 'self' data:; " +
			"connect-src 'self'; " +
			"object-src 'none'; " +
			"frame-ancestors 'none'; " +
			"base-uri 'self'; " +
			"form-action 'self'",
		FrameOptions:          "DENY",
		ContentTypeOptions:    "nosniff",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy:     "geolocation=(), microphone=(), camera=(), payment=()",
		CrossOriginOpener:     "same-origin",
		CrossOriginResource:   "same-origin",
		HSTSMaxAge:            365 * 24 * 60 * 60,
		HSTSIncludeSubdomains: true,
	}
}

// HeadersMiddleware stamps the configured policy on every response.
type HeadersMiddleware struct {
	fixed http.Header
	hsts  string
}

func NewHeadersMiddleware(cfg HeadersConfig) *HeadersMiddleware {
	fixed := make(http.Header)
	for name, value := range map[string]string{
		"Content-Security-Policy":      cfg.CSP,
		"X-Frame-Options":              cfg.FrameOptions,
		"X-Content-Type-Options":       cfg.ContentTypeOptions,
		"Referrer-Policy":              cfg.ReferrerPolicy,
		"Permissions-Policy":           cfg.PermissionsPolicy,
		"Cross-Origin-Opener-Policy":   cfg.CrossOriginOpener,
		"Cross-Origin-Resource-Policy": cfg.CrossOriginResource,
	} {
		if value != "" {
			fixed.Set(name, value)
		}
	}

	var hsts string
	if cfg.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
	}
	return &HeadersMiddleware{fixed: fixed, hsts: hsts}
}

func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out := w.Header()
		for name, values := range h.fixed {
			out[name] = append([]string(nil), values...)
		}
		if r.TLS != nil && h.hsts != "" {
			out.Set("Strict-Transport-Security", h.hsts)
		}
		next.ServeHTTP(w, r)
	})
}

// StaticAssetMiddleware lets browsers keep embedded assets for maxAge seconds.
func StaticAssetMiddleware(maxAge int) func(http.Handler) http.Handler {
	value := "public, max-age=" + strconv.Itoa(maxAge) + ", immutable"
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxAge > 0 {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NoStore marks per-user pages and exports as uncacheable.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
