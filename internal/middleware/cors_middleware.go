package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowHeaders = "Content-Type, Accept, Origin, Cache-Control, X-Requested-With, Last-Event-ID"
	corsAllowMethods = "GET, POST, PATCH, OPTIONS"
)

// CORSPolicy decides which browser origins may call the API. Origins are
// compared by host, so scheme and default ports do not matter.
type CORSPolicy struct {
	hosts map[string]struct{}
}

// NewCORSPolicy builds a policy from allowed origins. Entries may be bare
// hosts ("app.trustpay.ng", "localhost:3000") or full origins.
func NewCORSPolicy(origins []string) *CORSPolicy {
	p := &CORSPolicy{hosts: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if !strings.Contains(o, "://") {
			o = "https://" + o
		}
		if host := originHost(o); host != "" {
			p.hosts[host] = struct{}{}
		}
	}
	return p
}

// Allows reports whether origin may call the API.
func (p *CORSPolicy) Allows(origin string) bool {
	host := originHost(origin)
	if host == "" {
		return false
	}
	_, ok := p.hosts[host]
	return ok
}

// Middleware sets CORS headers for allowed origins and answers preflight requests.
// Disallowed origins get no Allow-Origin header and the browser blocks the response.
func (p *CORSPolicy) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Vary", "Origin")

		origin := strings.TrimSuffix(strings.TrimSpace(c.GetHeader("Origin")), "/")
		if p.Allows(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// originHost returns the lowercased host of an origin URL without default
// ports, or empty when raw is not an absolute URL.
func originHost(raw string) string {
	u, err := url.Parse(strings.TrimSuffix(strings.TrimSpace(raw), "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Host)
	if (u.Scheme == "https" && strings.HasSuffix(host, ":443")) || (u.Scheme == "http" && strings.HasSuffix(host, ":80")) {
		host, _, _ = strings.Cut(host, ":")
	}
	return host
}
