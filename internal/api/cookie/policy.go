// Package cookie builds and reads the CMS session cookie.
//
// The CMS dashboard is served from a different subdomain than the API, so a
// SameSite=Lax cookie would never reach the API on its fetches. Policy widens
// the cookie to SameSite=None on the shared parent domain only when the
// request actually comes from the CMS origin or the deployment is production;
// everything else gets a host-only SameSite=Lax cookie.
package cookie

import (
	"math"
	"net/http"
	"strings"
	"time"
)

const DefaultName = "cms_session"

// Context carries the per-request facts the policy decides on.
type Context struct {
	// Origin is the request's Origin header, if any.
	Origin     string
	Production bool
}

// ContextFromRequest builds a Context from r.
func ContextFromRequest(r *http.Request, production bool) Context {
	return Context{Origin: r.Header.Get("Origin"), Production: production}
}

// Policy encodes, decodes and clears the session cookie.
type Policy struct {
	// Name is the cookie name. Defaults to DefaultName.
	Name string
	// ParentDomain is the shared domain used for cross-site cookies,
	// e.g. "ronagung.dev".
	ParentDomain string
	// CMSOrigin is the origin of the CMS dashboard,
	// e.g. "https://cms.ronagung.dev".
	CMSOrigin string

	now func() time.Time
}

// NewPolicy returns a Policy using the wall clock.
func NewPolicy(name, parentDomain, cmsOrigin string) *Policy {
	if name == "" {
		name = DefaultName
	}
	return &Policy{
		Name:         name,
		ParentDomain: strings.TrimPrefix(parentDomain, "."),
		CMSOrigin:    strings.TrimSuffix(cmsOrigin, "/"),
		now:          time.Now,
	}
}

// WithClock replaces the time source used for Max-Age.
func (p *Policy) WithClock(now func() time.Time) *Policy {
	p.now = now
	return p
}

// CrossSite reports whether ctx needs the cross-site cookie variant.
func (p *Policy) CrossSite(ctx Context) bool {
	if ctx.Production {
		return true
	}
	return p.CMSOrigin != "" && strings.TrimSuffix(ctx.Origin, "/") == p.CMSOrigin
}

// Encode returns the Set-Cookie value carrying token until expiresAt.
func (p *Policy) Encode(token string, expiresAt time.Time, ctx Context) string {
	c := p.base(ctx)
	c.Value = token
	c.Expires = expiresAt.UTC()
	c.MaxAge = maxAge(expiresAt.Sub(p.clock()))
	return c.String()
}

// Clear returns a Set-Cookie value that deletes the cookie immediately. It
// carries the same scope attributes as Encode so the browser matches it.
func (p *Policy) Clear(ctx Context) string {
	c := p.base(ctx)
	c.Value = ""
	c.Expires = time.Unix(0, 0).UTC()
	c.MaxAge = -1 // serialised as Max-Age=0
	return c.String()
}

// Decode returns the session token from the request headers.
func (p *Policy) Decode(h http.Header) (string, bool) {
	token, ok := JarFromHeader(h).Get(p.name())
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func (p *Policy) base(ctx Context) *http.Cookie {
	c := &http.Cookie{
		Name:     p.name(),
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
	if p.CrossSite(ctx) {
		c.SameSite = http.SameSiteNoneMode
		c.Partitioned = true
		c.Domain = p.ParentDomain
	}
	return c
}

func (p *Policy) name() string {
	if p.Name == "" {
		return DefaultName
	}
	return p.Name
}

func (p *Policy) clock() time.Time {
	if p.now == nil {
		return time.Now()
	}
	return p.now()
}

// maxAge rounds the remaining lifetime up to whole seconds. A cookie that is
// already expired gets -1, which net/http writes as Max-Age=0.
func maxAge(remaining time.Duration) int {
	if remaining <= 0 {
		return -1
	}
	return int(math.Ceil(remaining.Seconds()))
}
