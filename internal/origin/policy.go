// Package origin decides whether a request's declared origin is permitted
// and which cross-origin response headers to emit. The trusted set is exact
// match and may contain non-HTTP app URI schemes for native clients.
package origin

// Headers emitted on allowed cross-origin responses.
const (
	allowMethods = "GET, POST, OPTIONS"
	allowHeaders = "Content-Type, Authorization"
)

// Policy is the process-wide trusted origin set, read-only after construction.
type Policy struct {
	trusted map[string]struct{}
}

func NewPolicy(origins []string) *Policy {
	trusted := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "" {
			continue
		}
		trusted[o] = struct{}{}
	}
	return &Policy{trusted: trusted}
}

// Trusted reports whether the given origin is in the trusted set.
func (p *Policy) Trusted(origin string) bool {
	_, ok := p.trusted[origin]
	return ok
}

// Decision carries the CORS response headers for one request. An untrusted
// origin yields a decision without credential-sharing headers: the request
// itself still proceeds, matching browser-enforced CORS semantics where the
// browser blocks the response from being read by disallowed origins.
type Decision struct {
	AllowOrigin      string
	AllowCredentials bool
	AllowMethods     string
	AllowHeaders     string
}

// Decide evaluates the declared origin. An empty origin (same-origin or
// non-browser client) needs no CORS headers at all.
func (p *Policy) Decide(origin string) Decision {
	if origin == "" || !p.Trusted(origin) {
		return Decision{}
	}
	return Decision{
		AllowOrigin:      origin,
		AllowCredentials: true,
		AllowMethods:     allowMethods,
		AllowHeaders:     allowHeaders,
	}
}
