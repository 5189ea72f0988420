package assistant

import "net/url"

// Decision is the result of an access check.
type Decision struct {
	Allowed bool
	// Reason is set on denial: "origin not allowed" or
	// "authentication required".
	Reason string
	// AuthRequired distinguishes a missing-identity denial (401) from an
	// origin denial (403) at the HTTP boundary.
	AuthRequired bool
}

// Identity is the guard's view of the caller. Verification itself happens
// elsewhere; the guard only cares whether a verified caller is present.
type Identity struct {
	Subject  string
	Verified bool
}

// Authorize evaluates the assistant's access policy against the request
// origin and caller identity. It is side-effect free and deterministic:
// the decision depends only on (policy, origin, identity).
//
// Rules, in order:
//  1. a non-empty origin allow-list that does not contain the origin denies;
//  2. an auth-requiring assistant with no verified caller denies;
//  3. otherwise the request is allowed.
func Authorize(cfg Config, origin string, identity Identity) Decision {
	if len(cfg.AllowedOrigins) > 0 && !containsOrigin(cfg.AllowedOrigins, origin) {
		return Decision{Reason: "origin not allowed"}
	}

	if cfg.RequiresAuth && !identity.Verified {
		return Decision{Reason: "authentication required", AuthRequired: true}
	}

	return Decision{Allowed: true}
}

// containsOrigin matches the request origin against the allow-list.
// Entries may be full origins ("https://example.com") or bare hostnames
// ("example.com"); hostname entries match any scheme and port.
func containsOrigin(allowed []string, origin string) bool {
	host := originHost(origin)
	for _, a := range allowed {
		if a == origin {
			return true
		}
		if host != "" && a == host {
			return true
		}
	}
	return false
}

func originHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Hostname() == "" {
		return origin
	}
	return u.Hostname()
}
