package assistant

import "testing"

func TestAuthorize(t *testing.T) {
	public := Config{
		Key:            "customer-support",
		AllowedOrigins: []string{"https://example.com", "https://shop.example.com"},
	}
	openToAll := Config{Key: "sales"}
	internal := Config{
		Key:          "hr-internal",
		RequiresAuth: true,
	}

	verified := Identity{Subject: "user-1", Verified: true}
	anonymous := Identity{}

	tests := []struct {
		name             string
		cfg              Config
		origin           string
		identity         Identity
		wantAllowed      bool
		wantReason       string
		wantAuthRequired bool
	}{
		{
			name:        "allowed origin",
			cfg:         public,
			origin:      "https://example.com",
			identity:    anonymous,
			wantAllowed: true,
		},
		{
			name:        "second allowed origin",
			cfg:         public,
			origin:      "https://shop.example.com",
			identity:    anonymous,
			wantAllowed: true,
		},
		{
			name:       "non-member origin denied",
			cfg:        public,
			origin:     "https://evil.example.net",
			identity:   anonymous,
			wantReason: "origin not allowed",
		},
		{
			name:       "empty origin denied against non-empty allow-list",
			cfg:        public,
			origin:     "",
			identity:   anonymous,
			wantReason: "origin not allowed",
		},
		{
			name:       "verified identity does not bypass origin policy",
			cfg:        public,
			origin:     "https://evil.example.net",
			identity:   verified,
			wantReason: "origin not allowed",
		},
		{
			name:        "hostname entry matches full origin",
			cfg:         Config{Key: "docs", AllowedOrigins: []string{"example.com"}},
			origin:      "https://example.com",
			identity:    anonymous,
			wantAllowed: true,
		},
		{
			name:        "hostname entry matches origin with port",
			cfg:         Config{Key: "docs", AllowedOrigins: []string{"localhost"}},
			origin:      "http://localhost:3000",
			identity:    anonymous,
			wantAllowed: true,
		},
		{
			name:       "hostname entry does not match subdomain",
			cfg:        Config{Key: "docs", AllowedOrigins: []string{"example.com"}},
			origin:     "https://evil.example.com",
			identity:   anonymous,
			wantReason: "origin not allowed",
		},
		{
			name:        "empty allow-list admits any origin",
			cfg:         openToAll,
			origin:      "https://anywhere.example.org",
			identity:    anonymous,
			wantAllowed: true,
		},
		{
			name:             "auth-requiring assistant denies anonymous",
			cfg:              internal,
			origin:           "https://intranet.example.com",
			identity:         anonymous,
			wantReason:       "authentication required",
			wantAuthRequired: true,
		},
		{
			name:        "auth-requiring assistant admits verified caller",
			cfg:         internal,
			origin:      "https://intranet.example.com",
			identity:    verified,
			wantAllowed: true,
		},
		{
			name: "origin check runs before auth check",
			cfg: Config{
				Key:            "hr-internal",
				RequiresAuth:   true,
				AllowedOrigins: []string{"https://intranet.example.com"},
			},
			origin:     "https://example.com",
			identity:   anonymous,
			wantReason: "origin not allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(tt.cfg, tt.origin, tt.identity)
			if got.Allowed != tt.wantAllowed {
				t.Errorf("Authorize() allowed = %v, want %v", got.Allowed, tt.wantAllowed)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Authorize() reason = %q, want %q", got.Reason, tt.wantReason)
			}
			if got.AuthRequired != tt.wantAuthRequired {
				t.Errorf("Authorize() authRequired = %v, want %v", got.AuthRequired, tt.wantAuthRequired)
			}
		})
	}
}

func TestAuthorizeDeterministic(t *testing.T) {
	cfg := Config{Key: "customer-support", AllowedOrigins: []string{"https://example.com"}}
	identity := Identity{Subject: "user-1", Verified: true}

	first := Authorize(cfg, "https://example.com", identity)
	for i := 0; i < 100; i++ {
		if got := Authorize(cfg, "https://example.com", identity); got != first {
			t.Fatalf("Authorize() not deterministic: %+v != %+v", got, first)
		}
	}
}
