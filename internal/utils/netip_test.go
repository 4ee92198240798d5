package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		trustProxy bool
		want       string
	}{
		{"remote addr only", "10.0.0.1:1234", "", "", false, "10.0.0.1"},
		{"proxy headers ignored when untrusted", "10.0.0.1:1234", "1.2.3.4", "", false, "10.0.0.1"},
		{"first xff entry wins", "10.0.0.1:1234", "1.2.3.4, 5.6.7.8", "", true, "1.2.3.4"},
		{"real ip fallback", "10.0.0.1:1234", "", "9.9.9.9", true, "9.9.9.9"},
		{"v6 remote addr", "[::1]:1234", "", "", false, "::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", "192.168.1.1", "garbage", ""})

	if m.IsEmpty() {
		t.Fatal("matcher should not be empty")
	}
	cases := map[string]bool{
		"10.1.2.3":    true,
		"192.168.1.1": true,
		"192.168.1.2": false,
		"8.8.8.8":     false,
		"not-an-ip":   false,
	}
	for ip, want := range cases {
		if got := m.Allow(ip); got != want {
			t.Errorf("Allow(%q) = %v, want %v", ip, got, want)
		}
	}

	if !NewIPMatcher(nil).IsEmpty() {
		t.Error("empty list should produce an empty matcher")
	}
}
