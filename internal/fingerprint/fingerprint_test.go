package fingerprint

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIP(t *testing.T) {
	a := HashIP("203.0.113.9", "salt-one")
	b := HashIP("203.0.113.9", "salt-one")
	c := HashIP("203.0.113.9", "salt-two")
	d := HashIP("203.0.113.10", "salt-one")

	require.NotEmpty(t, a)
	assert.Equal(t, a, b, "same ip and salt must be deterministic")
	assert.NotEqual(t, a, c, "different salt must change the digest")
	assert.NotEqual(t, a, d, "different ip must change the digest")
	assert.Len(t, a, 64)
}

func TestHashIP_EmptyInputs(t *testing.T) {
	assert.Empty(t, HashIP("", "salt"))
	assert.Empty(t, HashIP("203.0.113.9", ""))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "forwarded-for first entry wins",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.1", "X-Real-IP": "203.0.113.1"},
			want:    "198.51.100.7",
		},
		{
			name:    "real-ip fallback",
			headers: map[string]string{"X-Real-IP": "203.0.113.1"},
			want:    "203.0.113.1",
		},
		{
			name:    "no headers",
			headers: map[string]string{},
			want:    "",
		},
		{
			name:    "malformed forwarded-for falls through to real-ip",
			headers: map[string]string{"X-Forwarded-For": " , ", "X-Real-IP": "203.0.113.1"},
			want:    "203.0.113.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, "/t/demo/abc", nil)
			require.NoError(t, err)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}

func TestClientIP_NilRequest(t *testing.T) {
	assert.Empty(t, ClientIP(nil))
}

func TestDeriveDeviceHint(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want DeviceHint
	}{
		{
			name: "ipad is tablet even without mobile token",
			ua:   "Mozilla/5.0 (iPad; CPU OS 16_3 like Mac OS X) AppleWebKit/605.1.15",
			want: DeviceTablet,
		},
		{
			name: "android tablet without mobile token",
			ua:   "Mozilla/5.0 (Linux; Android 13; SM-X700) AppleWebKit/537.36 Safari/537.36",
			want: DeviceTablet,
		},
		{
			name: "android phone",
			ua:   "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 Mobile Safari/537.36",
			want: DeviceMobile,
		},
		{
			name: "iphone",
			ua:   "Mozilla/5.0 (iPhone; CPU iPhone OS 16_3 like Mac OS X) Mobile/15E148",
			want: DeviceMobile,
		},
		{
			name: "desktop chrome",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36",
			want: DeviceDesktop,
		},
		{
			name: "empty ua defaults to desktop",
			ua:   "",
			want: DeviceDesktop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveDeviceHint(tt.ua))
		})
	}
}
