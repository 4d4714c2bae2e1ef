package fingerprint

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// DeviceHint is the coarse device class derived from a user agent.
type DeviceHint string

const (
	DeviceMobile  DeviceHint = "mobile"
	DeviceDesktop DeviceHint = "desktop"
	DeviceTablet  DeviceHint = "tablet"
)

// HashIP derives a one-way, salted digest of a raw IP address. Deterministic
// for the same (ip, salt) pair, never reversible. Only ever used as a fuzzy
// matching key; raw IPs are not stored anywhere.
func HashIP(ip, salt string) string {
	if ip == "" || salt == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(ip))
	return hex.EncodeToString(mac.Sum(nil))
}

// ClientIP extracts the originating client IP from forwarding headers.
// Prefers the first entry of X-Forwarded-For, falls back to X-Real-IP,
// returns "" when neither is usable. Never panics on malformed input.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	return ""
}

// DeriveDeviceHint classifies a user agent into tablet/mobile/desktop via
// substring heuristics. Tablet signals are checked before mobile signals so
// that an Android tablet UA (which lacks "mobile") lands on tablet rather
// than desktop. A missing UA defaults to desktop; that is a deliberate
// default, not an error.
func DeriveDeviceHint(userAgent string) DeviceHint {
	if userAgent == "" {
		return DeviceDesktop
	}

	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "ipad"),
		strings.Contains(ua, "tablet"),
		strings.Contains(ua, "kindle"),
		strings.Contains(ua, "android") && !strings.Contains(ua, "mobile"):
		return DeviceTablet
	case strings.Contains(ua, "mobile"),
		strings.Contains(ua, "iphone"),
		strings.Contains(ua, "android"),
		strings.Contains(ua, "ipod"):
		return DeviceMobile
	default:
		return DeviceDesktop
	}
}
