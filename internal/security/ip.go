package security

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// UnknownIP is returned when no candidate address is a public IP.
const UnknownIP = "0.0.0.0"

var ipHeaders = []string{"X-Forwarded-For", "X-Real-IP", "Client-IP"}

// ClientIP resolves the submitter address: forwarded headers in priority order,
// then the direct connection. Only public addresses are accepted.
func ClientIP(header http.Header, remoteAddr string) string {
	for _, name := range ipHeaders {
		if ip, ok := publicIP(firstToken(header.Get(name))); ok {
			return ip
		}
	}

	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	if ip, ok := publicIP(host); ok {
		return ip
	}

	return UnknownIP
}

func firstToken(value string) string {
	if i := strings.IndexByte(value, ','); i >= 0 {
		value = value[:i]
	}
	return strings.TrimSpace(value)
}

var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("2001:db8::/32"),
}

func publicIP(value string) (string, bool) {
	if value == "" {
		return "", false
	}

	addr, err := netip.ParseAddr(value)
	if err != nil {
		return "", false
	}
	addr = addr.WithZone("").Unmap()

	if addr.IsPrivate() || addr.IsLoopback() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsMulticast() {
		return "", false
	}
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return "", false
		}
	}

	return addr.String(), true
}
