package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// RealIP rewrites r.RemoteAddr to the forwarded client address, but only
// when the direct peer is inside one of the trusted prefixes. X-Forwarded-For
// is walked right to left past trusted hops; X-Real-IP is used when it is
// absent. With no trusted prefixes the headers are ignored.
func RealIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(trusted) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if peer, ok := peerAddr(r.RemoteAddr); ok && isTrusted(trusted, peer) {
				if client := forwardedClient(r, trusted); client.IsValid() {
					r.RemoteAddr = client.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func peerAddr(remote string) (netip.Addr, bool) {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

func isTrusted(trusted []netip.Prefix, addr netip.Addr) bool {
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func forwardedClient(r *http.Request, trusted []netip.Prefix) netip.Addr {
	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		var last netip.Addr
		for i := len(hops) - 1; i >= 0; i-- {
			addr, ok := peerAddr(strings.TrimSpace(hops[i]))
			if !ok {
				break
			}
			last = addr
			if !isTrusted(trusted, addr) {
				return addr
			}
		}
		return last
	}

	if addr, ok := peerAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ok {
		return addr
	}
	return netip.Addr{}
}
