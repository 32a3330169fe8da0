package api

import (
	"net"
	"net/http"

	"github.com/avct/uasurfer"
)

// requestMeta is contextual information extracted from an incoming request,
// recorded alongside analytics events.
type requestMeta struct {
	DeviceType string
	Country    string
}

// resolveRequestMeta parses the User-Agent and client IP into a requestMeta.
// The client IP prefers X-Forwarded-For over the socket address.
func (s *Server) resolveRequestMeta(r *http.Request) requestMeta {
	meta := requestMeta{DeviceType: "other"}

	ua := uasurfer.Parse(r.UserAgent())
	switch ua.DeviceType {
	case uasurfer.DeviceComputer:
		meta.DeviceType = "desktop"
	case uasurfer.DevicePhone:
		meta.DeviceType = "mobile"
	case uasurfer.DeviceTablet:
		meta.DeviceType = "tablet"
	}

	ipStr := r.Header.Get("X-Forwarded-For")
	if ipStr == "" {
		ipStr, _, _ = net.SplitHostPort(r.RemoteAddr)
	}
	if ip := net.ParseIP(ipStr); ip != nil && s.GeoIP != nil {
		meta.Country = s.GeoIP.Country(ip)
	}

	return meta
}
