package ipn

import "net/netip"

// IsInSubnet reports whether addr (IPv4 dotted quad) belongs to the given
// CIDR block. Malformed input never matches.
func IsInSubnet(addr, cidr string) bool {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return false
	}

	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return false
	}
	ip = ip.Unmap()

	if !ip.Is4() || !prefix.Addr().Is4() {
		return false
	}

	return prefix.Contains(ip)
}

// IsInAnySubnet reports whether addr belongs to at least one of the CIDR
// blocks.
func IsInAnySubnet(addr string, cidrs []string) bool {
	for _, cidr := range cidrs {
		if IsInSubnet(addr, cidr) {
			return true
		}
	}
	return false
}
