// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package auth implements the authentication subsystem (SPEC_FULL §4.3):
// the ZAP-style handshake service and the pluggable Authenticator policy
// it consults, grounded on cc-backend/internal/auth's Authenticator
// interface plus chained-implementation pattern.
package auth

import "strings"

// IsOkayIP reports whether an IP pattern is well-formed for the matcher
// below. Ported exactly from original_source's
// private/authentication/checkIP.hpp: empty is rejected, the literal
// "*.*.*.*" is the one allowed all-wildcard form, a leading '*' is
// otherwise rejected, and more than one '*' anywhere is rejected.
func IsOkayIP(ip string) bool {
	if ip == "" {
		return false
	}
	if ip == "*.*.*.*" {
		return true
	}
	if ip[0] == '*' {
		return false
	}
	if strings.Count(ip, "*") > 1 {
		return false
	}
	return true
}

// IPExists reports whether ip matches any pattern in addresses. A pattern
// matches literally, or via "*.*.*.*" matching everything, or — for a
// pattern containing a single '*' not in the leading position — by
// prefix comparison up to (not including) the character before the '*'.
// Ported from original_source's ipExists.
func IPExists(ip string, addresses map[string]struct{}) bool {
	if _, ok := addresses[ip]; ok {
		return true
	}
	if _, ok := addresses["*.*.*.*"]; ok {
		return true
	}
	for pattern := range addresses {
		found := strings.IndexByte(pattern, '*')
		if found <= 0 {
			continue
		}
		if len(ip) < found-1 {
			continue
		}
		if pattern[:found-1] == ip[:found-1] {
			return true
		}
	}
	return false
}
