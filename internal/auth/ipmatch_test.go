// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsOkayIP(t *testing.T) {
	cases := []struct {
		ip   string
		want bool
	}{
		{"", false},
		{"*.*.*.*", true},
		{"*.1.2.3", false},
		{"1*.2.3.4", true},
		{"1.2.3.4", true},
		{"1.2.*.4.*", false}, // two wildcards
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsOkayIP(c.ip), "ip=%q", c.ip)
	}
}

func TestIPExistsLiteralMatch(t *testing.T) {
	set := map[string]struct{}{"192.168.1.10": {}}
	assert.True(t, IPExists("192.168.1.10", set))
	assert.False(t, IPExists("192.168.1.11", set))
}

func TestIPExistsAllWildcard(t *testing.T) {
	set := map[string]struct{}{"*.*.*.*": {}}
	assert.True(t, IPExists("10.0.0.1", set))
	assert.True(t, IPExists("anything", set))
}

func TestIPExistsPrefixWildcard(t *testing.T) {
	set := map[string]struct{}{"192.168.*": {}}
	assert.True(t, IPExists("192.168.1.10", set))
	assert.False(t, IPExists("10.0.0.1", set))
}

func TestIPExistsNoMatch(t *testing.T) {
	set := map[string]struct{}{"10.0.0.0*": {}}
	assert.False(t, IPExists("192.168.1.1", set))
}
