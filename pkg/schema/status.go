// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ModuleStatus enumerates the lifecycle states a running module publishes
// on the heartbeat broadcast, ported from original_source's
// umps/proxyBroadcasts/heartbeat/status.hpp.
type ModuleStatus int

const (
	ModuleStatusUnknown ModuleStatus = iota
	ModuleStatusAlive
	ModuleStatusDisconnected
	ModuleStatusDied
)

func (s ModuleStatus) String() string {
	switch s {
	case ModuleStatusAlive:
		return "Alive"
	case ModuleStatusDisconnected:
		return "Disconnected"
	case ModuleStatusDied:
		return "Died"
	default:
		return "Unknown"
	}
}

// timestampLayout is the ISO-8601-with-milliseconds layout the original
// Status class parses: "XXXX-XX-XXTXX:XX:XX.XXX".
const timestampLayout = "2006-01-02T15:04:05.000"

// Status is the module liveness record published by the heartbeat
// process (SPEC_FULL §3, §4.6).
type Status struct {
	Module       string       `json:"module"`
	Host         string       `json:"host"`
	ModuleStatus ModuleStatus `json:"module_status"`
	Timestamp    string       `json:"timestamp"`
}

// SetTimestampToNow stamps s with the current UTC time at millisecond
// precision, clamping the edge case where rounding pushes milliseconds to
// 1000 (SPEC_FULL §4.6).
func (s *Status) SetTimestampToNow() {
	s.SetTimestamp(time.Now().UTC())
}

// SetTimestamp formats t using the fixed ISO-8601 millisecond layout,
// rounding to the nearest millisecond; a fraction that rounds to 1000
// milliseconds is clamped to 999 within the same second.
func (s *Status) SetTimestamp(t time.Time) {
	ms := (t.Nanosecond() + 500_000) / 1_000_000
	if ms >= 1000 {
		ms = 999
	}
	t = t.Truncate(time.Second).Add(time.Duration(ms) * time.Millisecond)
	s.Timestamp = t.Format(timestampLayout)
}

type parsedTimestamp struct {
	year, month, day, hour, minute, second, millisecond int
}

// parseTimestamp decomposes the fixed-format timestamp into its
// component-wise parts for lexicographic comparison. It reports false for
// a timestamp that does not match the layout, and Greater and Equal then
// return false.
func parseTimestamp(ts string) (parsedTimestamp, bool) {
	// "2006-01-02T15:04:05.000"
	if len(ts) != len(timestampLayout) {
		return parsedTimestamp{}, false
	}
	datePart, timePart, ok := strings.Cut(ts, "T")
	if !ok {
		return parsedTimestamp{}, false
	}
	dateFields := strings.Split(datePart, "-")
	if len(dateFields) != 3 {
		return parsedTimestamp{}, false
	}
	secFields := strings.SplitN(timePart, ".", 2)
	if len(secFields) != 2 {
		return parsedTimestamp{}, false
	}
	clockFields := strings.Split(secFields[0], ":")
	if len(clockFields) != 3 {
		return parsedTimestamp{}, false
	}

	atoi := func(s string) (int, bool) {
		v, err := strconv.Atoi(s)
		return v, err == nil
	}

	var p parsedTimestamp
	var ok1, ok2, ok3, ok4, ok5, ok6, ok7 bool
	p.year, ok1 = atoi(dateFields[0])
	p.month, ok2 = atoi(dateFields[1])
	p.day, ok3 = atoi(dateFields[2])
	p.hour, ok4 = atoi(clockFields[0])
	p.minute, ok5 = atoi(clockFields[1])
	p.second, ok6 = atoi(clockFields[2])
	p.millisecond, ok7 = atoi(secFields[1])
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7) {
		return parsedTimestamp{}, false
	}
	return p, true
}

// Greater implements the strict partial order from SPEC_FULL §4.6:
// component-wise comparison of (year, month, day, hour, minute, second,
// millisecond). Two equal timestamps compare not-greater in both
// directions; Greater does not define equality (see Equal).
func Greater(lhs, rhs Status) bool {
	a, aok := parseTimestamp(lhs.Timestamp)
	b, bok := parseTimestamp(rhs.Timestamp)
	if !aok || !bok {
		return false
	}
	if a.year != b.year {
		return a.year > b.year
	}
	if a.month != b.month {
		return a.month > b.month
	}
	if a.day != b.day {
		return a.day > b.day
	}
	if a.hour != b.hour {
		return a.hour > b.hour
	}
	if a.minute != b.minute {
		return a.minute > b.minute
	}
	if a.second != b.second {
		return a.second > b.second
	}
	return a.millisecond > b.millisecond
}

// Equal reports component-wise timestamp equality. It is defined
// separately from Greater per SPEC_FULL Open Question #4: Greater is a
// strict partial order and does not imply Equal = !Greater(a,b) &&
// !Greater(b,a) when either timestamp fails to parse.
func Equal(lhs, rhs Status) bool {
	a, aok := parseTimestamp(lhs.Timestamp)
	b, bok := parseTimestamp(rhs.Timestamp)
	return aok && bok && a == b
}

func (s *Status) TypeTag() string { return "UMPS.Status" }

func (s *Status) ToCBOR() ([]byte, error) { return marshalCBOR(s) }

func (s *Status) FromCBOR(data []byte) error {
	var decoded Status
	if err := unmarshalCBOR(data, &decoded); err != nil {
		return err
	}
	if decoded.Module == "" {
		return fmt.Errorf("schema: status missing module name")
	}
	*s = decoded
	return nil
}
