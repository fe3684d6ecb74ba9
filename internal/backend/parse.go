package backend

import (
	"strconv"
	"strings"
)

// parseDeviceSpeed extracts the rate from the character device's status
// line, e.g. "Button Press Speed: 7 presses/second\n". The value is the first
// whitespace-delimited token of the field following the first colon.
func parseDeviceSpeed(s string) (uint64, bool) {
	_, field, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	if i := strings.IndexByte(field, ':'); i >= 0 {
		field = field[:i]
	}
	tok := strings.Fields(field)
	if len(tok) == 0 {
		return 0, false
	}
	return parseSpeed(tok[0])
}

// parseAttrSpeed parses a sysfs attribute holding a bare decimal.
func parseAttrSpeed(s string) (uint64, bool) {
	return parseSpeed(strings.TrimSpace(s))
}

func parseSpeed(s string) (uint64, bool) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
