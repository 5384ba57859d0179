package wire

import (
	"fmt"
	"strings"
)

// Outbound protocol lines. Every reply and report is a single
// newline-terminated ASCII line, mirroring the inbound framing.

// Awake is sent on startup and in reply to "ping".
func Awake() []byte {
	return []byte("awake\n")
}

// Ident formats the identification reply to "version".
func Ident(tokens ...string) []byte {
	return []byte("id " + strings.Join(tokens, " ") + "\n")
}

// Status formats the periodic position report: the microsecond clock
// followed by all four axis positions in x, y, z, a order.
func Status(clock uint32, x, y, z, a int64) []byte {
	return []byte(fmt.Sprintf("txyza %d %d %d %d %d\n", clock, x, y, z, a))
}

// Debug formats a diagnostic line.
func Debug(text string) []byte {
	return []byte("dbg " + text + "\n")
}
