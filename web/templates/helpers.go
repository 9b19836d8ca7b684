package templates

import (
	"time"

	"github.com/dustin/go-humanize"
)

// shortenAddress keeps the 0x prefix plus four characters on each side of
// an address, e.g. 0x1234...cdef. Short values are returned unchanged.
func shortenAddress(addr string) string {
	const chars = 4
	if len(addr) <= 2*chars+2+3 {
		return addr
	}
	return addr[:chars+2] + "..." + addr[len(addr)-chars:]
}

func humanBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

func timeSince(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

// isoTime formats t for a <time datetime> attribute.
func isoTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
