package hibp

import (
	"github.com/607011/hibpdl/pkg/hashcount"
)

// ParseRange decodes one range-query response body into records.
//
// The queried prefix supplies the first 5 of each digest's 40 hex
// characters; each body line supplies the remaining 35 plus a decimal
// occurrence count. The scan is a single pass:
//
//   - '\r' is consumed without effect.
//   - '\n' emits the record accumulated so far.
//   - an uppercase hex digit starts (or continues) filling digest
//     positions 5-39; the character after position 39 is taken as the
//     ':' separator and consumed unchecked, then decimal digits
//     accumulate into the count.
//   - anything else is skipped.
//
// A body that ends without a trailing newline loses its final record,
// matching the service contract that every line is terminated. The
// function allocates a fresh result slice per call and keeps no state,
// so it is safe to call concurrently.
func ParseRange(prefix string, body []byte) []hashcount.Record {
	var hexDigest [2 * hashcount.DigestSize]byte
	copy(hexDigest[:5], prefix)

	// ~1000 lines per range in practice
	records := make([]hashcount.Record, 0, 1024)
	var current hashcount.Record

	i := 0
	for i < len(body) {
		switch c := body[i]; {
		case c == '\r':
			i++
		case c == '\n':
			records = append(records, current)
			i++
		case isHexDigit(c):
			j := 5
			for i < len(body) && j < len(hexDigest) && isHexDigit(body[i]) {
				hexDigest[j] = body[i]
				j++
				i++
			}
			if j < len(hexDigest) {
				// Truncated line; leave the stale digest, it is
				// never emitted without a trailing newline anyway.
				continue
			}
			for k := 0; k < hashcount.DigestSize; k++ {
				current.Digest[k] = hexNibble(hexDigest[2*k])<<4 | hexNibble(hexDigest[2*k+1])
			}
			if i < len(body) {
				i++ // separator, ':' by contract
			}
			var count uint32
			for i < len(body) && isDigit(body[i]) {
				count = count*10 + uint32(body[i]-'0')
				i++
			}
			current.Count = count
		default:
			i++
		}
	}
	return records
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isHexDigit matches the uppercase hex alphabet the service emits.
func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'A' && c <= 'F')
}

func hexNibble(c byte) byte {
	if c >= 'A' {
		return c - 'A' + 10
	}
	return c - '0'
}
