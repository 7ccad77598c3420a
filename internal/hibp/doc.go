// Package hibp talks to the Pwned Passwords range-query API.
//
// The API exposes a single endpoint, GET {base}/range/{PREFIX}, where PREFIX
// is the first 5 hex characters of a SHA-1 digest. The response is a
// text/plain body with one line per digest sharing the prefix:
//
//	<35 hex chars>:<decimal count>
//
// lines separated by CRLF or LF. The prefix itself is not repeated in the
// body; [ParseRange] reassembles full digests from the queried prefix plus
// the 35-character suffix.
//
// # Usage
//
//	client := hibp.NewClient(hibp.DefaultOptions())
//	body, err := client.Range(ctx, "5BAA6")
//	records := hibp.ParseRange("5BAA6", body)
//
// The client makes exactly one attempt per call. Retry policy is the
// caller's concern: the downloader retries a failed prefix indefinitely.
package hibp
