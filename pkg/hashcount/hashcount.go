package hashcount

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
)

// DigestSize is the length of a SHA-1 digest in bytes.
const DigestSize = 20

// RecordSize is the length of one encoded record in bytes.
const RecordSize = DigestSize + 4

// Digest is a raw SHA-1 hash value.
type Digest [DigestSize]byte

// String returns the digest as 40 lowercase hex characters.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// DigestFromHex parses a 40-character hex string into a Digest.
func DigestFromHex(s string) (Digest, error) {
	var d Digest
	if len(s) != 2*DigestSize {
		return d, fmt.Errorf("hashcount: digest must be %d hex characters, got %d", 2*DigestSize, len(s))
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return d, fmt.Errorf("hashcount: decode digest: %w", err)
	}
	return d, nil
}

// Record pairs a digest with its breach occurrence count.
// The count is whatever the service reported; zero is a legal value.
type Record struct {
	Digest Digest
	Count  uint32
}

// Encode writes the record's 24-byte representation into buf.
// buf must be at least RecordSize bytes long.
func (r Record) Encode(buf []byte) {
	copy(buf[:DigestSize], r.Digest[:])
	binary.BigEndian.PutUint32(buf[DigestSize:RecordSize], r.Count)
}

// AppendEncoded appends the record's 24-byte representation to buf.
func (r Record) AppendEncoded(buf []byte) []byte {
	buf = append(buf, r.Digest[:]...)
	return binary.BigEndian.AppendUint32(buf, r.Count)
}

// Decode reads a record from the first RecordSize bytes of buf.
func Decode(buf []byte) (Record, error) {
	if len(buf) < RecordSize {
		return Record{}, fmt.Errorf("hashcount: short record: %d bytes", len(buf))
	}
	var r Record
	copy(r.Digest[:], buf[:DigestSize])
	r.Count = binary.BigEndian.Uint32(buf[DigestSize:RecordSize])
	return r, nil
}

// Less reports whether a orders before b by byte-lexicographic digest order.
func Less(a, b Record) bool {
	return bytes.Compare(a.Digest[:], b.Digest[:]) < 0
}

// Sort sorts records in place by ascending digest. The sort is stable so
// duplicate digests, should the service ever produce any, keep their
// arrival order.
func Sort(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return Less(records[i], records[j])
	})
}

// IsSorted reports whether records are in non-decreasing digest order.
func IsSorted(records []Record) bool {
	return sort.SliceIsSorted(records, func(i, j int) bool {
		return Less(records[i], records[j])
	})
}
