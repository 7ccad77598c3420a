package hibp

import (
	"fmt"
	"strings"
	"testing"

	"github.com/607011/hibpdl/pkg/hashcount"
)

func TestParseRangeSingleLine(t *testing.T) {
	records := ParseRange("5BAA6", []byte("1E4C9B93F3F0682250B6CF8331B7EE68FD8:12345\r\n"))
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	want, err := hashcount.DigestFromHex("5baa61e4c9b93f3f0682250b6cf8331b7ee68fd8")
	if err != nil {
		t.Fatal(err)
	}
	if records[0].Digest != want {
		t.Errorf("digest = %s, want %s", records[0].Digest, want)
	}
	if records[0].Count != 12345 {
		t.Errorf("count = %d, want 12345", records[0].Count)
	}
}

func TestParseRangeLineCount(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		lines int
	}{
		{"empty body", "", 0},
		{"one crlf line", "0000000000000000000000000000000000000:1\r\n", 1},
		{"one lf line", "0000000000000000000000000000000000000:1\n", 1},
		{"three lines", strings.Repeat("00000000000000000000000000000000000AB:7\r\n", 3), 3},
		{"unterminated trailing line dropped", "0000000000000000000000000000000000000:1\r\n00000000000000000000000000000000000FF:2", 1},
		{"bare newlines emit", "\n\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := ParseRange("ABCDE", []byte(tt.body))
			if len(records) != tt.lines {
				t.Errorf("got %d records, want %d", len(records), tt.lines)
			}
		})
	}
}

func TestParseRangeManyLines(t *testing.T) {
	var b strings.Builder
	const n = 1000
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%035X:%d\r\n", i, i*3)
	}

	records := ParseRange("00000", []byte(b.String()))
	if len(records) != n {
		t.Fatalf("got %d records, want %d", len(records), n)
	}
	for i, r := range records {
		if r.Count != uint32(i*3) {
			t.Fatalf("record %d: count = %d, want %d", i, r.Count, i*3)
		}
	}
}

func TestParseRangePrefixApplied(t *testing.T) {
	records := ParseRange("FFFFF", []byte("0000000000000000000000000000000000000:9\n"))
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	d := records[0].Digest
	// FFFFF0... -> ff ff f0
	if d[0] != 0xff || d[1] != 0xff || d[2] != 0xf0 {
		t.Errorf("prefix not applied: % x", d[:3])
	}
}

func TestParseRangeZeroCount(t *testing.T) {
	records := ParseRange("00000", []byte("0000000000000000000000000000000000000:0\r\n"))
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Count != 0 {
		t.Errorf("count = %d, want 0", records[0].Count)
	}
}

func TestParseRangeSkipsJunk(t *testing.T) {
	// Stray bytes outside the expected grammar are ignored without error.
	records := ParseRange("00000", []byte("::xx\r\n0000000000000000000000000000000000001:4\r\n"))
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[1].Count != 4 {
		t.Errorf("count = %d, want 4", records[1].Count)
	}
}
