package downloader

// MaxPrefix is the exclusive upper bound of the 4-nibble prefix space.
const MaxPrefix = 0x10000

const hexUpper = "0123456789ABCDEF"

// Batch is a half-open interval of 4-nibble prefix values processed,
// flushed, and checkpointed as one unit.
type Batch struct {
	First uint32 // inclusive
	Last  uint32 // exclusive
}

// Batches partitions [first, last) into contiguous intervals of at most
// step values. The final batch may be shorter.
func Batches(first, last, step uint32) []Batch {
	if first >= last || step == 0 {
		return nil
	}
	batches := make([]Batch, 0, (last-first+step-1)/step)
	for s := first; s < last; s += step {
		end := s + step
		if end > last {
			end = last
		}
		batches = append(batches, Batch{First: s, Last: end})
	}
	return batches
}

// groupLabel renders a prefix value as 4 uppercase hex characters, the
// form the API expects.
func groupLabel(v uint32) string {
	return string([]byte{
		hexUpper[v>>12&0xf],
		hexUpper[v>>8&0xf],
		hexUpper[v>>4&0xf],
		hexUpper[v&0xf],
	})
}
