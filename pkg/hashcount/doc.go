// Package hashcount defines the hash+count record and its on-disk format.
//
// A Record pairs a 20-byte SHA-1 digest with the number of times the
// corresponding password appeared in known breaches. Records are stored in
// a flat binary file as fixed 24-byte entries:
//
//	bytes  0-19  digest, verbatim
//	bytes 20-23  count, big-endian uint32
//
// There is no file header or footer; the file is a plain concatenation of
// records, appended batch by batch. Records within a batch are sorted by
// ascending byte order of the digest, but the file as a whole is not
// re-sorted across batches.
//
// # Writing
//
// Use [NewWriter] to open a dataset for appending. [Writer.WriteRecords]
// buffers records and [Writer.Flush] forces them to stable storage, which
// callers must do before recording a checkpoint.
//
// # Reading
//
// Use [OpenReader] to stream records back with [Reader.Next], or
// [ReadFile] to load a whole dataset into memory.
package hashcount
