// Package strstore keeps UTF-16 strings in allocator blocks.
//
// A string of at most MaxShortLength code units is short and lives in one
// block:
//
//	+0  int32 length in code units
//	+4  length x uint16
//
// Anything longer is a chain of segments. The first segment fills a whole
// chunk-sized block and carries the total length and the link to the next
// segment; later segments carry only the link. The last segment is sized for
// whatever remains and links to 0:
//
//	first:  [int32 length][recptr next][LongFirstChars units]
//	later:  [recptr next][up to SegChars units]
//
// Whether a record is short or long is decided by its length alone.
package strstore
