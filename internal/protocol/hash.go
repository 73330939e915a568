package protocol

import "unicode/utf16"

const (
	fnvOffset32 = 0x811c9dc5
	fnvPrime32  = 0x01000193
)

// FileIDFromPath derives a stable 32-bit file id from a path with FNV-1a.
// The hash runs over UTF-16 code units so ids match peers that hash
// JavaScript strings; for ASCII paths this equals byte-wise FNV-1a.
//
// Only needed in multi-file sessions; single-file sessions use fileId 0.
func FileIDFromPath(path string) uint32 {
	h := uint32(fnvOffset32)
	for _, r := range path {
		if r < 0x10000 {
			h ^= uint32(r)
			h *= fnvPrime32
			continue
		}
		hi, lo := utf16.EncodeRune(r)
		h ^= uint32(hi)
		h *= fnvPrime32
		h ^= uint32(lo)
		h *= fnvPrime32
	}
	return h
}
