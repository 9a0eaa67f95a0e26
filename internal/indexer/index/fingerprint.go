package index

import (
	"encoding/binary"
	"encoding/hex"
	"sort"

	"github.com/zeebo/blake3"
)

// Fingerprint is a BLAKE3 digest over the postings, df and document lengths
// in canonical order. Two builds from the same collection, stop-words and
// stemmer yield the same fingerprint.
func (idx *Index) Fingerprint() string {
	h := blake3.New()
	var buf [8]byte
	writeInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	writeString := func(s string) {
		writeInt(len(s))
		h.Write([]byte(s))
	}

	ids := make([]string, len(idx.docIDs))
	copy(ids, idx.docIDs)
	sort.Strings(ids)
	writeInt(len(ids))
	for _, id := range ids {
		writeString(id)
		writeInt(idx.docLen[id])
	}

	entries := idx.Snapshot()
	writeInt(len(entries))
	for _, entry := range entries {
		writeString(entry.Term)
		writeInt(idx.df[entry.Term])
		for _, p := range entry.Postings {
			writeString(p.DocID)
			writeInt(p.Frequency)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
