package wavsplit

var (
	// CIDList is the chunk ID for a LIST chunk.
	CIDList = [4]byte{'L', 'I', 'S', 'T'}
	// CIDSmpl is the chunk ID for a smpl chunk.
	CIDSmpl = [4]byte{'s', 'm', 'p', 'l'}
	// CIDCue is the chunk ID for the cue chunk.
	CIDCue = [4]byte{'c', 'u', 'e', 0x20}
	// CIDFact is the chunk ID for the fact chunk.
	CIDFact = [4]byte{'f', 'a', 'c', 't'}
	// CIDBext is the chunk ID for the broadcast extension chunk.
	CIDBext = [4]byte{'b', 'e', 'x', 't'}
	// CIDCart is the chunk ID for the cart chunk.
	CIDCart = [4]byte{'c', 'a', 'r', 't'}
	// CIDJunk is the chunk ID for alignment padding.
	CIDJunk = [4]byte{'J', 'U', 'N', 'K'}
)

var chunkDescriptions = map[[4]byte]string{
	CIDList: "list",
	CIDSmpl: "sampler",
	CIDCue:  "cue points",
	CIDFact: "sample count",
	CIDBext: "broadcast extension",
	CIDCart: "cart",
	CIDJunk: "padding",
}

// SkippedChunk records a non-data chunk passed over while looking for the
// data chunk.
type SkippedChunk struct {
	ID [4]byte
	// Size is the declared payload size; exactly this many bytes were skipped.
	Size uint32
	// Offset is the position of the chunk ID from the start of the stream.
	Offset int64
	// ListType holds the first four payload bytes of a LIST chunk, INFO or adtl.
	ListType [4]byte
}

// Description names well known chunk types, or returns an empty string.
func (c SkippedChunk) Description() string {
	desc := chunkDescriptions[c.ID]
	if c.ID == CIDList && c.ListType != [4]byte{} {
		desc += " " + tagString(c.ListType)
	}

	return desc
}

func cloneSkippedChunks(chunks []SkippedChunk) []SkippedChunk {
	if len(chunks) == 0 {
		return nil
	}

	return append([]SkippedChunk(nil), chunks...)
}
