package wavsplit

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

type testChunk struct {
	id   string
	size uint32
	data []byte
}

type chunkInventoryEntry struct {
	id   string
	size uint32
}

var (
	errFileTooSmall         = errors.New("file too small")
	errInvalidRiffWaveHdr   = errors.New("invalid riff/wave header")
	errChunkExceedsFileSize = errors.New("chunk exceeds file size")
)

func parseWavChunks(data []byte) ([]testChunk, error) {
	if len(data) < 12 {
		return nil, errFileTooSmall
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errInvalidRiffWaveHdr
	}

	chunks := make([]testChunk, 0)

	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += 8

		end := offset + int(size)
		if end > len(data) {
			return nil, fmt.Errorf("%w: %q", errChunkExceedsFileSize, id)
		}

		payload := append([]byte(nil), data[offset:end]...)
		chunks = append(chunks, testChunk{id: id, size: size, data: payload})

		offset = end
	}

	return chunks, nil
}

func parseWavChunksFromFile(path string) ([]testChunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return parseWavChunks(data)
}

func findChunk(chunks []testChunk, id string) (*testChunk, int) {
	for i := range chunks {
		if chunks[i].id == id {
			return &chunks[i], i
		}
	}

	return nil, -1
}

func buildChunkInventory(chunks []testChunk) []chunkInventoryEntry {
	out := make([]chunkInventoryEntry, 0, len(chunks))
	for _, ch := range chunks {
		out = append(out, chunkInventoryEntry{id: ch.id, size: ch.size})
	}

	return out
}

// wavFixture describes a synthetic input file. Extra chunks are placed
// between fmt and data.
type wavFixture struct {
	numChannels   uint16
	sampleRate    uint32
	bitsPerSample uint16
	extensible    bool
	channelMask   uint32
	subFormat     GUID
	// formatTag overrides the fmt audio format when non-zero.
	formatTag uint16
	// fmtTail is appended to the fmt body.
	fmtTail []byte
	extra   []testChunk
	data    []byte
	// dataSize overrides the declared data size when non-zero.
	dataSize uint32
}

func (f wavFixture) bytes() []byte {
	var fmtBody bytes.Buffer

	blockAlign := f.numChannels * f.bitsPerSample / 8
	audioFormat := WaveFormatPCM

	if f.extensible {
		audioFormat = WaveFormatExtensible
	}

	if f.formatTag != 0 {
		audioFormat = f.formatTag
	}

	le := func(w *bytes.Buffer, v any) {
		_ = binary.Write(w, binary.LittleEndian, v)
	}

	le(&fmtBody, audioFormat)
	le(&fmtBody, f.numChannels)
	le(&fmtBody, f.sampleRate)
	le(&fmtBody, f.sampleRate*uint32(blockAlign))
	le(&fmtBody, blockAlign)
	le(&fmtBody, f.bitsPerSample)

	if f.extensible {
		subFormat := f.subFormat
		if subFormat.IsZero() {
			subFormat = SubTypePCM
		}

		le(&fmtBody, uint16(extensibleExtraSize))
		le(&fmtBody, f.bitsPerSample)
		le(&fmtBody, f.channelMask)
		fmtBody.Write(subFormat[:])
	}

	fmtBody.Write(f.fmtTail)

	dataSize := f.dataSize
	if dataSize == 0 {
		dataSize = uint32(len(f.data))
	}

	var body bytes.Buffer
	body.WriteString("WAVE")
	body.WriteString("fmt ")
	le(&body, uint32(fmtBody.Len()))
	body.Write(fmtBody.Bytes())

	for _, c := range f.extra {
		body.WriteString(c.id)
		le(&body, uint32(len(c.data)))
		body.Write(c.data)
	}

	body.WriteString("data")
	le(&body, dataSize)
	body.Write(f.data)

	var out bytes.Buffer
	out.WriteString("RIFF")
	le(&out, uint32(body.Len()))
	out.Write(body.Bytes())

	return out.Bytes()
}

// headerLen is the number of bytes in front of the sample payload.
func (f wavFixture) headerLen() int64 {
	return int64(len(f.bytes()) - len(f.data))
}

func writeFixture(t *testing.T, dir, name string, f wavFixture) string {
	t.Helper()

	path := filepath.Join(dir, name)

	err := os.WriteFile(path, f.bytes(), 0o644)
	if err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}

	return path
}

// patternData returns n bytes that don't repeat with a short period.
func patternData(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i*7 + i/251)
	}

	return out
}

// deinterleave returns the bytes of every channel for complete frames.
func deinterleave(data []byte, numChannels, bytesPerSample int) [][]byte {
	blockAlign := numChannels * bytesPerSample
	out := make([][]byte, numChannels)

	for j := 0; j+blockAlign <= len(data); j += blockAlign {
		for c := 0; c < numChannels; c++ {
			out[c] = append(out[c], data[j+c*bytesPerSample:j+(c+1)*bytesPerSample]...)
		}
	}

	return out
}
