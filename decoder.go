package wavsplit

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/riff"
)

// countingReader tracks how many bytes were pulled from the underlying
// reader so the header size is exact whatever the chunk layout.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)

	return n, err
}

type headerDecoder struct {
	r      *countingReader
	parser *riff.Parser
	h      *Header
}

// DecodeHeader reads a WAV header from r and leaves r positioned on the
// first byte of the sample payload.
//
// Only canonical PCM (fmt size 16, format tag 1) and WAVEFORMATEXTENSIBLE
// (format tag 0xFFFE, extra size 22, PCM or IEEE float sub-format) headers
// are accepted. Chunks between fmt and data are skipped.
// The decoder doesn't cross-check the fmt fields, see Header.Validate.
func DecodeHeader(r io.Reader) (*Header, error) {
	cr := &countingReader{r: r}
	d := &headerDecoder{
		r:      cr,
		parser: riff.New(cr),
		h:      &Header{},
	}

	err := d.readPreamble()
	if err != nil {
		return nil, err
	}

	err = d.readFmtChunk()
	if err != nil {
		return nil, err
	}

	err = d.findDataChunk()
	if err != nil {
		return nil, err
	}

	h := d.h
	h.TotalSamples = totalSampleFrames(h.DataSize, h.NumChannels, h.BitsPerSample)
	h.Duration = durationFromFrames(h.TotalSamples, h.SampleRate)

	return h, nil
}

// DecodeHeaderFile decodes the header of the file at path.
func DecodeHeaderFile(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	defer f.Close()

	return DecodeHeader(f)
}

// idAndSize wraps riff.Parser.IDnSize, which doesn't report a short read
// of the size field.
func (d *headerDecoder) idAndSize() ([4]byte, uint32, error) {
	start := d.r.n

	id, size, err := d.parser.IDnSize()
	if err != nil {
		return id, size, err
	}

	if d.r.n-start != 8 {
		return id, size, io.ErrUnexpectedEOF
	}

	return id, size, nil
}

func (d *headerDecoder) readPreamble() error {
	id, size, err := d.idAndSize()
	if err != nil {
		return fmt.Errorf("failed to read RIFF header: %w", eofAsUnexpected(err))
	}

	if id != riff.RiffID {
		return fmt.Errorf("%w: %q is not a RIFF container", ErrUnsupportedFormat, tagString(id))
	}

	d.h.ChunkID = id
	d.h.ChunkSize = size

	err = binary.Read(d.r, binary.BigEndian, &d.h.WaveID)
	if err != nil {
		return fmt.Errorf("failed to read RIFF format: %w", eofAsUnexpected(err))
	}

	if d.h.WaveID != riff.WavFormatID {
		return fmt.Errorf("%w: %q is not a WAVE form", ErrUnsupportedFormat, tagString(d.h.WaveID))
	}

	d.h.HeaderSize += 12

	return nil
}

func (d *headerDecoder) readFmtChunk() error {
	h := d.h

	id, size, err := d.idAndSize()
	if err != nil {
		return fmt.Errorf("failed to read fmt chunk header: %w", eofAsUnexpected(err))
	}

	if id != riff.FmtID {
		return fmt.Errorf("%w: expected fmt chunk, got %q", errUnsupportedHeader, tagString(id))
	}

	h.FmtID = id
	h.FmtSize = size

	if size < canonicalFmtSize {
		return fmt.Errorf("%w: fmt chunk of %d bytes", errUnsupportedHeader, size)
	}

	chunk := &riff.Chunk{ID: id, Size: int(size), R: d.r}

	err = chunk.ReadLE(&h.AudioFormat)
	if err != nil {
		return fmt.Errorf("failed to read wav format: %w", eofAsUnexpected(err))
	}

	err = chunk.ReadLE(&h.NumChannels)
	if err != nil {
		return fmt.Errorf("failed to read channels: %w", eofAsUnexpected(err))
	}

	err = chunk.ReadLE(&h.SampleRate)
	if err != nil {
		return fmt.Errorf("failed to read sample rate: %w", eofAsUnexpected(err))
	}

	err = chunk.ReadLE(&h.ByteRate)
	if err != nil {
		return fmt.Errorf("failed to read byte rate: %w", eofAsUnexpected(err))
	}

	err = chunk.ReadLE(&h.BlockAlign)
	if err != nil {
		return fmt.Errorf("failed to read block align: %w", eofAsUnexpected(err))
	}

	err = chunk.ReadLE(&h.BitsPerSample)
	if err != nil {
		return fmt.Errorf("failed to read bit depth: %w", eofAsUnexpected(err))
	}

	h.HeaderSize += 24

	switch {
	case size == canonicalFmtSize && h.AudioFormat == WaveFormatPCM:
		h.Extensible = false

		return nil
	case size > canonicalFmtSize && h.AudioFormat == WaveFormatExtensible:
		return d.readExtensible(chunk)
	default:
		return fmt.Errorf("%w: fmt size %d with format tag 0x%04X", errUnsupportedHeader, size, h.AudioFormat)
	}
}

func (d *headerDecoder) readExtensible(chunk *riff.Chunk) error {
	h := d.h

	err := chunk.ReadLE(&h.ExtraParamSize)
	if err != nil {
		return fmt.Errorf("failed to read fmt extension size: %w", eofAsUnexpected(err))
	}

	h.HeaderSize += 2

	if h.ExtraParamSize != extensibleExtraSize || h.FmtSize < extensibleFmtSize {
		return fmt.Errorf("%w: extension size %d in a %d byte fmt chunk",
			errUnsupportedHeader, h.ExtraParamSize, h.FmtSize)
	}

	h.Extensible = true

	err = chunk.ReadLE(&h.ValidBits)
	if err != nil {
		return fmt.Errorf("failed to read valid bits per sample: %w", eofAsUnexpected(err))
	}

	err = chunk.ReadLE(&h.ChannelMask)
	if err != nil {
		return fmt.Errorf("failed to read channel mask: %w", eofAsUnexpected(err))
	}

	err = chunk.ReadLE(&h.SubFormat)
	if err != nil {
		return fmt.Errorf("failed to read sub format: %w", eofAsUnexpected(err))
	}

	h.HeaderSize += extensibleExtraSize

	if !h.SubFormat.supported() {
		return fmt.Errorf("%w: %s", errUnsupportedType, h.SubFormat)
	}

	// Anything after the 22 extensible bytes belongs to the fmt chunk.
	if rest := int64(h.FmtSize) - extensibleFmtSize; rest > 0 {
		start := d.r.n
		chunk.Drain()

		if d.r.n-start != rest {
			return fmt.Errorf("failed to skip fmt extension: %w", io.ErrUnexpectedEOF)
		}

		h.HeaderSize += rest
	}

	return nil
}

// findDataChunk walks the chunks following fmt until it meets data.
// Every other chunk is skipped by exactly its declared size.
func (d *headerDecoder) findDataChunk() error {
	h := d.h

	for {
		offset := d.r.n

		id, size, err := d.idAndSize()
		if errors.Is(err, io.EOF) {
			return ErrDataChunkNotFound
		}

		if err != nil {
			return fmt.Errorf("failed to read chunk header at offset %d: %w", offset, err)
		}

		h.HeaderSize += 8

		if id == riff.DataFormatID {
			h.DataID = id
			h.DataSize = size

			return nil
		}

		skipped := SkippedChunk{ID: id, Size: size, Offset: offset}
		chunk := &riff.Chunk{ID: id, Size: int(size), R: d.r}
		start := d.r.n

		if id == CIDList && size >= 4 {
			// A short read is caught by the size check below.
			_ = chunk.ReadLE(&skipped.ListType)
		}

		chunk.Drain()

		if d.r.n-start != int64(size) {
			return fmt.Errorf("failed to skip %q chunk: %w", tagString(id), io.ErrUnexpectedEOF)
		}

		h.HeaderSize += int64(size)
		h.Skipped = append(h.Skipped, skipped)
	}
}

func eofAsUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return err
}
