package wavsplit

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

var errNilHeader = errors.New("can't encode a nil header")

// headerEncoder serializes header fields and keeps count of the bytes written.
type headerEncoder struct {
	w io.Writer

	WrittenBytes int
}

// AddLE serializes and adds the passed value using little endian.
func (e *headerEncoder) AddLE(src any) error {
	e.WrittenBytes += binary.Size(src)

	err := binary.Write(e.w, binary.LittleEndian, src)
	if err != nil {
		return fmt.Errorf("failed to write little endian: %w", err)
	}

	return nil
}

// EncodeHeader writes h to w. A canonical PCM header (fmt size 16, format
// tag 1) produces the 44-byte layout, an extensible header (fmt size above
// 16, format tag 0xFFFE) the 68-byte layout. Skipped chunks are not written
// back. Any other shape fails with ErrUnsupportedFormat.
func EncodeHeader(w io.Writer, h *Header) error {
	if h == nil {
		return errNilHeader
	}

	canonical := h.FmtSize == canonicalFmtSize && h.AudioFormat == WaveFormatPCM
	extensible := h.FmtSize > canonicalFmtSize && h.AudioFormat == WaveFormatExtensible

	if !canonical && !extensible {
		return fmt.Errorf("%w: fmt size %d with format tag 0x%04X", errUnsupportedHeader, h.FmtSize, h.AudioFormat)
	}

	e := &headerEncoder{w: w}

	err := e.writeFmt(h)
	if err != nil {
		return err
	}

	if extensible {
		err = e.writeExtensible(h)
		if err != nil {
			return err
		}
	}

	err = e.AddLE(riff.DataFormatID)
	if err != nil {
		return fmt.Errorf("error encoding data chunk ID - %w", err)
	}

	err = e.AddLE(h.DataSize)
	if err != nil {
		return fmt.Errorf("error encoding data chunk size - %w", err)
	}

	return nil
}

func (e *headerEncoder) writeFmt(h *Header) error {
	err := e.AddLE(riff.RiffID)
	if err != nil {
		return err
	}

	err = e.AddLE(h.ChunkSize)
	if err != nil {
		return err
	}

	err = e.AddLE(riff.WavFormatID)
	if err != nil {
		return err
	}

	err = e.AddLE(riff.FmtID)
	if err != nil {
		return err
	}

	err = e.AddLE(h.FmtSize)
	if err != nil {
		return err
	}

	err = e.AddLE(h.AudioFormat)
	if err != nil {
		return err
	}

	err = e.AddLE(h.NumChannels)
	if err != nil {
		return fmt.Errorf("error encoding the number of channels - %w", err)
	}

	err = e.AddLE(h.SampleRate)
	if err != nil {
		return fmt.Errorf("error encoding the sample rate - %w", err)
	}

	err = e.AddLE(h.ByteRate)
	if err != nil {
		return fmt.Errorf("error encoding the byte rate - %w", err)
	}

	err = e.AddLE(h.BlockAlign)
	if err != nil {
		return err
	}

	err = e.AddLE(h.BitsPerSample)
	if err != nil {
		return fmt.Errorf("error encoding bits per sample - %w", err)
	}

	return nil
}

func (e *headerEncoder) writeExtensible(h *Header) error {
	err := e.AddLE(h.ExtraParamSize)
	if err != nil {
		return fmt.Errorf("error encoding fmt extension length - %w", err)
	}

	err = e.AddLE(h.ValidBits)
	if err != nil {
		return fmt.Errorf("error encoding valid bits per sample - %w", err)
	}

	err = e.AddLE(h.ChannelMask)
	if err != nil {
		return fmt.Errorf("error encoding channel mask - %w", err)
	}

	err = e.AddLE(h.SubFormat)
	if err != nil {
		return fmt.Errorf("error encoding sub format - %w", err)
	}

	return nil
}

// NewExtensibleHeader builds a WAVEFORMATEXTENSIBLE header for dataSize
// bytes of interleaved samples.
func NewExtensibleHeader(numChannels uint16, sampleRate uint32, bitsPerSample uint16,
	channelMask uint32, subFormat GUID, dataSize uint32) *Header {
	h := newHeader(numChannels, sampleRate, bitsPerSample, dataSize)
	h.ChunkSize = ExtensibleHeaderSize - 8 + dataSize
	h.FmtSize = extensibleFmtSize
	h.AudioFormat = WaveFormatExtensible
	h.ExtraParamSize = extensibleExtraSize
	h.ValidBits = bitsPerSample
	h.ChannelMask = channelMask
	h.SubFormat = subFormat
	h.Extensible = true
	h.HeaderSize = ExtensibleHeaderSize

	return h
}

// NewPCMHeader builds a canonical PCM header for dataSize bytes of
// interleaved samples.
func NewPCMHeader(numChannels uint16, sampleRate uint32, bitsPerSample uint16, dataSize uint32) *Header {
	return newHeader(numChannels, sampleRate, bitsPerSample, dataSize)
}

func newHeader(numChannels uint16, sampleRate uint32, bitsPerSample uint16, dataSize uint32) *Header {
	blockAlign := numChannels * (bitsPerSample / 8)

	h := &Header{
		ChunkID:   riff.RiffID,
		ChunkSize: CanonicalHeaderSize - 8 + dataSize,
		WaveID:    riff.WavFormatID,

		FmtID:         riff.FmtID,
		FmtSize:       canonicalFmtSize,
		AudioFormat:   WaveFormatPCM,
		NumChannels:   numChannels,
		SampleRate:    sampleRate,
		ByteRate:      sampleRate * uint32(blockAlign),
		BlockAlign:    blockAlign,
		BitsPerSample: bitsPerSample,

		DataID:   riff.DataFormatID,
		DataSize: dataSize,

		HeaderSize: CanonicalHeaderSize,
	}

	h.TotalSamples = totalSampleFrames(dataSize, numChannels, bitsPerSample)
	h.Duration = durationFromFrames(h.TotalSamples, sampleRate)

	return h
}
