package wavsplit

import (
	"fmt"
	"math/bits"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

// Header is a decoded RIFF/WAVE header, canonical or extensible.
// The fields mirror the on-disk layout; HeaderSize, TotalSamples and
// Duration are computed while decoding.
type Header struct {
	ChunkID   [4]byte
	ChunkSize uint32
	WaveID    [4]byte

	FmtID         [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16

	// Extensible only.
	ExtraParamSize uint16
	// ValidBits holds the wValidBitsPerSample/wSamplesPerBlock union.
	ValidBits   uint16
	ChannelMask uint32
	SubFormat   GUID

	DataID   [4]byte
	DataSize uint32

	Extensible bool
	// HeaderSize counts every byte consumed before the sample payload,
	// including skipped chunks.
	HeaderSize int64
	// TotalSamples is the number of sample frames in the data chunk.
	TotalSamples int64
	Duration     time.Duration

	// Skipped lists the chunks passed over before the data chunk.
	Skipped []SkippedChunk
}

// Mono derives the canonical single channel header shared by every file
// split out of h. Data bytes that don't divide evenly between the channels
// are dropped.
func (h *Header) Mono() *Header {
	var dataSize uint32
	if h.NumChannels > 0 {
		dataSize = h.DataSize / uint32(h.NumChannels)
	}

	mh := &Header{
		ChunkID:   riff.RiffID,
		ChunkSize: 36 + dataSize,
		WaveID:    riff.WavFormatID,

		FmtID:         riff.FmtID,
		FmtSize:       canonicalFmtSize,
		AudioFormat:   WaveFormatPCM,
		NumChannels:   1,
		SampleRate:    h.SampleRate,
		ByteRate:      h.SampleRate * uint32(h.BitsPerSample/8),
		BlockAlign:    h.BitsPerSample / 8,
		BitsPerSample: h.BitsPerSample,

		DataID:   riff.DataFormatID,
		DataSize: dataSize,

		HeaderSize: CanonicalHeaderSize,
	}

	mh.TotalSamples = totalSampleFrames(mh.DataSize, mh.NumChannels, mh.BitsPerSample)
	mh.Duration = durationFromFrames(mh.TotalSamples, mh.SampleRate)

	return mh
}

// Validate checks the fmt fields the demultiplexer relies on.
func (h *Header) Validate() error {
	if h.NumChannels < 1 {
		return fmt.Errorf("%w: no channels", ErrMalformedHeader)
	}

	if h.BitsPerSample == 0 || h.BitsPerSample%8 != 0 {
		return fmt.Errorf("%w: %d bits per sample is not byte aligned", ErrMalformedHeader, h.BitsPerSample)
	}

	frameBytes := uint32(h.NumChannels) * uint32(h.BitsPerSample/8)
	if uint32(h.BlockAlign) != frameBytes {
		return fmt.Errorf("%w: block align %d, want %d", ErrMalformedHeader, h.BlockAlign, frameBytes)
	}

	if h.SampleRate == 0 {
		return fmt.Errorf("%w: zero sample rate", ErrMalformedHeader)
	}

	if uint64(h.ByteRate) != uint64(h.SampleRate)*uint64(h.BlockAlign) {
		return fmt.Errorf("%w: byte rate %d, want %d", ErrMalformedHeader, h.ByteRate,
			uint64(h.SampleRate)*uint64(h.BlockAlign))
	}

	if h.Extensible {
		if extra := h.ChannelMask &^ speakerMaskAll; extra != 0 {
			return fmt.Errorf("%w: channel mask 0x%X sets bits 0x%X outside the speaker layout",
				ErrMalformedHeader, h.ChannelMask, extra)
		}

		if n := bits.OnesCount32(h.ChannelMask); n != int(h.NumChannels) {
			return fmt.Errorf("%w: channel mask 0x%X names %d speakers for %d channels",
				ErrMalformedHeader, h.ChannelMask, n, h.NumChannels)
		}
	}

	return nil
}

// PCMFormat returns the channel count and sample rate as an audio.Format.
func (h *Header) PCMFormat() *audio.Format {
	if h == nil {
		return nil
	}

	return &audio.Format{
		NumChannels: int(h.NumChannels),
		SampleRate:  int(h.SampleRate),
	}
}

// DurationSeconds returns Duration in seconds.
func (h *Header) DurationSeconds() float64 {
	return h.Duration.Seconds()
}

// Clone returns a deep copy of h.
func (h *Header) Clone() *Header {
	if h == nil {
		return nil
	}

	out := *h
	out.Skipped = cloneSkippedChunks(h.Skipped)

	return &out
}

func (h *Header) audioFormatLabel() string {
	switch h.AudioFormat {
	case WaveFormatPCM:
		return "1 : PCM"
	case WaveFormatExtensible:
		return "0xFFFE : WAVEFORMATEXTENSIBLE"
	default:
		return fmt.Sprint(h.AudioFormat)
	}
}

// String implements the Stringer interface with one field per line, grouped
// by header section.
func (h *Header) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[WAVE]\n")
	fmt.Fprintf(&sb, "ChunkID:\t\t%s\n", tagString(h.ChunkID))
	fmt.Fprintf(&sb, "ChunkSize:\t\t%d\n", h.ChunkSize)
	fmt.Fprintf(&sb, "Format:\t\t%s\n", tagString(h.WaveID))
	fmt.Fprintf(&sb, "[fmt]\n")
	fmt.Fprintf(&sb, "Subchunk1ID:\t\t%s\n", tagString(h.FmtID))
	fmt.Fprintf(&sb, "Subchunk1Size:\t%d\n", h.FmtSize)
	fmt.Fprintf(&sb, "AudioFormat:\t\t%s\n", h.audioFormatLabel())
	fmt.Fprintf(&sb, "NumChannels:\t\t%d\n", h.NumChannels)
	fmt.Fprintf(&sb, "SampleRate:\t\t%d\n", h.SampleRate)
	fmt.Fprintf(&sb, "ByteRate:\t\t%d\n", h.ByteRate)
	fmt.Fprintf(&sb, "BlockAlign:\t\t%d\n", h.BlockAlign)
	fmt.Fprintf(&sb, "BitsPerSample:\t%d\n", h.BitsPerSample)
	fmt.Fprintf(&sb, "[extra]\n")
	fmt.Fprintf(&sb, "ExtraParamSize:\t%d\n", h.ExtraParamSize)
	fmt.Fprintf(&sb, "[extensible]\n")
	fmt.Fprintf(&sb, "Samples:\t\t%d\n", h.ValidBits)
	fmt.Fprintf(&sb, "ChannelMask:\t\t%d\n", h.ChannelMask)
	fmt.Fprintf(&sb, "GuidSubFormat:\t%s : %s\n", h.SubFormat, h.SubFormat.Name())
	fmt.Fprintf(&sb, "[data]\n")
	fmt.Fprintf(&sb, "Subchunk2ID:\t\t%s\n", tagString(h.DataID))
	fmt.Fprintf(&sb, "Subchunk2Size:\t%d\n", h.DataSize)

	if len(h.Skipped) > 0 {
		fmt.Fprintf(&sb, "[skipped]\n")

		for _, c := range h.Skipped {
			fmt.Fprintf(&sb, "%s:\t\t%d bytes @ %d", tagString(c.ID), c.Size, c.Offset)

			if desc := c.Description(); desc != "" {
				fmt.Fprintf(&sb, " (%s)", desc)
			}

			sb.WriteByte('\n')
		}
	}

	fmt.Fprintf(&sb, "[info]\n")
	fmt.Fprintf(&sb, "IsExtensible:\t\t%t\n", h.Extensible)
	fmt.Fprintf(&sb, "HeaderSize:\t\t%d\n", h.HeaderSize)
	fmt.Fprintf(&sb, "Duration:\t\t%s\n", h.Duration)
	fmt.Fprintf(&sb, "TotalSamples:\t\t%d", h.TotalSamples)

	return sb.String()
}
