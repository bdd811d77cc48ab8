package wavsplit

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// WaveFormatPCM is the fmt audio format tag of linear PCM.
	WaveFormatPCM uint16 = 1
	// WaveFormatIEEEFloat is the fmt audio format tag of IEEE float samples.
	WaveFormatIEEEFloat uint16 = 3
	// WaveFormatExtensible is the fmt audio format tag of WAVEFORMATEXTENSIBLE.
	WaveFormatExtensible uint16 = 0xFFFE

	canonicalFmtSize    = 16
	extensibleExtraSize = 22
	// extensibleFmtSize is the fmt body size of a WAVEFORMATEXTENSIBLE header:
	// 16 bytes of PCM fields, the 2-byte extra size and 22 extensible bytes.
	extensibleFmtSize = canonicalFmtSize + 2 + extensibleExtraSize

	// CanonicalHeaderSize is the size of a 44-byte RIFF/WAVE/fmt/data header.
	CanonicalHeaderSize = 44
	// ExtensibleHeaderSize is the size of a 68-byte extensible header without
	// extra chunks.
	ExtensibleHeaderSize = CanonicalHeaderSize + 2 + extensibleExtraSize
)

var (
	// ErrUnsupportedFormat is returned for WAV layouts the splitter can't
	// handle: foreign containers, non-PCM fmt shapes, an unexpected extensible
	// extra size or an unknown sub-format GUID.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrMalformedHeader is returned by Header.Validate when the fmt fields
	// contradict each other. It wraps ErrUnsupportedFormat.
	ErrMalformedHeader = fmt.Errorf("%w: malformed header", ErrUnsupportedFormat)
	// ErrDataChunkNotFound indicates a stream that ended before any data
	// chunk. It wraps ErrUnsupportedFormat.
	ErrDataChunkNotFound = fmt.Errorf("%w: data chunk not found", ErrUnsupportedFormat)
	// ErrIO marks open, read, write and close failures.
	ErrIO = errors.New("i/o failure")

	errUnsupportedHeader = fmt.Errorf("%w: unsupported header", ErrUnsupportedFormat)
	errUnsupportedType   = fmt.Errorf("%w: unsupported WAV type", ErrUnsupportedFormat)
)

func ioError(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, err)
}

func tagString(tag [4]byte) string {
	return nullTermStr(tag[:])
}

func nullTermStr(b []byte) string {
	return string(b[:clen(b)])
}

func clen(num []byte) int {
	for i := range num {
		if num[i] == 0 {
			return i
		}
	}

	return len(num)
}

// totalSampleFrames divides the data size by the frame size in floating point
// so that odd bit depths still give a frame count.
func totalSampleFrames(dataSize uint32, numChannels, bitsPerSample uint16) int64 {
	frameBytes := float64(numChannels) * float64(bitsPerSample) / 8
	if frameBytes <= 0 {
		return 0
	}

	return int64(math.Floor(float64(dataSize) / frameBytes))
}

func durationFromFrames(frames int64, sampleRate uint32) time.Duration {
	if sampleRate == 0 {
		return 0
	}

	return time.Duration(float64(frames) / float64(sampleRate) * float64(time.Second))
}
