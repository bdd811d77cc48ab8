package wavsplit

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestDecodeHeaderCanonical(t *testing.T) {
	data := patternData(44100 * 4 / 2)
	f := wavFixture{numChannels: 2, sampleRate: 44100, bitsPerSample: 16, data: data}

	r := bytes.NewReader(f.bytes())

	h, err := DecodeHeader(r)
	if err != nil {
		t.Fatal(err)
	}

	if h.Extensible {
		t.Fatalf("canonical header reported as extensible")
	}

	if tagString(h.ChunkID) != "RIFF" || tagString(h.WaveID) != "WAVE" || tagString(h.FmtID) != "fmt " || tagString(h.DataID) != "data" {
		t.Fatalf("unexpected tags %q %q %q %q", h.ChunkID, h.WaveID, h.FmtID, h.DataID)
	}

	if h.ChunkSize != 36+uint32(len(data)) {
		t.Fatalf("chunk size=%d, want %d", h.ChunkSize, 36+len(data))
	}

	if h.FmtSize != 16 || h.AudioFormat != WaveFormatPCM {
		t.Fatalf("fmt size=%d format=%d", h.FmtSize, h.AudioFormat)
	}

	if h.NumChannels != 2 || h.SampleRate != 44100 || h.BitsPerSample != 16 {
		t.Fatalf("unexpected format %d ch %d Hz %d bit", h.NumChannels, h.SampleRate, h.BitsPerSample)
	}

	if h.ByteRate != 176400 || h.BlockAlign != 4 {
		t.Fatalf("byte rate=%d block align=%d", h.ByteRate, h.BlockAlign)
	}

	if h.DataSize != uint32(len(data)) {
		t.Fatalf("data size=%d, want %d", h.DataSize, len(data))
	}

	if h.HeaderSize != CanonicalHeaderSize {
		t.Fatalf("header size=%d, want %d", h.HeaderSize, CanonicalHeaderSize)
	}

	if h.TotalSamples != 22050 {
		t.Fatalf("total samples=%d, want 22050", h.TotalSamples)
	}

	if h.Duration != 500*time.Millisecond {
		t.Fatalf("duration=%s, want 500ms", h.Duration)
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(rest, data) {
		t.Fatalf("reader not left on the sample payload")
	}
}

func TestDecodeHeaderSkipsChunks(t *testing.T) {
	f := wavFixture{
		numChannels:   1,
		sampleRate:    8000,
		bitsPerSample: 8,
		extra: []testChunk{
			{id: "LIST", data: []byte{1, 2, 3}},
			{id: "junk", data: make([]byte, 10)},
		},
		data: patternData(100),
	}

	r := bytes.NewReader(f.bytes())

	h, err := DecodeHeader(r)
	if err != nil {
		t.Fatal(err)
	}

	wantSize := int64(CanonicalHeaderSize + 8 + 3 + 8 + 10)
	if h.HeaderSize != wantSize {
		t.Fatalf("header size=%d, want %d", h.HeaderSize, wantSize)
	}

	if h.HeaderSize != f.headerLen() {
		t.Fatalf("header size=%d, fixture header is %d bytes", h.HeaderSize, f.headerLen())
	}

	want := []SkippedChunk{
		{ID: [4]byte{'L', 'I', 'S', 'T'}, Size: 3, Offset: 36},
		{ID: [4]byte{'j', 'u', 'n', 'k'}, Size: 10, Offset: 47},
	}

	if len(h.Skipped) != len(want) {
		t.Fatalf("skipped %d chunks, want %d", len(h.Skipped), len(want))
	}

	for i := range want {
		if h.Skipped[i] != want[i] {
			t.Fatalf("skipped[%d]=%+v, want %+v", i, h.Skipped[i], want[i])
		}
	}

	rest, _ := io.ReadAll(r)
	if !bytes.Equal(rest, f.data) {
		t.Fatalf("reader not left on the sample payload")
	}

	chunks, err := parseWavChunks(f.bytes())
	if err != nil {
		t.Fatal(err)
	}

	data, idx := findChunk(chunks, "data")
	if data == nil || idx != len(h.Skipped)+1 {
		t.Fatalf("data chunk at index %d, want %d", idx, len(h.Skipped)+1)
	}

	if data.size != h.DataSize {
		t.Fatalf("data chunk size=%d, header says %d", data.size, h.DataSize)
	}
}

func TestDecodeHeaderTooSmall(t *testing.T) {
	in := []byte("RIFF\x04\x00\x00\x00")

	if _, err := parseWavChunks(in); !errors.Is(err, errFileTooSmall) {
		t.Fatalf("chunk walk error=%v, want errFileTooSmall", err)
	}

	if _, err := DecodeHeader(bytes.NewReader(in)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("decode error=%v, want unexpected EOF", err)
	}
}

func TestDecodeHeaderExtensible(t *testing.T) {
	tests := []struct {
		name      string
		subFormat GUID
		fmtTail   []byte
		wantSize  int64
	}{
		{"pcm", SubTypePCM, nil, ExtensibleHeaderSize},
		{"ieee float", SubTypeIEEEFloat, nil, ExtensibleHeaderSize},
		{"fmt tail", SubTypePCM, []byte{9, 9}, ExtensibleHeaderSize + 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := wavFixture{
				numChannels:   6,
				sampleRate:    48000,
				bitsPerSample: 24,
				extensible:    true,
				channelMask:   0x3F,
				subFormat:     tt.subFormat,
				fmtTail:       tt.fmtTail,
				data:          patternData(18 * 10),
			}

			r := bytes.NewReader(f.bytes())

			h, err := DecodeHeader(r)
			if err != nil {
				t.Fatal(err)
			}

			if !h.Extensible {
				t.Fatalf("extensible header not detected")
			}

			if h.AudioFormat != WaveFormatExtensible || h.ExtraParamSize != 22 {
				t.Fatalf("format=0x%X extra=%d", h.AudioFormat, h.ExtraParamSize)
			}

			if h.ChannelMask != 0x3F || h.ValidBits != 24 {
				t.Fatalf("mask=0x%X valid bits=%d", h.ChannelMask, h.ValidBits)
			}

			if h.SubFormat != tt.subFormat {
				t.Fatalf("sub format=%s, want %s", h.SubFormat, tt.subFormat)
			}

			if h.HeaderSize != tt.wantSize {
				t.Fatalf("header size=%d, want %d", h.HeaderSize, tt.wantSize)
			}

			if h.TotalSamples != 10 {
				t.Fatalf("total samples=%d, want 10", h.TotalSamples)
			}

			rest, _ := io.ReadAll(r)
			if !bytes.Equal(rest, f.data) {
				t.Fatalf("reader not left on the sample payload")
			}
		})
	}
}

func TestDecodeHeaderErrors(t *testing.T) {
	canonical := wavFixture{numChannels: 2, sampleRate: 44100, bitsPerSample: 16, data: patternData(16)}
	extensible := wavFixture{
		numChannels: 2, sampleRate: 44100, bitsPerSample: 16,
		extensible: true, channelMask: 0x3, data: patternData(16),
	}

	patch := func(b []byte, off int, v byte) []byte {
		b[off] = v

		return b
	}

	unknownGUID := extensible
	unknownGUID.subFormat = SubFormatGUID(0x55)

	pcm18 := canonical
	pcm18.fmtTail = []byte{0, 0}

	float16 := canonical
	float16.formatTag = WaveFormatIEEEFloat

	noData := canonical.bytes()[:CanonicalHeaderSize-8]

	tests := []struct {
		name        string
		in          []byte
		wantErr     error
		wantMsg     string
		unsupported bool
	}{
		{"not riff", append([]byte("FORM"), canonical.bytes()[4:]...), ErrUnsupportedFormat, "RIFF", true},
		{"not wave", patch(canonical.bytes(), 8, 'X'), ErrUnsupportedFormat, "WAVE", true},
		{"pcm with fmt extension", pcm18.bytes(), ErrUnsupportedFormat, "unsupported header", true},
		{"float tag in canonical fmt", float16.bytes(), ErrUnsupportedFormat, "unsupported header", true},
		{"extra size 24", patch(extensible.bytes(), 36, 24), ErrUnsupportedFormat, "unsupported header", true},
		{"unknown sub format", unknownGUID.bytes(), ErrUnsupportedFormat, "unsupported WAV type", true},
		{"no data chunk", noData, ErrDataChunkNotFound, "data chunk not found", true},
		{"empty", nil, io.ErrUnexpectedEOF, "", false},
		{"truncated fmt", canonical.bytes()[:26], io.ErrUnexpectedEOF, "", false},
		{"truncated chunk size", canonical.bytes()[:CanonicalHeaderSize-2], io.ErrUnexpectedEOF, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := DecodeHeader(bytes.NewReader(tt.in))
			if err == nil {
				t.Fatalf("expected an error, got header %+v", h)
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error %v doesn't match %v", err, tt.wantErr)
			}

			if errors.Is(err, ErrUnsupportedFormat) != tt.unsupported {
				t.Fatalf("error %v: unsupported=%t, want %t", err, !tt.unsupported, tt.unsupported)
			}

			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("error %q doesn't mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestDecodeHeaderSkippedChunkTruncated(t *testing.T) {
	f := wavFixture{
		numChannels: 1, sampleRate: 8000, bitsPerSample: 8,
		extra: []testChunk{{id: "LIST", data: make([]byte, 32)}},
		data:  patternData(8),
	}

	in := f.bytes()[:CanonicalHeaderSize-8+8+10]

	_, err := DecodeHeader(bytes.NewReader(in))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("error=%v, want unexpected EOF", err)
	}
}

func TestDecodeHeaderDoesNotValidate(t *testing.T) {
	f := wavFixture{
		numChannels: 2, sampleRate: 44100, bitsPerSample: 16,
		extensible: true, channelMask: 0x3F, data: patternData(16),
	}

	h, err := DecodeHeader(bytes.NewReader(f.bytes()))
	if err != nil {
		t.Fatalf("mask mismatch must decode: %v", err)
	}

	if !errors.Is(h.Validate(), ErrMalformedHeader) {
		t.Fatalf("validate=%v, want ErrMalformedHeader", h.Validate())
	}
}

func TestDecodeHeaderFileMissing(t *testing.T) {
	_, err := DecodeHeaderFile("/nonexistent/path.wav")
	if !errors.Is(err, ErrIO) {
		t.Fatalf("error=%v, want ErrIO", err)
	}
}

func TestDecodeHeaderListType(t *testing.T) {
	f := wavFixture{
		numChannels: 1, sampleRate: 8000, bitsPerSample: 8,
		extra: []testChunk{
			{id: "LIST", data: []byte("INFOINAM\x04\x00\x00\x00take")},
			{id: "bext", data: make([]byte, 8)},
			{id: "abcd", data: nil},
		},
		data: patternData(8),
	}

	h, err := DecodeHeader(bytes.NewReader(f.bytes()))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"list INFO", "broadcast extension", ""}
	for i, c := range h.Skipped {
		if c.Description() != want[i] {
			t.Fatalf("skipped[%d] description=%q, want %q", i, c.Description(), want[i])
		}
	}

	if h.HeaderSize != f.headerLen() {
		t.Fatalf("header size=%d, want %d", h.HeaderSize, f.headerLen())
	}
}
