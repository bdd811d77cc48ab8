// Package wavsplit splits multichannel WAV files into one mono WAV file
// per channel.
//
// The header codec reads canonical PCM and WAVEFORMATEXTENSIBLE headers
// (PCM or IEEE float sub-format), skipping any chunk between fmt and data,
// and writes the canonical 44-byte or extensible 68-byte layouts:
//
//   - DecodeHeader(io.Reader) (*Header, error)
//   - (*Header).Mono() *Header
//   - EncodeHeader(io.Writer, *Header) error
//
// Output files are named after the input and the channel short name, for
// example take1.FL.wav or take1.CH02.wav. Extensible inputs use the speaker
// positions of the channel mask, other inputs are numbered.
//
// Splitter streams one file; Batch runs a Splitter over several files and
// keeps a text log. Both report progress in percent through a ProgressFunc
// and stop cooperatively when their context is canceled.
package wavsplit
