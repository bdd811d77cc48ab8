package wavsplit

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ProgressFunc receives the share of the current input file processed so
// far, in percent. It is called from the goroutine running the split.
type ProgressFunc func(percent float64)

// Option configures a Splitter or a Batch.
type Option func(*config)

type config struct {
	progress ProgressFunc
	logger   Logger
	logFunc  func(string)
	splitter *Splitter
}

// WithProgress sets the progress sink.
func WithProgress(fn ProgressFunc) Option {
	return func(c *config) {
		c.progress = fn
	}
}

// WithLogger sets the diagnostic logger. Nothing is logged by default.
func WithLogger(l Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithLogFunc sets the receiver of the batch log lines.
func WithLogFunc(fn func(string)) Option {
	return func(c *config) {
		c.logFunc = fn
	}
}

// WithSplitter makes a Batch use s instead of a splitter built from the
// batch options.
func WithSplitter(s *Splitter) Option {
	return func(c *config) {
		c.splitter = s
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}

	if c.progress == nil {
		c.progress = func(float64) {}
	}

	if c.logger == nil {
		c.logger = nopLogger{}
	}

	if c.logFunc == nil {
		c.logFunc = func(string) {}
	}

	return c
}

// Splitter writes every channel of a multichannel WAV file to its own mono
// WAV file.
type Splitter struct {
	progress ProgressFunc
	logger   Logger
}

// NewSplitter returns a Splitter configured by opts. Only WithProgress and
// WithLogger apply.
func NewSplitter(opts ...Option) *Splitter {
	c := newConfig(opts)

	return &Splitter{
		progress: c.progress,
		logger:   c.logger,
	}
}

// Result describes one split file.
type Result struct {
	Input   string
	Header  *Header
	Outputs []string
	// Channels is parallel to Outputs.
	Channels []Channel
	// Bytes counts the header and the data bytes read from the input.
	Bytes int64
	// Canceled is set when the context was done before the data ran out.
	// The outputs then hold whatever was written up to that point.
	Canceled bool
}

type channelOutput struct {
	path string
	f    *os.File
	w    *bufio.Writer
}

// SplitFile splits inputPath into one mono file per channel in outputDir,
// or next to the input when outputDir is empty.
//
// The data chunk is streamed one second of audio at a time. ctx is checked
// once per second of audio, after the channel buffers were written; a done
// context ends the split with Result.Canceled set and a nil error.
//
// Header problems are reported before any output file is created and match
// ErrUnsupportedFormat; open, read, write and close failures match ErrIO.
func (s *Splitter) SplitFile(ctx context.Context, inputPath, outputDir string) (Result, error) {
	res := Result{Input: inputPath}

	src, err := os.Open(inputPath)
	if err != nil {
		return res, ioError("open", inputPath, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return res, ioError("stat", inputPath, err)
	}

	r := bufio.NewReader(src)

	h, err := DecodeHeader(r)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			return res, fmt.Errorf("%s: %w", inputPath, err)
		}

		return res, ioError("read header of", inputPath, err)
	}

	res.Header = h

	err = h.Validate()
	if err != nil {
		return res, fmt.Errorf("%s: %w", inputPath, err)
	}

	res.Channels = ResolveChannels(h)
	res.Outputs = OutputPaths(inputPath, outputDir, res.Channels)

	s.logger.Debug("splitting %s: %d channels, %d data bytes", inputPath, h.NumChannels, h.DataSize)

	outs, err := createOutputs(res.Outputs, h.Mono())
	if err != nil {
		return res, err
	}

	canceled, n, err := s.stream(ctx, r, inputPath, h, info.Size(), outs)
	res.Bytes = n
	res.Canceled = canceled

	closeErr := closeOutputs(outs)
	if err != nil {
		return res, err
	}

	if closeErr != nil {
		return res, closeErr
	}

	if canceled {
		s.logger.Info("split of %s canceled after %d bytes", inputPath, n)
	}

	return res, nil
}

// stream demultiplexes the data chunk into outs. It returns the number of
// header and data bytes accounted for.
func (s *Splitter) stream(ctx context.Context, r io.Reader, inputPath string, h *Header,
	fileLen int64, outs []*channelOutput,
) (bool, int64, error) {
	numCh := int(h.NumChannels)
	blockAlign := int(h.BlockAlign)
	copySize := blockAlign / numCh

	buf := make([]byte, h.ByteRate)
	chanBufs := make([][]byte, numCh)
	for c := range chanBufs {
		chanBufs[c] = make([]byte, h.ByteRate/uint32(numCh))
	}

	total := h.HeaderSize
	remaining := int64(h.DataSize)

	s.progress(0)

	for remaining > 0 {
		want := len(buf)
		if remaining < int64(want) {
			want = int(remaining)
		}

		n, err := io.ReadFull(r, buf[:want])
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return false, total, ioError("read", inputPath, err)
		}

		count := 0
		for j := 0; j+blockAlign <= n; j += blockAlign {
			for c := 0; c < numCh; c++ {
				copy(chanBufs[c][count:count+copySize], buf[j+c*copySize:])
			}

			count += copySize
		}

		for c, out := range outs {
			_, werr := out.w.Write(chanBufs[c][:count])
			if werr == nil {
				werr = out.w.Flush()
			}

			if werr != nil {
				return false, total, ioError("write", out.path, werr)
			}
		}

		if ctx.Err() != nil {
			return true, total, nil
		}

		total += int64(n)
		remaining -= int64(n)

		s.progress(float64(total) / float64(fileLen) * 100)

		if n < want {
			s.logger.Warn("%s: data chunk ends %d bytes short of its declared size %d", inputPath, remaining, h.DataSize)

			break
		}
	}

	return false, total, nil
}

func createOutputs(paths []string, mono *Header) ([]*channelOutput, error) {
	outs := make([]*channelOutput, 0, len(paths))

	for _, path := range paths {
		f, err := os.Create(path)
		if err != nil {
			closeOutputs(outs)

			return nil, ioError("create", path, err)
		}

		out := &channelOutput{path: path, f: f, w: bufio.NewWriter(f)}
		outs = append(outs, out)

		err = EncodeHeader(out.w, mono)
		if err == nil {
			err = out.w.Flush()
		}

		if err != nil {
			closeOutputs(outs)

			return nil, ioError("write header to", path, err)
		}
	}

	return outs, nil
}

func closeOutputs(outs []*channelOutput) error {
	var errs []error

	for _, out := range outs {
		err := out.f.Close()
		if err != nil {
			errs = append(errs, ioError("close", out.path, err))
		}
	}

	return errors.Join(errs...)
}
