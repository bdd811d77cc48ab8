package wavsplit

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Batch splits a list of files one after the other.
type Batch struct {
	splitter *Splitter
	progress ProgressFunc
	logger   Logger
	logFunc  func(string)
}

// NewBatch returns a Batch configured by opts.
func NewBatch(opts ...Option) *Batch {
	c := newConfig(opts)

	s := c.splitter
	if s == nil {
		s = &Splitter{progress: c.progress, logger: c.logger}
	}

	return &Batch{
		splitter: s,
		progress: s.progress,
		logger:   c.logger,
		logFunc:  c.logFunc,
	}
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	// Files holds one entry per attempted file, including a failed or
	// canceled last one.
	Files []Result
	// Bytes is the sum of the header and data bytes of every completed or
	// canceled file.
	Bytes    int64
	Canceled bool
	Elapsed  time.Duration
	// Log is the text sent to the log function, one entry per line.
	Log []string
}

// Run splits paths in order, writing outputs to outputDir or next to each
// input when outputDir is empty. It stops at the first failing file and
// returns its error along with the bytes counted so far. A canceled ctx
// stops the batch with BatchResult.Canceled set and no error.
func (b *Batch) Run(ctx context.Context, paths []string, outputDir string) (BatchResult, error) {
	var res BatchResult

	start := time.Now()
	b.log(&res, fmt.Sprintf("Files to split: %d", len(paths)))

	var runErr error

	for _, path := range paths {
		name := filepath.Base(path)

		if ctx.Err() != nil {
			b.log(&res, "Canceled: "+name)
			res.Canceled = true

			break
		}

		b.log(&res, "Split file: "+name)

		fr, err := b.splitter.SplitFile(ctx, path, outputDir)
		res.Files = append(res.Files, fr)
		res.Bytes += fr.Bytes

		if err != nil {
			b.logger.Error("split %s: %v", path, err)
			b.log(&res, "Error: "+err.Error())
			runErr = err

			break
		}

		if fr.Canceled {
			b.log(&res, "Canceled: "+name)
			res.Canceled = true

			break
		}

		b.log(&res, fmt.Sprintf("Split done: %s (%d channels, %d bytes)", name, len(fr.Outputs), fr.Bytes))
	}

	res.Elapsed = time.Since(start)

	if !res.Canceled {
		b.log(&res, "Done.")
		b.log(&res, fmt.Sprintf("Data bytes processed: %d (%s MB)", res.Bytes, megabytes(res.Bytes)))
		b.log(&res, "Elapsed time: "+res.Elapsed.String())
	}

	return res, runErr
}

func (b *Batch) log(res *BatchResult, line string) {
	res.Log = append(res.Log, line)
	b.logFunc(line)
}

// megabytes formats n in MiB rounded to one decimal.
func megabytes(n int64) string {
	mb := math.Round(float64(n)/(1024*1024)*10) / 10

	return strconv.FormatFloat(mb, 'f', -1, 64)
}

// Job is a batch running on its own goroutine.
type Job struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	res BatchResult
	err error
}

// Start runs the batch in the background. Cancel the job through ctx or
// Job.Cancel. A canceled job reports progress 0 once it has stopped.
func (b *Batch) Start(ctx context.Context, paths []string, outputDir string) *Job {
	ctx, cancel := context.WithCancel(ctx)

	j := &Job{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(j.done)
		defer cancel()

		res, err := b.Run(ctx, paths, outputDir)
		if res.Canceled {
			b.progress(0)
		}

		j.mu.Lock()
		j.res, j.err = res, err
		j.mu.Unlock()
	}()

	return j
}

// Cancel asks the job to stop. The running split notices within one
// second of audio.
func (j *Job) Cancel() {
	j.cancel()
}

// Done is closed when the job has finished.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job has finished and returns its outcome.
func (j *Job) Wait() (BatchResult, error) {
	<-j.done

	j.mu.Lock()
	defer j.mu.Unlock()

	return j.res, j.err
}
