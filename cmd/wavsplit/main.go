// This tool splits multichannel wav files into one mono wav file per
// channel.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/cwbudde/wavsplit"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"
)

var (
	errMissingPath = errors.New("missing path argument")
	errCanceled    = errors.New("canceled")
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if err == nil {
		return
	}

	if errors.Is(err, errCanceled) {
		fmt.Fprintln(os.Stderr, "canceled")
		os.Exit(130)
	}

	log.Fatal(err)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fset := pflag.NewFlagSet("wavsplit", pflag.ContinueOnError)
	fset.SetOutput(stderr)

	output := fset.StringP("output", "o", "", "output directory (default: next to each input)")
	verbose := fset.BoolP("verbose", "v", false, "enable diagnostic logs")
	noProgress := fset.Bool("no-progress", false, "don't report progress")

	fset.SortFlags = false

	err := fset.Parse(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}

		return err
	}

	paths := fset.Args()
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "usage: wavsplit [--output DIR] FILE...")

		return errMissingPath
	}

	opts := []wavsplit.Option{
		wavsplit.WithLogFunc(func(line string) {
			fmt.Fprintln(stdout, line)
		}),
	}

	if *verbose {
		opts = append(opts, wavsplit.WithLogger(&wavsplit.StandardLogger{}))
	}

	var pr *progressPrinter
	if !*noProgress {
		pr = newProgressPrinter(stderr)
		opts = append(opts, wavsplit.WithProgress(pr.report))
	}

	job := wavsplit.NewBatch(opts...).Start(ctx, paths, *output)

	res, err := job.Wait()

	if pr != nil {
		pr.finish()
	}

	if err != nil {
		return err
	}

	if res.Canceled {
		return errCanceled
	}

	return nil
}

// progressPrinter rewrites a single line on terminals and prints at most
// one line per second elsewhere.
type progressPrinter struct {
	w       io.Writer
	tty     bool
	limiter *rate.Limiter
	last    float64
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	tty := isTerminal(w)

	limit := rate.Limit(1)
	if tty {
		limit = rate.Limit(10)
	}

	return &progressPrinter{
		w:       w,
		tty:     tty,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (p *progressPrinter) report(percent float64) {
	p.last = percent

	if !p.limiter.Allow() {
		return
	}

	p.print(percent)
}

func (p *progressPrinter) print(percent float64) {
	if p.tty {
		fmt.Fprintf(p.w, "\r%5.1f%%", percent)

		return
	}

	fmt.Fprintf(p.w, "progress: %.1f%%\n", percent)
}

func (p *progressPrinter) finish() {
	p.print(p.last)

	if p.tty {
		fmt.Fprintln(p.w)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
