// This tool prints the header of the passed wav files.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cwbudde/wavsplit"
	"github.com/spf13/pflag"
)

const missingPathMessage = "You must pass the path of at least one file to inspect"

var errMissingPath = errors.New("missing path argument")

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingPath) {
		fmt.Println(missingPathMessage)
		os.Exit(1)
	}

	log.Fatal(err)
}

func run(args []string, out io.Writer) error {
	fset := pflag.NewFlagSet("wavinfo", pflag.ContinueOnError)
	channels := fset.BoolP("channels", "c", false, "also list the output channel of each file")

	err := fset.Parse(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}

		return err
	}

	paths := fset.Args()
	if len(paths) < 1 {
		return errMissingPath
	}

	fmt.Fprintln(out, wavsplit.ReadHeaderSummary(paths))

	if !*channels {
		return nil
	}

	for _, path := range paths {
		h, err := wavsplit.DecodeHeaderFile(path)
		if err != nil {
			continue
		}

		f := h.PCMFormat()
		fmt.Fprintf(out, "\n%s channels (%d at %d Hz):\n", path, f.NumChannels, f.SampleRate)

		chans := wavsplit.ResolveChannels(h)
		for i, p := range wavsplit.OutputPaths(path, "", chans) {
			fmt.Fprintf(out, "\t%s\t%s\n", chans[i], p)
		}
	}

	return nil
}
