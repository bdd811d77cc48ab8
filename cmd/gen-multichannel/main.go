// This tool writes a multichannel wav file with a different sine tone on
// every channel, which is handy to check a split.
package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"github.com/cwbudde/wavsplit"
	"github.com/go-audio/audio"
	"github.com/spf13/pflag"
)

const maxSpeakers = 18

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	fset := pflag.NewFlagSet("gen-multichannel", pflag.ContinueOnError)

	output := fset.StringP("output", "o", "output.wav", "filename to write to")
	channels := fset.Uint16P("channels", "c", 6, "number of channels")
	sampleRate := fset.Uint32("rate", 48000, "sample rate in hertz")
	bitDepth := fset.Uint16("bits", 16, "bits per sample: 8, 16, 24 or 32")
	frequency := fset.Float64("frequency", 220, "frequency of the first channel, channel n plays n times it")
	length := fset.Float64("length", 1, "length in seconds of output file")
	extensible := fset.Bool("extensible", false, "write a WAVEFORMATEXTENSIBLE header")
	mask := fset.Uint32("mask", 0, "speaker mask of an extensible header (default: the first N speakers)")

	err := fset.Parse(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}

		return err
	}

	switch *bitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("unsupported bit depth %d", *bitDepth)
	}

	if *channels == 0 {
		return errors.New("need at least one channel")
	}

	numFrames := int(float64(*sampleRate) * *length)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: int(*channels),
			SampleRate:  int(*sampleRate),
		},
		Data:           make([]int, numFrames*int(*channels)),
		SourceBitDepth: int(*bitDepth),
	}

	fillTones(buf, *frequency)

	dataSize := uint32(len(buf.Data) * int(*bitDepth) / 8)

	var h *wavsplit.Header
	if *extensible {
		if *channels > maxSpeakers {
			return fmt.Errorf("an extensible header names at most %d speakers", maxSpeakers)
		}

		m := *mask
		if m == 0 {
			m = 1<<*channels - 1
		}

		h = wavsplit.NewExtensibleHeader(*channels, *sampleRate, *bitDepth, m, wavsplit.SubTypePCM, dataSize)
	} else {
		h = wavsplit.NewPCMHeader(*channels, *sampleRate, *bitDepth, dataSize)
	}

	err = h.Validate()
	if err != nil {
		return err
	}

	log.Printf("generating %s: %d channels, %d Hz, %d bit, %.2f sec", *output, *channels, *sampleRate, *bitDepth, *length)

	file, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", *output, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)

	err = wavsplit.EncodeHeader(w, h)
	if err != nil {
		return err
	}

	err = writeSamples(w, buf)
	if err != nil {
		return err
	}

	err = w.Flush()
	if err != nil {
		return err
	}

	return file.Close()
}

// fillTones writes an interleaved sine per channel at 80% of full scale.
func fillTones(buf *audio.IntBuffer, frequency float64) {
	numCh := buf.Format.NumChannels
	sampleRate := float64(buf.Format.SampleRate)
	peak := 0.8 * float64(int64(1)<<(buf.SourceBitDepth-1)-1)

	for i, n := 0, buf.NumFrames(); i < n; i++ {
		for c := 0; c < numCh; c++ {
			f := frequency * float64(c+1)
			v := math.Sin(float64(i) / sampleRate * f * 2 * math.Pi)
			buf.Data[i*numCh+c] = int(v * peak)
		}
	}
}

func writeSamples(w io.Writer, buf *audio.IntBuffer) error {
	var err error

	for _, v := range buf.Data {
		switch buf.SourceBitDepth {
		case 8:
			_, err = w.Write([]byte{uint8(v + 128)})
		case 16:
			err = binary.Write(w, binary.LittleEndian, int16(v))
		case 24:
			_, err = w.Write(audio.Int32toInt24LEBytes(int32(v)))
		case 32:
			err = binary.Write(w, binary.LittleEndian, int32(v))
		}

		if err != nil {
			return err
		}
	}

	return nil
}
