package wavsplit

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SpeakerMask is one bit of the WAVEFORMATEXTENSIBLE dwChannelMask.
type SpeakerMask uint32

const (
	SpeakerFrontLeft          SpeakerMask = 0x1
	SpeakerFrontRight         SpeakerMask = 0x2
	SpeakerFrontCenter        SpeakerMask = 0x4
	SpeakerLowFrequency       SpeakerMask = 0x8
	SpeakerBackLeft           SpeakerMask = 0x10
	SpeakerBackRight          SpeakerMask = 0x20
	SpeakerFrontLeftOfCenter  SpeakerMask = 0x40
	SpeakerFrontRightOfCenter SpeakerMask = 0x80
	SpeakerBackCenter         SpeakerMask = 0x100
	SpeakerSideLeft           SpeakerMask = 0x200
	SpeakerSideRight          SpeakerMask = 0x400
	SpeakerTopCenter          SpeakerMask = 0x800
	SpeakerTopFrontLeft       SpeakerMask = 0x1000
	SpeakerTopFrontCenter     SpeakerMask = 0x2000
	SpeakerTopFrontRight      SpeakerMask = 0x4000
	SpeakerTopBackLeft        SpeakerMask = 0x8000
	SpeakerTopBackCenter      SpeakerMask = 0x10000
	SpeakerTopBackRight       SpeakerMask = 0x20000

	speakerMaskAll = uint32(SpeakerTopBackRight<<1) - 1
)

// Channel names one output of a split. ShortName ends up in the output file
// name.
type Channel struct {
	LongName  string
	ShortName string
	Mask      SpeakerMask
}

func (c Channel) String() string {
	return c.LongName + " (" + c.ShortName + ")"
}

var basicChannels = [...]Channel{
	{LongName: "Mono", ShortName: "M"},
	{LongName: "Left", ShortName: "L"},
	{LongName: "Right", ShortName: "R"},
}

// speakerChannels is ordered like the mask bits, which is also the order
// the channels are interleaved in the data chunk.
var speakerChannels = [...]Channel{
	{"Front Left", "FL", SpeakerFrontLeft},
	{"Front Right", "FR", SpeakerFrontRight},
	{"Front Center", "FC", SpeakerFrontCenter},
	{"Low Frequency", "LF", SpeakerLowFrequency},
	{"Back Left", "BL", SpeakerBackLeft},
	{"Back Right", "BR", SpeakerBackRight},
	{"Front Left of Center", "FLC", SpeakerFrontLeftOfCenter},
	{"Front Right of Center", "FRC", SpeakerFrontRightOfCenter},
	{"Back Center", "BC", SpeakerBackCenter},
	{"Side Left", "SL", SpeakerSideLeft},
	{"Side Right", "SR", SpeakerSideRight},
	{"Top Center", "TC", SpeakerTopCenter},
	{"Top Front Left", "TFL", SpeakerTopFrontLeft},
	{"Top Front Center", "TFC", SpeakerTopFrontCenter},
	{"Top Front Right", "TFR", SpeakerTopFrontRight},
	{"Top Back Left", "TBL", SpeakerTopBackLeft},
	{"Top Back Center", "TBC", SpeakerTopBackCenter},
	{"Top Back Right", "TBR", SpeakerTopBackRight},
}

// BasicChannels returns the Mono/Left/Right catalog.
func BasicChannels() []Channel {
	return append([]Channel(nil), basicChannels[:]...)
}

// SpeakerChannels returns the 18 speaker positions in channel mask order.
func SpeakerChannels() []Channel {
	return append([]Channel(nil), speakerChannels[:]...)
}

// ResolveChannels lists the channels of h in interleave order.
//
// Extensible headers select the speakers named by the channel mask, so the
// result has popcount(ChannelMask) entries. Other headers get sequential
// names: Channel01/CH01, Channel02/CH02 and so on.
func ResolveChannels(h *Header) []Channel {
	if h.Extensible {
		var out []Channel

		for _, c := range speakerChannels {
			if h.ChannelMask&uint32(c.Mask) != 0 {
				out = append(out, c)
			}
		}

		return out
	}

	out := make([]Channel, 0, h.NumChannels)
	for i := 1; i <= int(h.NumChannels); i++ {
		out = append(out, Channel{
			LongName:  fmt.Sprintf("Channel%02d", i),
			ShortName: fmt.Sprintf("CH%02d", i),
		})
	}

	return out
}

// OutputPaths returns <outputDir>/<base>.<ShortName>.wav for every channel,
// where base is the input file name without its extension. An empty
// outputDir places the outputs next to the input.
func OutputPaths(inputPath, outputDir string, chans []Channel) []string {
	if outputDir == "" {
		outputDir = filepath.Dir(inputPath)
	}

	name := filepath.Base(inputPath)
	base := strings.TrimSuffix(name, filepath.Ext(name))

	paths := make([]string, len(chans))
	for i, c := range chans {
		paths[i] = filepath.Join(outputDir, base+"."+c.ShortName+".wav")
	}

	return paths
}
