package wavsplit

import (
	"encoding/binary"

	"github.com/google/uuid"
)

const (
	ksSubFormatGUIDTail0  = 0x00
	ksSubFormatGUIDTail1  = 0x00
	ksSubFormatGUIDTail2  = 0x10
	ksSubFormatGUIDTail3  = 0x00
	ksSubFormatGUIDTail4  = 0x80
	ksSubFormatGUIDTail5  = 0x00
	ksSubFormatGUIDTail6  = 0x00
	ksSubFormatGUIDTail7  = 0xAA
	ksSubFormatGUIDTail8  = 0x00
	ksSubFormatGUIDTail9  = 0x38
	ksSubFormatGUIDTail10 = 0x9B
	ksSubFormatGUIDTail11 = 0x71
)

// GUID is a sub-format identifier in its on-disk layout: the first three
// fields are little endian, the last eight bytes are stored as-is.
type GUID [16]byte

var (
	// SubTypePCM is KSDATAFORMAT_SUBTYPE_PCM.
	SubTypePCM = GUIDFromUUID(uuid.MustParse("00000001-0000-0010-8000-00aa00389b71"))
	// SubTypeIEEEFloat is KSDATAFORMAT_SUBTYPE_IEEE_FLOAT.
	SubTypeIEEEFloat = GUIDFromUUID(uuid.MustParse("00000003-0000-0010-8000-00aa00389b71"))
)

// GUIDFromUUID converts an RFC 4122 ordered UUID to the WAV wire layout.
func GUIDFromUUID(u uuid.UUID) GUID {
	var g GUID

	binary.LittleEndian.PutUint32(g[0:4], binary.BigEndian.Uint32(u[0:4]))
	binary.LittleEndian.PutUint16(g[4:6], binary.BigEndian.Uint16(u[4:6]))
	binary.LittleEndian.PutUint16(g[6:8], binary.BigEndian.Uint16(u[6:8]))
	copy(g[8:], u[8:])

	return g
}

// UUID returns the GUID in RFC 4122 byte order.
func (g GUID) UUID() uuid.UUID {
	var u uuid.UUID

	binary.BigEndian.PutUint32(u[0:4], binary.LittleEndian.Uint32(g[0:4]))
	binary.BigEndian.PutUint16(u[4:6], binary.LittleEndian.Uint16(g[4:6]))
	binary.BigEndian.PutUint16(u[6:8], binary.LittleEndian.Uint16(g[6:8]))
	copy(u[8:], g[8:])

	return u
}

func (g GUID) String() string {
	return g.UUID().String()
}

// IsZero reports whether no sub-format is set.
func (g GUID) IsZero() bool {
	return g == GUID{}
}

func (g GUID) supported() bool {
	return g == SubTypePCM || g == SubTypeIEEEFloat
}

// Name returns a short label for the known sub-formats.
func (g GUID) Name() string {
	switch g {
	case SubTypePCM:
		return "PCM"
	case SubTypeIEEEFloat:
		return "IEEE FLOAT"
	default:
		return "Unknown"
	}
}

// SubFormatGUID returns the extensible sub-format GUID for a legacy format
// tag such as WaveFormatPCM or WaveFormatIEEEFloat.
func SubFormatGUID(formatTag uint16) GUID {
	var guid GUID
	binary.LittleEndian.PutUint32(guid[:4], uint32(formatTag))
	guid[4] = ksSubFormatGUIDTail0
	guid[5] = ksSubFormatGUIDTail1
	guid[6] = ksSubFormatGUIDTail2
	guid[7] = ksSubFormatGUIDTail3
	guid[8] = ksSubFormatGUIDTail4
	guid[9] = ksSubFormatGUIDTail5
	guid[10] = ksSubFormatGUIDTail6
	guid[11] = ksSubFormatGUIDTail7
	guid[12] = ksSubFormatGUIDTail8
	guid[13] = ksSubFormatGUIDTail9
	guid[14] = ksSubFormatGUIDTail10
	guid[15] = ksSubFormatGUIDTail11

	return guid
}
