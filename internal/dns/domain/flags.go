package domain

// Flags is the unpacked form of the 16-bit flags word in the DNS header
// (RFC 1035 section 4.1.1).
type Flags struct {
	QR     bool  // false = query, true = response
	Opcode uint8 // 4 bits
	AA     bool  // authoritative answer
	TC     bool  // truncated
	RD     bool  // recursion desired
	RA     bool  // recursion available
	Z      uint8 // 3 reserved bits, zero on anything we produce
	RCode  RCode // 4 bits
}

// Bit positions within the flags word.
const (
	flagQR = 1 << 15
	flagAA = 1 << 10
	flagTC = 1 << 9
	flagRD = 1 << 8
	flagRA = 1 << 7
)

// Pack folds the structured flags back into the wire representation.
func (f Flags) Pack() uint16 {
	var w uint16
	if f.QR {
		w |= flagQR
	}
	w |= uint16(f.Opcode&0x0F) << 11
	if f.AA {
		w |= flagAA
	}
	if f.TC {
		w |= flagTC
	}
	if f.RD {
		w |= flagRD
	}
	if f.RA {
		w |= flagRA
	}
	w |= uint16(f.Z&0x07) << 4
	w |= uint16(f.RCode) & 0x0F
	return w
}

// UnpackFlags splits a wire flags word into its structured form.
func UnpackFlags(w uint16) Flags {
	return Flags{
		QR:     w&flagQR != 0,
		Opcode: uint8(w >> 11 & 0x0F),
		AA:     w&flagAA != 0,
		TC:     w&flagTC != 0,
		RD:     w&flagRD != 0,
		RA:     w&flagRA != 0,
		Z:      uint8(w >> 4 & 0x07),
		RCode:  RCode(w & 0x0F),
	}
}
