package tags

import (
	"encoding/binary"
)

// Bitrates in kbps indexed by [table][bitrate index].
var mpegBitrates = [5][16]int{
	{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448, 0}, // V1 L1
	{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, 0},    // V1 L2
	{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0},     // V1 L3
	{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256, 0},    // V2 L1
	{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},         // V2 L2/L3
}

var mpegSampleRates = map[int][3]int{
	mpeg1:  {44100, 48000, 32000},
	mpeg2:  {22050, 24000, 16000},
	mpeg25: {11025, 12000, 8000},
}

const (
	mpeg25 = 0
	mpeg2  = 2
	mpeg1  = 3
)

// maxSyncScan bounds the search for the first audio frame after the tag.
const maxSyncScan = 256 * 1024

type frameHeader struct {
	version    int
	layer      int
	bitrate    int // bits per second
	sampleRate int
	padding    int
	mono       bool
}

func (h frameHeader) samplesPerFrame() int {
	switch h.layer {
	case 1:
		return 384
	case 3:
		if h.version != mpeg1 {
			return 576
		}
	}
	return 1152
}

func (h frameHeader) length() int {
	if h.layer == 1 {
		return (12*h.bitrate/h.sampleRate + h.padding) * 4
	}
	return h.samplesPerFrame()/8*h.bitrate/h.sampleRate + h.padding
}

// sideInfoSize is the Layer III side information length that precedes a
// Xing/Info header.
func (h frameHeader) sideInfoSize() int {
	switch {
	case h.version == mpeg1 && h.mono:
		return 17
	case h.version == mpeg1:
		return 32
	case h.mono:
		return 9
	default:
		return 17
	}
}

func parseFrameHeader(b []byte) (frameHeader, bool) {
	if len(b) < 4 {
		return frameHeader{}, false
	}
	v := binary.BigEndian.Uint32(b)
	if v&0xFFE00000 != 0xFFE00000 {
		return frameHeader{}, false
	}

	version := int(v>>19) & 0x3
	layerBits := int(v>>17) & 0x3
	bitrateIdx := int(v>>12) & 0xF
	rateIdx := int(v>>10) & 0x3
	if version == 1 || layerBits == 0 || bitrateIdx == 0 || bitrateIdx == 15 || rateIdx == 3 {
		return frameHeader{}, false
	}

	h := frameHeader{
		version:    version,
		layer:      4 - layerBits,
		sampleRate: mpegSampleRates[version][rateIdx],
		padding:    int(v>>9) & 0x1,
		mono:       (v>>6)&0x3 == 3,
	}
	table := 4
	switch {
	case version == mpeg1:
		table = h.layer - 1
	case h.layer == 1:
		table = 3
	}
	h.bitrate = mpegBitrates[table][bitrateIdx] * 1000
	return h, true
}

func (p *parser) parseMP3() error {
	var audioStart int64
	if head, err := p.sr.bytes(0, 3, "ID3v2 signature"); err == nil && string(head) == "ID3" {
		n, err := p.parseID3v2()
		if err != nil {
			return err
		}
		audioStart = n
	}
	hasV1 := p.parseID3v1()

	if !p.opts.duration {
		return nil
	}
	audioEnd := p.sr.size
	if hasV1 {
		audioEnd -= 128
	}
	p.tags.Duration = p.mpegDuration(audioStart, audioEnd)
	return nil
}

// mpegDuration locates the first audio frame and derives the duration from a
// Xing/Info or VBRI header when present, otherwise from the bitrate.
func (p *parser) mpegDuration(start, end int64) float64 {
	buf, err := p.sr.window(start, maxSyncScan, "MPEG audio")
	if err != nil || len(buf) < 4 {
		return 0
	}

	for i := 0; i+4 <= len(buf); i++ {
		if buf[i] != 0xFF {
			continue
		}
		h, ok := parseFrameHeader(buf[i:])
		if !ok {
			continue
		}
		// Require the next frame to line up unless this one reaches the end.
		next := i + h.length()
		if next+4 <= len(buf) {
			if _, ok := parseFrameHeader(buf[next:]); !ok {
				continue
			}
		} else if start+int64(next) < end && next < len(buf) {
			continue
		}

		frame := buf[i:]
		if frames, ok := vbrFrameCount(h, frame); ok {
			return float64(frames) * float64(h.samplesPerFrame()) / float64(h.sampleRate)
		}
		audio := end - (start + int64(i))
		if audio <= 0 {
			return 0
		}
		return float64(audio*8) / float64(h.bitrate)
	}
	return 0
}

// vbrFrameCount reads the frame count from a Xing/Info or VBRI header in the
// first frame.
func vbrFrameCount(h frameHeader, frame []byte) (uint32, bool) {
	if h.layer == 3 {
		off := 4 + h.sideInfoSize()
		if len(frame) >= off+12 {
			tag := string(frame[off : off+4])
			if tag == "Xing" || tag == "Info" {
				flags := binary.BigEndian.Uint32(frame[off+4:])
				if flags&0x1 != 0 {
					return binary.BigEndian.Uint32(frame[off+8:]), true
				}
				return 0, false
			}
		}
	}
	const vbriOff = 4 + 32
	if len(frame) >= vbriOff+18 && string(frame[vbriOff:vbriOff+4]) == "VBRI" {
		return binary.BigEndian.Uint32(frame[vbriOff+14:]), true
	}
	return 0, false
}
