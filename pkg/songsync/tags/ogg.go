package tags

import (
	"bytes"
	"encoding/binary"
)

const (
	oggPageHeaderSize = 27
	// maxHeaderPages bounds the pages read while assembling header packets.
	maxHeaderPages = 512
	oggTailWindow  = 64 * 1024
)

type oggPage struct {
	headerType byte
	granule    int64
	serial     uint32
	segments   []byte
	data       []byte
	next       int64
}

func (p *parser) readOggPage(off int64) (*oggPage, error) {
	head, err := p.sr.bytes(off, oggPageHeaderSize, "Ogg page header")
	if err != nil {
		return nil, err
	}
	if string(head[:4]) != "OggS" {
		return nil, p.corrupted(off, "missing Ogg page signature")
	}
	if head[4] != 0 {
		return nil, p.corrupted(off+4, "unsupported Ogg version %d", head[4])
	}

	segments, err := p.sr.bytes(off+oggPageHeaderSize, int(head[26]), "Ogg segment table")
	if err != nil {
		return nil, err
	}
	size := 0
	for _, s := range segments {
		size += int(s)
	}
	dataOff := off + oggPageHeaderSize + int64(len(segments))
	data, err := p.sr.bytes(dataOff, size, "Ogg page data")
	if err != nil {
		return nil, err
	}
	return &oggPage{
		headerType: head[5],
		granule:    int64(binary.LittleEndian.Uint64(head[6:14])),
		serial:     binary.LittleEndian.Uint32(head[14:18]),
		segments:   segments,
		data:       data,
		next:       dataOff + int64(size),
	}, nil
}

// oggHeaderPackets assembles the first n packets of the first logical
// stream, following the segment lacing across pages.
func (p *parser) oggHeaderPackets(n int) ([][]byte, uint32, error) {
	var (
		packets [][]byte
		current []byte
		serial  uint32
		off     int64
	)
	for i := 0; i < maxHeaderPages && len(packets) < n; i++ {
		page, err := p.readOggPage(off)
		if err != nil {
			return nil, 0, err
		}
		off = page.next
		if i == 0 {
			serial = page.serial
		} else if page.serial != serial {
			continue
		}

		pos := 0
		for _, seg := range page.segments {
			current = append(current, page.data[pos:pos+int(seg)]...)
			pos += int(seg)
			if seg < 255 {
				packets = append(packets, current)
				current = nil
				if len(packets) == n {
					break
				}
			}
		}
	}
	if len(packets) < n {
		return nil, 0, p.corrupted(off, "incomplete Ogg header packets")
	}
	return packets, serial, nil
}

func (p *parser) parseOgg() error {
	packets, serial, err := p.oggHeaderPackets(2)
	if err != nil {
		return err
	}
	ident, comments := packets[0], packets[1]

	var sampleRate, preSkip int64
	switch {
	case len(ident) >= 16 && ident[0] == 0x01 && string(ident[1:7]) == "vorbis":
		sampleRate = int64(binary.LittleEndian.Uint32(ident[12:16]))
		if len(comments) < 7 || comments[0] != 0x03 || string(comments[1:7]) != "vorbis" {
			return p.corrupted(0, "missing Vorbis comment header")
		}
		comments = comments[7:]
	case len(ident) >= 19 && string(ident[:8]) == "OpusHead":
		// Opus granule positions always count 48 kHz samples.
		sampleRate = 48000
		preSkip = int64(binary.LittleEndian.Uint16(ident[10:12]))
		if len(comments) < 8 || string(comments[:8]) != "OpusTags" {
			return p.corrupted(0, "missing OpusTags header")
		}
		comments = comments[8:]
	default:
		return p.corrupted(0, "unsupported Ogg codec")
	}

	if err := p.readVorbisComments(comments); err != nil {
		return err
	}

	if p.opts.duration && sampleRate > 0 {
		if granule, ok := p.lastGranule(serial); ok && granule > preSkip {
			p.tags.Duration = float64(granule-preSkip) / float64(sampleRate)
		}
	}
	return nil
}

// lastGranule scans backwards from the end of the file for the last page of
// the stream that carries a granule position.
func (p *parser) lastGranule(serial uint32) (int64, bool) {
	end := p.sr.size
	for end > 0 {
		start := max(end-oggTailWindow, 0)
		buf, err := p.sr.bytes(start, int(end-start), "Ogg tail")
		if err != nil {
			return 0, false
		}
		for i := bytes.LastIndex(buf, []byte("OggS")); i >= 0; i = bytes.LastIndex(buf[:i], []byte("OggS")) {
			if i+oggPageHeaderSize > len(buf) {
				continue
			}
			h := buf[i:]
			granule := int64(binary.LittleEndian.Uint64(h[6:14]))
			if h[4] == 0 && binary.LittleEndian.Uint32(h[14:18]) == serial && granule != -1 {
				return granule, true
			}
		}
		if start == 0 {
			break
		}
		// Overlap so a header split across windows is still seen.
		end = start + oggPageHeaderSize
	}
	return 0, false
}
