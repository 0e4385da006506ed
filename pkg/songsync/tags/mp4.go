package tags

import (
	"encoding/binary"
	"errors"
	"strings"
)

var errStopWalk = errors.New("stop walk")

type atom struct {
	typ    string
	offset int64
	size   int64
	header int64
}

func (a atom) dataOffset() int64 { return a.offset + a.header }
func (a atom) dataSize() int64   { return a.size - a.header }
func (a atom) end() int64        { return a.offset + a.size }

// readAtom reads the atom header at off. Atoms with size 0 extend to limit.
func (p *parser) readAtom(off, limit int64) (atom, error) {
	head, err := p.sr.bytes(off, 8, "atom header")
	if err != nil {
		return atom{}, err
	}
	a := atom{typ: string(head[4:8]), offset: off, header: 8}
	switch size := binary.BigEndian.Uint32(head); size {
	case 0:
		a.size = limit - off
	case 1:
		ext, err := p.sr.uint64BE(off+8, "extended atom size")
		if err != nil {
			return atom{}, err
		}
		a.size, a.header = int64(ext), 16
	default:
		a.size = int64(size)
	}
	if a.size < a.header || a.end() > limit {
		return atom{}, p.corrupted(off, "invalid size %d for atom %q", a.size, a.typ)
	}
	return a, nil
}

// eachAtom calls fn for the atoms laid out between start and end.
func (p *parser) eachAtom(start, end int64, fn func(atom) error) error {
	for off := start; off+8 <= end; {
		a, err := p.readAtom(off, end)
		if err != nil {
			return err
		}
		if err := fn(a); err != nil {
			return err
		}
		off = a.end()
	}
	return nil
}

func (p *parser) findAtom(start, end int64, typ string) (atom, bool, error) {
	var found atom
	var ok bool
	err := p.eachAtom(start, end, func(a atom) error {
		if a.typ == typ {
			found, ok = a, true
			return errStopWalk
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		return atom{}, false, err
	}
	return found, ok, nil
}

func (p *parser) findPath(parent atom, path ...string) (atom, bool, error) {
	cur := parent
	for _, typ := range path {
		start := cur.dataOffset()
		if cur.typ == "meta" {
			start = p.metaChildrenOffset(cur)
		}
		next, ok, err := p.findAtom(start, cur.end(), typ)
		if err != nil || !ok {
			return atom{}, false, err
		}
		cur = next
	}
	return cur, true, nil
}

// metaChildrenOffset skips the full-box version and flags of a meta atom.
// QuickTime style meta atoms omit them and start directly with hdlr.
func (p *parser) metaChildrenOffset(meta atom) int64 {
	b, err := p.sr.bytes(meta.dataOffset(), 8, "meta header")
	if err == nil && string(b[4:8]) == "hdlr" {
		return meta.dataOffset()
	}
	return meta.dataOffset() + 4
}

func (p *parser) parseMP4() error {
	moov, ok, err := p.findAtom(0, p.sr.size, "moov")
	if err != nil {
		return err
	}
	if !ok {
		return p.corrupted(0, "missing moov atom")
	}

	if p.opts.duration {
		if mvhd, ok, err := p.findPath(moov, "mvhd"); err != nil {
			return err
		} else if ok {
			d, err := p.readMVHD(mvhd)
			if err != nil {
				return err
			}
			p.tags.Duration = d
		}
	}

	ilst, ok, err := p.findPath(moov, "udta", "meta", "ilst")
	if err != nil {
		return err
	}
	if !ok {
		if ilst, ok, err = p.findPath(moov, "meta", "ilst"); err != nil {
			return err
		}
	}
	if !ok {
		return nil
	}
	return p.eachAtom(ilst.dataOffset(), ilst.end(), p.readIlstItem)
}

func (p *parser) readMVHD(mvhd atom) (float64, error) {
	b, err := p.sr.bytes(mvhd.dataOffset(), int(min(mvhd.dataSize(), 32)), "mvhd")
	if err != nil {
		return 0, err
	}
	var timescale uint32
	var duration uint64
	switch {
	case len(b) >= 32 && b[0] == 1:
		timescale = binary.BigEndian.Uint32(b[20:24])
		duration = binary.BigEndian.Uint64(b[24:32])
	case len(b) >= 20 && b[0] == 0:
		timescale = binary.BigEndian.Uint32(b[12:16])
		duration = uint64(binary.BigEndian.Uint32(b[16:20]))
	default:
		return 0, p.corrupted(mvhd.offset, "unsupported mvhd layout")
	}
	if timescale == 0 {
		return 0, nil
	}
	return float64(duration) / float64(timescale), nil
}

type mp4Value struct {
	kind uint32
	data []byte
}

// itemValues returns the payloads of the data atoms inside an ilst item:
// [version(1)][type(3)][locale(4)][value].
func (p *parser) itemValues(item atom) ([]mp4Value, error) {
	var values []mp4Value
	err := p.eachAtom(item.dataOffset(), item.end(), func(a atom) error {
		if a.typ != "data" || a.dataSize() < 8 {
			return nil
		}
		b, err := p.sr.bytes(a.dataOffset(), int(a.dataSize()), "ilst data")
		if err != nil {
			return err
		}
		values = append(values, mp4Value{
			kind: binary.BigEndian.Uint32(b[0:4]) & 0x00FFFFFF,
			data: b[8:],
		})
		return nil
	})
	return values, err
}

func (p *parser) readIlstItem(item atom) error {
	values, err := p.itemValues(item)
	if err != nil || len(values) == 0 {
		return err
	}
	t := p.tags
	text := strings.TrimRight(string(values[0].data), "\x00")

	switch item.typ {
	case "\xa9nam":
		t.Title = text
	case "\xa9ART":
		t.Artist = appendTexts(t.Artist, values)
	case "aART":
		t.AlbumArtist = appendTexts(t.AlbumArtist, values)
	case "\xa9alb":
		t.Album = text
	case "\xa9day":
		t.Year = parseYear(text)
	case "\xa9gen":
		t.Genre = appendTexts(t.Genre, values)
	case "gnre":
		if d := values[0].data; len(d) >= 2 {
			if name, ok := genreName(int(binary.BigEndian.Uint16(d)) - 1); ok {
				t.Genre = append(t.Genre, name)
			}
		}
	case "trkn":
		t.Track = binaryPosition(values[0].data)
	case "disk":
		t.Disk = binaryPosition(values[0].data)
	case "covr":
		for _, v := range values {
			if len(v.data) == 0 {
				continue
			}
			t.Picture = append(t.Picture, Picture{Format: coverFormat(v), Data: v.data})
		}
	case "\xa9lyr":
		p.emit(Frame{ID: atomName(item.typ), Kind: KindLyrics, Text: text})
	case "\xa9cmt":
		p.emit(Frame{ID: atomName(item.typ), Kind: KindComment, Text: text})
	}
	return nil
}

func appendTexts(dst []string, values []mp4Value) []string {
	for _, v := range values {
		if s := strings.TrimSpace(strings.TrimRight(string(v.data), "\x00")); s != "" {
			dst = append(dst, s)
		}
	}
	return dst
}

// binaryPosition decodes trkn/disk: [reserved(2)][number(2)][total(2)].
func binaryPosition(b []byte) Position {
	var pos Position
	if len(b) >= 4 {
		pos.No = int(binary.BigEndian.Uint16(b[2:4]))
	}
	if len(b) >= 6 {
		pos.Of = int(binary.BigEndian.Uint16(b[4:6]))
	}
	return pos
}

func coverFormat(v mp4Value) string {
	switch v.kind {
	case 13:
		return "jpeg"
	case 14:
		return "png"
	case 27:
		return "bmp"
	}
	return sniffImage(v.data)
}

// atomName renders the 0xA9 prefix of iTunes atoms as "©".
func atomName(typ string) string {
	if strings.HasPrefix(typ, "\xa9") {
		return "©" + typ[1:]
	}
	return typ
}
