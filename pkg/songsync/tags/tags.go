package tags

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Format identifies the container a tag set was read from.
type Format string

const (
	FormatMP3 Format = "mp3"
	FormatM4A Format = "m4a"
	FormatOgg Format = "ogg"
)

// ErrUnsupportedFormat is returned when the input does not start with a
// recognised container signature.
var ErrUnsupportedFormat = errors.New("unsupported audio container")

// CorruptedError describes structurally invalid tag or container data.
type CorruptedError struct {
	Name   string
	Offset int64
	Reason string
}

func (e *CorruptedError) Error() string {
	return fmt.Sprintf("%s: corrupted at offset %d: %s", e.Name, e.Offset, e.Reason)
}

// Position is a "n of m" pair used for track and disc numbers. Zero means
// unknown.
type Position struct {
	No int `json:"no"`
	Of int `json:"of"`
}

// Picture is an embedded image. Format is the image subtype, e.g. "jpeg".
type Picture struct {
	Format string
	Data   []byte
}

// Tags is the primary tag set of an audio file.
type Tags struct {
	Format      Format
	Title       string
	Artist      []string
	AlbumArtist []string
	Album       string
	Year        string
	Track       Position
	Disk        Position
	Genre       []string
	// Duration in seconds, only populated with WithDuration.
	Duration float64
	Picture  []Picture
}

// FrameKind classifies auxiliary frames.
type FrameKind int

const (
	KindOther FrameKind = iota
	KindLyrics
	KindComment
)

func (k FrameKind) String() string {
	switch k {
	case KindLyrics:
		return "lyrics"
	case KindComment:
		return "comment"
	default:
		return "other"
	}
}

// Frame is an auxiliary tag frame emitted during Parse.
type Frame struct {
	// ID is the container specific identifier, e.g. "USLT", "©lyr" or "LYRICS".
	ID          string
	Kind        FrameKind
	Language    string
	Description string
	Text        string
}

// FrameHandler receives auxiliary frames in file order.
type FrameHandler func(Frame)

type options struct {
	duration bool
	onFrame  FrameHandler
}

// Option configures Parse.
type Option func(*options)

// WithDuration requests the playback duration.
func WithDuration() Option {
	return func(o *options) { o.duration = true }
}

// WithFrameHandler subscribes fn to auxiliary frames. fn is called
// synchronously before Parse returns.
func WithFrameHandler(fn FrameHandler) Option {
	return func(o *options) { o.onFrame = fn }
}

type parser struct {
	sr   *safeReader
	opts options
	tags *Tags
}

func (p *parser) emit(f Frame) {
	if p.opts.onFrame != nil {
		p.opts.onFrame(f)
	}
}

func (p *parser) corrupted(off int64, format string, args ...any) error {
	return &CorruptedError{Name: p.sr.name, Offset: off, Reason: fmt.Sprintf(format, args...)}
}

// Parse reads the tag set of the audio data in r. name is only used in
// error messages.
func Parse(r io.ReaderAt, size int64, name string, opts ...Option) (*Tags, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	sr := newSafeReader(r, size, name)
	format, err := Detect(r, size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	p := &parser{sr: sr, opts: o, tags: &Tags{Format: format}}
	switch format {
	case FormatMP3:
		err = p.parseMP3()
	case FormatM4A:
		err = p.parseMP4()
	case FormatOgg:
		err = p.parseOgg()
	}
	if err != nil {
		return nil, err
	}
	return p.tags, nil
}

// Detect identifies the container by its leading bytes.
func Detect(r io.ReaderAt, size int64) (Format, error) {
	head := make([]byte, 12)
	if size < int64(len(head)) {
		head = head[:size]
	}
	if len(head) < 4 {
		return "", ErrUnsupportedFormat
	}
	if _, err := r.ReadAt(head, 0); err != nil && err != io.EOF {
		return "", fmt.Errorf("read header: %w", err)
	}

	switch {
	case string(head[:3]) == "ID3":
		return FormatMP3, nil
	case string(head[:4]) == "OggS":
		return FormatOgg, nil
	case len(head) >= 8 && string(head[4:8]) == "ftyp":
		return FormatM4A, nil
	}
	if _, ok := parseFrameHeader(head); ok {
		return FormatMP3, nil
	}
	return "", ErrUnsupportedFormat
}

// parsePosition parses "3", "3/12" and " 3 / 12 ".
func parsePosition(s string) Position {
	var pos Position
	no, of, found := strings.Cut(strings.TrimSpace(s), "/")
	pos.No, _ = strconv.Atoi(strings.TrimSpace(no))
	if found {
		pos.Of, _ = strconv.Atoi(strings.TrimSpace(of))
	}
	return pos
}

// parseYear keeps the leading year of a date such as "2004-05-01".
func parseYear(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 4 {
		if _, err := strconv.Atoi(s[:4]); err == nil {
			return s[:4]
		}
	}
	return s
}

// pictureFormat turns a MIME type or a short format name into the image
// subtype used for Picture.Format.
func pictureFormat(mime string, data []byte) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if _, sub, ok := strings.Cut(mime, "/"); ok && sub != "" {
		return sub
	}
	if mime != "" && mime != "-->" {
		return mime
	}
	return sniffImage(data)
}

func sniffImage(data []byte) string {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "jpeg"
	case len(data) >= 8 && string(data[:8]) == "\x89PNG\r\n\x1a\n":
		return "png"
	case len(data) >= 6 && (string(data[:6]) == "GIF87a" || string(data[:6]) == "GIF89a"):
		return "gif"
	case len(data) >= 2 && string(data[:2]) == "BM":
		return "bmp"
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "webp"
	}
	return ""
}
