package tags

import (
	"strconv"
	"strings"
)

// id3v1Genres is the ID3v1 genre list including the Winamp extensions.
var id3v1Genres = []string{
	"Blues", "Classic Rock", "Country", "Dance", "Disco", "Funk", "Grunge",
	"Hip-Hop", "Jazz", "Metal", "New Age", "Oldies", "Other", "Pop", "R&B",
	"Rap", "Reggae", "Rock", "Techno", "Industrial", "Alternative", "Ska",
	"Death Metal", "Pranks", "Soundtrack", "Euro-Techno", "Ambient",
	"Trip-Hop", "Vocal", "Jazz+Funk", "Fusion", "Trance", "Classical",
	"Instrumental", "Acid", "House", "Game", "Sound Clip", "Gospel", "Noise",
	"Alternative Rock", "Bass", "Soul", "Punk", "Space", "Meditative",
	"Instrumental Pop", "Instrumental Rock", "Ethnic", "Gothic", "Darkwave",
	"Techno-Industrial", "Electronic", "Pop-Folk", "Eurodance", "Dream",
	"Southern Rock", "Comedy", "Cult", "Gangsta", "Top 40", "Christian Rap",
	"Pop/Funk", "Jungle", "Native American", "Cabaret", "New Wave",
	"Psychadelic", "Rave", "Showtunes", "Trailer", "Lo-Fi", "Tribal",
	"Acid Punk", "Acid Jazz", "Polka", "Retro", "Musical", "Rock & Roll",
	"Hard Rock", "Folk", "Folk-Rock", "National Folk", "Swing", "Fast Fusion",
	"Bebob", "Latin", "Revival", "Celtic", "Bluegrass", "Avantgarde",
	"Gothic Rock", "Progressive Rock", "Psychedelic Rock", "Symphonic Rock",
	"Slow Rock", "Big Band", "Chorus", "Easy Listening", "Acoustic", "Humour",
	"Speech", "Chanson", "Opera", "Chamber Music", "Sonata", "Symphony",
	"Booty Bass", "Primus", "Porn Groove", "Satire", "Slow Jam", "Club",
	"Tango", "Samba", "Folklore", "Ballad", "Power Ballad", "Rhythmic Soul",
	"Freestyle", "Duet", "Punk Rock", "Drum Solo", "A capella", "Euro-House",
	"Dance Hall", "Goa", "Drum & Bass", "Club-House", "Hardcore", "Terror",
	"Indie", "BritPop", "Negerpunk", "Polsk Punk", "Beat",
	"Christian Gangsta Rap", "Heavy Metal", "Black Metal", "Crossover",
	"Contemporary Christian", "Christian Rock", "Merengue", "Salsa",
	"Thrash Metal", "Anime", "JPop", "Synthpop",
}

func genreName(idx int) (string, bool) {
	if idx < 0 || idx >= len(id3v1Genres) {
		return "", false
	}
	return id3v1Genres[idx], true
}

// parseID3Genres expands TCON values such as "17", "(17)", "(17)(31)" and
// "(17)Rock" into genre names.
func parseID3Genres(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if name, ok := genreName(n); ok {
			return []string{name}
		}
		return []string{s}
	}

	var out []string
	for strings.HasPrefix(s, "(") {
		end := strings.IndexByte(s, ')')
		if end < 0 {
			break
		}
		ref := s[1:end]
		s = s[end+1:]
		switch ref {
		case "RX":
			out = append(out, "Remix")
		case "CR":
			out = append(out, "Cover")
		default:
			if n, err := strconv.Atoi(ref); err == nil {
				if name, ok := genreName(n); ok {
					out = append(out, name)
				}
			}
		}
	}
	// A refinement after the references replaces the last reference.
	if s = strings.TrimSpace(s); s != "" {
		if len(out) > 0 {
			out[len(out)-1] = s
		} else {
			out = append(out, s)
		}
	}
	return out
}

// parseID3v1 fills fields that are still empty from a trailing 128 byte
// ID3v1 tag. It reports whether such a tag exists.
func (p *parser) parseID3v1() bool {
	if p.sr.size < 128 {
		return false
	}
	b, err := p.sr.bytes(p.sr.size-128, 128, "ID3v1 tag")
	if err != nil || string(b[:3]) != "TAG" {
		return false
	}

	field := func(f []byte) string {
		return strings.TrimRight(decodeLatin1(trimAtNull(f)), " ")
	}
	t := p.tags
	if t.Title == "" {
		t.Title = field(b[3:33])
	}
	if len(t.Artist) == 0 {
		if a := field(b[33:63]); a != "" {
			t.Artist = []string{a}
		}
	}
	if t.Album == "" {
		t.Album = field(b[63:93])
	}
	if t.Year == "" {
		t.Year = field(b[93:97])
	}
	// ID3v1.1 stores the track in the last comment byte.
	if t.Track.No == 0 && b[125] == 0 && b[126] != 0 {
		t.Track.No = int(b[126])
	}
	if len(t.Genre) == 0 {
		if name, ok := genreName(int(b[127])); ok {
			t.Genre = []string{name}
		}
	}
	return true
}

func trimAtNull(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}
