// Package tags reads embedded metadata from MP3, MP4/M4A and Ogg audio
// containers.
//
// Parse returns the primary tag set (title, artists, album, track and disc
// positions, genres, pictures and, when requested, duration). Auxiliary
// frames that are not part of the primary set, such as unsynchronised lyrics
// and comments, are delivered to an optional FrameHandler while the parse is
// running:
//
//	var lyrics string
//	t, err := tags.Parse(f, size, "song.mp3",
//	    tags.WithDuration(),
//	    tags.WithFrameHandler(func(fr tags.Frame) {
//	        if fr.Kind == tags.KindLyrics {
//	            lyrics = fr.Text
//	        }
//	    }),
//	)
//
// Duration is opt-in because it may require scanning audio frames or the tail
// of the file rather than just the tag header.
package tags
