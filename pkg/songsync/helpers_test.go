package songsync_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-song-sync/pkg/songsync/library"
)

var coverJPEG = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0xAB, 0xCD}, 40)...)

func synchsafe(n int) []byte {
	return []byte{byte(n>>21) & 0x7F, byte(n>>14) & 0x7F, byte(n>>7) & 0x7F, byte(n) & 0x7F}
}

func frame(id string, payload []byte) []byte {
	b := append([]byte(id), binary.BigEndian.AppendUint32(nil, uint32(len(payload)))...)
	b = append(b, 0, 0)
	return append(b, payload...)
}

func text(s string) []byte { return append([]byte{0}, s...) }

func lyricsFrame(desc, s string) []byte {
	b := append([]byte{0}, "eng"...)
	b = append(b, desc...)
	b = append(b, 0)
	return frame("USLT", append(b, s...))
}

func pictureFrame(img []byte) []byte {
	b := append([]byte{0}, "image/jpeg"...)
	b = append(b, 0, 3, 0)
	return frame("APIC", append(b, img...))
}

// mp3File builds an ID3v2.3 tag from frames followed by ten silent
// MPEG-1 Layer III frames (128 kbps, 44.1 kHz).
func mp3File(frames ...[]byte) []byte {
	var body []byte
	for _, f := range frames {
		body = append(body, f...)
	}
	body = append(body, make([]byte, 16)...)
	out := append([]byte{'I', 'D', '3', 3, 0, 0}, synchsafe(len(body))...)
	out = append(out, body...)

	mpeg := make([]byte, 417)
	copy(mpeg, []byte{0xFF, 0xFB, 0x90, 0x00})
	return append(out, bytes.Repeat(mpeg, 10)...)
}

// songFixture is the tagged file used by the end-to-end scenarios.
func songFixture() []byte {
	return mp3File(
		frame("TIT2", text("Song Title")),
		frame("TPE1", text("A")),
		frame("TALB", text("Album")),
		frame("TRCK", text("3/12")),
		frame("TCON", text("(17)")),
		lyricsFrame("", "La la"),
		pictureFrame(coverJPEG),
	)
}

type capturedRequest struct {
	Method    string
	RequestID string
	Body      []byte
	Form      url.Values
}

type libraryServer struct {
	*httptest.Server
	mu       sync.Mutex
	status   int
	requests []capturedRequest
}

func newLibraryServer(t *testing.T, status int) *libraryServer {
	t.Helper()
	ls := &libraryServer{status: status}
	ls.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		ls.mu.Lock()
		ls.requests = append(ls.requests, capturedRequest{
			Method:    r.Method,
			RequestID: r.Header.Get("X-Request-Id"),
			Body:      body,
			Form:      form,
		})
		ls.mu.Unlock()
		if r.URL.Path != library.SongPath {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(ls.status)
	}))
	t.Cleanup(ls.Close)
	return ls
}

func (ls *libraryServer) captured() []capturedRequest {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return append([]capturedRequest(nil), ls.requests...)
}

func (ls *libraryServer) client(t *testing.T) *library.Client {
	t.Helper()
	c, err := library.New(library.Config{BaseURL: ls.URL, AppKey: "app-key"}, ls.Server.Client())
	require.NoError(t, err)
	return c
}
