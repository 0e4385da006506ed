package tags

import (
	"encoding/binary"
	"fmt"
	"io"
)

// safeReader wraps io.ReaderAt with bounds checking and error messages that
// name the structure being read.
type safeReader struct {
	r    io.ReaderAt
	name string
	size int64
}

func newSafeReader(r io.ReaderAt, size int64, name string) *safeReader {
	return &safeReader{r: r, name: name, size: size}
}

func (sr *safeReader) readAt(b []byte, off int64, what string) error {
	if off < 0 || off >= sr.size {
		return fmt.Errorf("%s: offset %d out of bounds (size %d) while reading %s",
			sr.name, off, sr.size, what)
	}
	if off+int64(len(b)) > sr.size {
		return fmt.Errorf("%s: read of %d bytes at offset %d exceeds size %d while reading %s",
			sr.name, len(b), off, sr.size, what)
	}

	n, err := sr.r.ReadAt(b, off)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%s: failed to read %s at offset %d: %w", sr.name, what, off, err)
	}
	if n < len(b) {
		return fmt.Errorf("%s: short read for %s at offset %d: got %d bytes, expected %d",
			sr.name, what, off, n, len(b))
	}
	return nil
}

// bytes reads n bytes at off.
func (sr *safeReader) bytes(off int64, n int, what string) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%s: negative length %d while reading %s", sr.name, n, what)
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if err := sr.readAt(buf, off, what); err != nil {
		return nil, err
	}
	return buf, nil
}

// window reads up to n bytes at off, stopping at the end of the input.
func (sr *safeReader) window(off int64, n int, what string) ([]byte, error) {
	if off >= sr.size {
		return nil, nil
	}
	if rem := sr.size - off; int64(n) > rem {
		n = int(rem)
	}
	return sr.bytes(off, n, what)
}

func (sr *safeReader) uint32BE(off int64, what string) (uint32, error) {
	b, err := sr.bytes(off, 4, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (sr *safeReader) uint64BE(off int64, what string) (uint64, error) {
	b, err := sr.bytes(off, 8, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}
