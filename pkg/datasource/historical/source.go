package historical

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"unsafe"

	"golang.org/x/exp/mmap"
)

var ErrEof = errors.New("EOF")

// Source memory-maps a file of fixed-size binary records and reads them by
// index. T must be a flat struct with no pointers; records are laid out in
// the platform's native byte order.
type Source[T any] struct {
	path      string
	entrySize int64
	reader    *mmap.ReaderAt
	buffers   *sync.Pool
}

func NewSource[T any](path string) *Source[T] {
	entrySize := int64(unsafe.Sizeof(*new(T)))
	return &Source[T]{
		path:      path,
		entrySize: entrySize,
		buffers: &sync.Pool{
			New: func() interface{} {
				buffer := make([]byte, entrySize)
				return &buffer
			},
		},
	}
}

func (s *Source[T]) Open() error {
	if s.entrySize == 0 {
		return fmt.Errorf("record type of data source %q has zero size", s.path)
	}
	reader, err := mmap.Open(s.path)
	if err != nil {
		return fmt.Errorf("unable to open data source %q: %w", s.path, err)
	}
	if int64(reader.Len())%s.entrySize != 0 {
		_ = reader.Close()
		return fmt.Errorf("data source %q size is not a multiple of the record size", s.path)
	}
	s.reader = reader
	return nil
}

func (s *Source[T]) Close() {
	_ = s.reader.Close()
}

// Read copies the record at index into data, ErrEof past the end.
func (s *Source[T]) Read(index int64, data *T) error {
	buffer := s.buffers.Get().(*[]byte)
	defer s.buffers.Put(buffer)

	n, err := s.reader.ReadAt(*buffer, index*s.entrySize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("unable to read record %d: %w", index, err)
	}
	if int64(n) < s.entrySize {
		return ErrEof
	}

	*data = *(*T)(unsafe.Pointer(&(*buffer)[0])) // #nosec G103
	return nil
}

// EntryCount is the number of records in the mapped file.
func (s *Source[T]) EntryCount() (int64, error) {
	if s.reader == nil {
		return 0, fmt.Errorf("data source %q is not open", s.path)
	}
	return int64(s.reader.Len()) / s.entrySize, nil
}
