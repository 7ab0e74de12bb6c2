package memory

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

var (
	// ErrOutOfRange is returned when an access falls outside the
	// region backing the guest physical address space.
	ErrOutOfRange = errors.New("guest address out of range")

	// ErrRangeOverflow is returned when address plus length wraps the
	// address space.
	ErrRangeOverflow = errors.New("guest range wraps the address space")
)

// Memory is one anonymous-mmap backed region of guest RAM starting at a
// fixed guest physical address.
type Memory struct {
	base uint64
	buf  []byte
}

// New maps size bytes of zeroed RAM presented to the guest at base.
func New(base uint64, size int) (*Memory, error) {
	buf, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("mmap %d bytes: %w", size, err)
	}

	return &Memory{base: base, buf: buf}, nil
}

func (m *Memory) Close() error {
	return unix.Munmap(m.buf)
}

func (m *Memory) Base() uint64 {
	return m.base
}

func (m *Memory) Size() uint64 {
	return uint64(len(m.buf))
}

// Bytes exposes the backing buffer, e.g. for writing a memory image to
// disk.
func (m *Memory) Bytes() []byte {
	return m.buf
}

func (m *Memory) slice(addr uint64, size int) ([]byte, error) {
	if addr < m.base {
		return nil, fmt.Errorf("%#x: %w", addr, ErrOutOfRange)
	}

	off := addr - m.base
	end := off + uint64(size)

	if end < off {
		return nil, fmt.Errorf("%#x+%#x: %w", addr, size, ErrRangeOverflow)
	}

	if end > uint64(len(m.buf)) {
		return nil, fmt.Errorf("%#x+%#x: %w", addr, size, ErrOutOfRange)
	}

	return m.buf[off:end], nil
}

// WriteGuest copies data into guest memory at physical address addr.
func (m *Memory) WriteGuest(data []byte, addr uint64) error {
	dst, err := m.slice(addr, len(data))
	if err != nil {
		return err
	}

	copy(dst, data)

	return nil
}

// ReadGuest fills data from guest memory at physical address addr.
func (m *Memory) ReadGuest(data []byte, addr uint64) error {
	src, err := m.slice(addr, len(data))
	if err != nil {
		return err
	}

	copy(data, src)

	return nil
}
