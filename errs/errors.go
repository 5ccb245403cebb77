// Package errs collects the sentinel errors returned by the section, binning,
// combine, and index packages. Call sites wrap these with fmt.Errorf("...: %w")
// to add context; callers compare against the sentinels with errors.Is.
package errs

import "errors"

var (
	// ErrInvalidHeaderSize is returned when a header byte slice is not
	// exactly the expected fixed size.
	ErrInvalidHeaderSize = errors.New("ibis: invalid header size")

	// ErrCorruptHeader is returned when the magic bytes don't start with
	// "#IBIS".
	ErrCorruptHeader = errors.New("ibis: corrupt header")

	// ErrUnsupportedVariant is returned when the header's variant tag byte
	// doesn't match any known encoding scheme.
	ErrUnsupportedVariant = errors.New("ibis: unsupported variant")

	// ErrUnsupportedOffsetSize is returned when the header's offset-size
	// byte is neither 4 nor 8.
	ErrUnsupportedOffsetSize = errors.New("ibis: unsupported offset size")

	// ErrOffsetOutOfRange is returned when an offset table entry points
	// outside the file.
	ErrOffsetOutOfRange = errors.New("ibis: offset out of range")

	// ErrShortRead is returned when the file is truncated relative to what
	// the offset table promises.
	ErrShortRead = errors.New("ibis: short read")

	// ErrTypeMismatch is returned when a spec string requests an encoding
	// incompatible with the column's type.
	ErrTypeMismatch = errors.New("ibis: type mismatch")

	// ErrOutOfMemory is returned when a build operation cannot allocate the
	// bitmaps it needs.
	ErrOutOfMemory = errors.New("ibis: out of memory during build")

	// ErrIO wraps unexpected I/O failures during read or write.
	ErrIO = errors.New("ibis: I/O error")

	// ErrInvalidIndexEntrySize is returned when an index-entry byte slice
	// is shorter than the fixed entry size.
	ErrInvalidIndexEntrySize = errors.New("ibis: invalid index entry size")

	// ErrInvalidSpec is returned when an indexing spec string cannot be
	// parsed.
	ErrInvalidSpec = errors.New("ibis: invalid indexing spec")

	// ErrEmptyColumn is returned when a build is attempted over zero rows.
	ErrEmptyColumn = errors.New("ibis: empty column")

	// ErrNotBuilt is returned when an operation requires a materialized
	// index but the variant is still in the Unborn state.
	ErrNotBuilt = errors.New("ibis: index not built")

	// ErrClosed is returned when an operation is attempted on an index
	// whose backing buffer or file has already been released.
	ErrClosed = errors.New("ibis: index closed")

	// ErrUnsupportedCompression is returned when the header's compression
	// byte doesn't match any known codec.
	ErrUnsupportedCompression = errors.New("ibis: unsupported compression")
)
