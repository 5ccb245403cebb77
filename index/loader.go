package index

import (
	"fmt"
	"math"
	"os"

	"github.com/fastbit/ibis/bitmap"
	"github.com/fastbit/ibis/compress"
	"github.com/fastbit/ibis/endian"
	"github.com/fastbit/ibis/errs"
	"github.com/fastbit/ibis/format"
	"github.com/fastbit/ibis/section"
)

// ReadMode selects how a persisted index's bitmap payloads are brought into
// memory (spec §4.B "Three load modes"). Semantics are identical across
// modes; only the timing and ownership of the backing bytes differ.
type ReadMode int

const (
	// FullRead copies the whole file into an owned buffer up front.
	FullRead ReadMode = iota
	// MemoryMap maps the file read-only; bitmaps are views into the map.
	MemoryMap
	// MetadataOnly reads only the header/bounds/offset table; each bitmap
	// is read from the file on first access.
	MetadataOnly
)

// Loader owns the backing bytes for a persisted index (an owned buffer, a
// memory map, or just an open file path) and answers per-bin activation
// requests (spec §4.B "Activation"). The backing buffer is reference
// counted implicitly by the lifetime of the Loader itself; releasing a
// Loader (Close) unmaps or forgets the buffer.
type Loader struct {
	mode        ReadMode
	path        string
	buf         []byte // FullRead: whole-file owned buffer
	mm          *mmapReader
	file        *os.File // MetadataOnly: kept open only during activation calls
	payload     int64    // byte offset where bitmap payloads begin
	compression format.CompressionType
}

// Loaded is the result of decoding a file's fixed-size metadata: header,
// bounds/minval/maxval arrays, and the offset table.
type Loaded struct {
	Header section.Header
	Bound  []float64
	MinVal []float64
	MaxVal []float64
	Off    section.Offsets
	Loader *Loader
}

// Load opens path in the requested mode and decodes its metadata (spec
// §4.B). File I/O errors abort construction and return a non-nil error;
// the caller must not attempt to use a partially-populated Loaded value.
func Load(path string, mode ReadMode, engine endian.EndianEngine) (*Loaded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", path, err)
	}

	var src []byte
	var mm *mmapReader
	switch mode {
	case FullRead:
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			_ = f.Close()
			return nil, fmt.Errorf("index: read %s: %w", path, rerr)
		}
		_ = f.Close()
		src = data
	case MemoryMap:
		m, merr := newMmapReader(f)
		if merr != nil {
			_ = f.Close()
			return nil, fmt.Errorf("index: mmap %s: %w", path, merr)
		}
		mm = m
		src = m.Slice(0, m.Size())
	case MetadataOnly:
		fi, serr := f.Stat()
		if serr != nil {
			_ = f.Close()
			return nil, fmt.Errorf("index: stat %s: %w", path, serr)
		}
		head := make([]byte, section.HeaderSize)
		if _, rerr := f.ReadAt(head, 0); rerr != nil {
			_ = f.Close()
			return nil, fmt.Errorf("index: read header %s: %w", path, rerr)
		}
		hdr, herr := section.ParseHeader(head)
		if herr != nil {
			_ = f.Close()
			return nil, herr
		}
		arraysLen := 8 * 3 * int64(hdr.NBitmaps)
		metaLen := int64(section.HeaderSize) + arraysLen + int64(hdr.NBitmaps+1)*int64(hdr.OffsetSize)
		if metaLen > fi.Size() {
			_ = f.Close()
			return nil, errs.ErrShortRead
		}
		meta := make([]byte, metaLen)
		if _, rerr := f.ReadAt(meta, 0); rerr != nil {
			_ = f.Close()
			return nil, fmt.Errorf("index: read metadata %s: %w", path, rerr)
		}

		return decodeMetadata(meta, hdr, engine, &Loader{mode: MetadataOnly, path: path, payload: metaLen, compression: hdr.Compression})
	default:
		_ = f.Close()
		return nil, fmt.Errorf("index: unknown read mode %d", mode)
	}

	if len(src) < section.HeaderSize {
		closeAll(f, mm)
		return nil, errs.ErrInvalidHeaderSize
	}
	hdr, err := section.ParseHeader(src)
	if err != nil {
		closeAll(f, mm)
		return nil, err
	}

	loader := &Loader{mode: mode, path: path, buf: src, mm: mm, compression: hdr.Compression}
	if mode == FullRead {
		_ = f.Close()
	}

	result, err := decodeMetadata(src, hdr, engine, loader)
	if err != nil {
		closeAll(f, mm)
		return nil, err
	}

	return result, nil
}

func closeAll(f *os.File, mm *mmapReader) {
	if mm != nil {
		_ = mm.Close()
		return
	}
	if f != nil {
		_ = f.Close()
	}
}

// decodeMetadata parses bounds/minval/maxval/offsets out of data (either the
// full file buffer or a metadata-only prefix) and records where the payload
// section starts. It materializes no bitmap: in every mode bitmaps are
// decoded on first activation, from the in-memory buffer for
// FullRead/MemoryMap and from the file for MetadataOnly.
func decodeMetadata(data []byte, hdr section.Header, engine endian.EndianEngine, loader *Loader) (*Loaded, error) {
	off := section.HeaderSize
	n := int(hdr.NBitmaps)

	readF64Array := func() ([]float64, error) {
		need := n * 8
		if off+need > len(data) {
			return nil, errs.ErrShortRead
		}
		arr := make([]float64, n)
		for i := 0; i < n; i++ {
			bits := engine.Uint64(data[off+i*8 : off+i*8+8])
			arr[i] = math.Float64frombits(bits)
		}
		off += need

		return arr, nil
	}

	bound, err := readF64Array()
	if err != nil {
		return nil, err
	}
	minval, err := readF64Array()
	if err != nil {
		return nil, err
	}
	maxval, err := readF64Array()
	if err != nil {
		return nil, err
	}

	offsets, err := section.ParseOffsets(data[off:], n+1, hdr.OffsetSize, engine)
	if err != nil {
		return nil, err
	}
	off += (n + 1) * int(hdr.OffsetSize)
	loader.payload = int64(off)

	return &Loaded{Header: hdr, Bound: bound, MinVal: minval, MaxVal: maxval, Off: offsets, Loader: loader}, nil
}

// Activate reads and decompresses bitmap i per spec §4.B "activate(i)".
func (l *Loader) Activate(i int, off section.Offsets, nrows uint64, engine endian.EndianEngine) (*bitmap.Bitmap, error) {
	lo := int64(off.At(i))
	n := int64(off.Size(i))

	var raw []byte
	switch l.mode {
	case FullRead, MemoryMap:
		start := l.payload + lo
		if start+n > int64(len(l.buf)) {
			return nil, errs.ErrOffsetOutOfRange
		}
		raw = l.buf[start : start+n]
	case MetadataOnly:
		f, err := os.Open(l.path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		buf := make([]byte, n)
		if _, err := f.ReadAt(buf, l.payload+lo); err != nil {
			return nil, err
		}
		raw = buf
	default:
		return nil, fmt.Errorf("index: activate: unknown mode")
	}

	plain, err := l.decompress(raw)
	if err != nil {
		return nil, err
	}

	return bitmap.ReadBitmap(plain, nrows, engine), nil
}

// decompress reverses the codec selected by l.compression for one bitmap's
// payload bytes.
func (l *Loader) decompress(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return raw, nil
	}
	codec, err := compress.GetCodec(l.compression)
	if err != nil {
		return nil, fmt.Errorf("index: activate: %w", err)
	}

	return codec.Decompress(raw)
}

// ActivateRange reads bins [lo, hi) in one I/O and splits the buffer into
// per-bin bitmaps (spec §4.B "activate(i,j)"). A decode failure confined to
// one bin's payload (e.g. corrupt compressed bytes) only blanks that bin, an
// empty bitmap substituted in its place; the rest of the batch still
// decodes normally (spec §7 propagation policy, §8 scenario 6). The shared
// error return is reserved for failures that prevent reading the batch's
// bytes at all.
func (l *Loader) ActivateRange(lo, hi int, off section.Offsets, nrows uint64, engine endian.EndianEngine) ([]*bitmap.Bitmap, error) {
	start := off.At(lo)
	end := off.At(hi)
	span := int64(end - start)

	var buf []byte
	switch l.mode {
	case FullRead, MemoryMap:
		base := l.payload + int64(start)
		if base+span > int64(len(l.buf)) {
			return nil, errs.ErrOffsetOutOfRange
		}
		buf = l.buf[base : base+span]
	case MetadataOnly:
		f, err := os.Open(l.path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		buf = make([]byte, span)
		if _, err := f.ReadAt(buf, l.payload+int64(start)); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("index: activate range: unknown mode")
	}

	out := make([]*bitmap.Bitmap, hi-lo)
	for i := lo; i < hi; i++ {
		s := off.At(i) - start
		e := off.At(i+1) - start
		plain, err := l.decompress(buf[s:e])
		if err != nil {
			Logger.Warn("bitmap activation failed, substituting empty bitmap",
				"bin", i, "error", err)
			out[i-lo] = bitmap.New(nrows)
			continue
		}
		out[i-lo] = bitmap.ReadBitmap(plain, nrows, engine)
	}

	return out, nil
}

// ReadTrailer returns the variant-specific trailer bytes written after the
// bitmap payload section (spec §4.B "[variant-specific trailer]"). off and n
// are the file's offset table and bitmap count, used to find where the
// payload section ends and the trailer begins.
func (l *Loader) ReadTrailer(off section.Offsets, n int) ([]byte, error) {
	start := l.payload + int64(off.At(n))

	switch l.mode {
	case FullRead, MemoryMap:
		if start > int64(len(l.buf)) {
			return nil, errs.ErrShortRead
		}

		return l.buf[start:], nil
	case MetadataOnly:
		f, err := os.Open(l.path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		fi, err := f.Stat()
		if err != nil {
			return nil, err
		}
		size := fi.Size() - start
		if size < 0 {
			return nil, errs.ErrShortRead
		}
		buf := make([]byte, size)
		if _, err := f.ReadAt(buf, start); err != nil {
			return nil, err
		}

		return buf, nil
	default:
		return nil, fmt.Errorf("index: read trailer: unknown mode")
	}
}

// Close releases the loader's backing bytes (unmapping if memory-mapped).
func (l *Loader) Close() error {
	if l.mm != nil {
		return l.mm.Close()
	}

	return nil
}
