package bitmap

import (
	"unsafe"

	"github.com/fastbit/ibis/endian"
)

// Marker word layout (one 64-bit word):
//
//	bit 63      fill bit: 0 = zero-fill run, 1 = one-fill run
//	bits 31-62  (32 bits) fill run length, in words
//	bits 0-30   (31 bits) literal word count immediately following the marker
const (
	fillBitShift   = 63
	runLenShift    = 31
	runLenMask     = (uint64(1) << 32) - 1
	literalCntMask = (uint64(1) << 31) - 1
	maxRun         = runLenMask
	maxLiteralRun  = literalCntMask
)

func makeMarker(fillOne bool, runLen uint64, literalCnt uint64) uint64 {
	var m uint64
	if fillOne {
		m |= 1 << fillBitShift
	}
	m |= (runLen & runLenMask) << runLenShift
	m |= literalCnt & literalCntMask

	return m
}

func parseMarker(m uint64) (fillOne bool, runLen uint64, literalCnt uint64) {
	fillOne = (m>>fillBitShift)&1 != 0
	runLen = (m >> runLenShift) & runLenMask
	literalCnt = m & literalCntMask

	return
}

// Bytes returns the size, in bytes, of the compressed representation,
// computing it (without mutating the mutable literal form) if not already
// cached.
func (b *Bitmap) Bytes() int {
	if b.comp == nil {
		b.Compress()
	}

	return len(b.comp) * 8
}

// Compress produces (and caches) the run-length-compressed word stream for
// the current contents. Safe to call repeatedly; a no-op if nothing changed
// since the last call.
func (b *Bitmap) Compress() []uint64 {
	if b.comp != nil {
		return b.comp
	}

	total := wordCount(b.size)
	if b.words == nil {
		// Lazily all-zero: a single marker covering the whole bitmap.
		if total == 0 {
			b.comp = []uint64{}
			return b.comp
		}
		b.comp = emitZeroRuns(total)

		return b.comp
	}

	out := make([]uint64, 0, total/4+2)
	i := 0
	for i < total {
		w := b.words[i]
		if w == 0 || w == ^uint64(0) {
			fillOne := w == ^uint64(0)
			j := i + 1
			for j < total && b.words[j] == w {
				j++
			}
			runLen := uint64(j - i)
			for runLen > 0 {
				chunk := runLen
				if chunk > maxRun {
					chunk = maxRun
				}
				out = append(out, makeMarker(fillOne, chunk, 0))
				runLen -= chunk
			}
			i = j

			continue
		}

		// Literal run: collect consecutive non-fill words.
		start := i
		for i < total && b.words[i] != 0 && b.words[i] != ^uint64(0) {
			i++
		}
		lits := b.words[start:i]
		for len(lits) > 0 {
			chunk := lits
			if uint64(len(chunk)) > maxLiteralRun {
				chunk = chunk[:maxLiteralRun]
			}
			out = append(out, makeMarker(false, 0, uint64(len(chunk))))
			out = append(out, chunk...)
			lits = lits[len(chunk):]
		}
	}
	b.comp = out

	return out
}

func emitZeroRuns(total int) []uint64 {
	out := make([]uint64, 0, total/int(maxRun)+1)
	remaining := uint64(total)
	for remaining > 0 {
		chunk := remaining
		if chunk > maxRun {
			chunk = maxRun
		}
		out = append(out, makeMarker(false, chunk, 0))
		remaining -= chunk
	}

	return out
}

// expand decodes a compressed word stream into exactly wordCount(size)
// literal words.
func expand(comp []uint64, size uint64) []uint64 {
	total := wordCount(size)
	out := make([]uint64, 0, total)
	i := 0
	for i < len(comp) {
		fillOne, runLen, litCnt := parseMarker(comp[i])
		i++
		fillWord := uint64(0)
		if fillOne {
			fillWord = ^uint64(0)
		}
		for k := uint64(0); k < runLen; k++ {
			out = append(out, fillWord)
		}
		for k := uint64(0); k < litCnt; k++ {
			out = append(out, comp[i])
			i++
		}
	}
	for len(out) < total {
		out = append(out, 0)
	}

	return out[:total]
}

// WriteTo serializes the compressed word stream using engine's byte order,
// appending to dst and returning the grown slice. This is the "serialize to
// a word stream" capability required of the bitmap primitive; the caller
// (the index persist path) records the resulting byte length in the offset
// table.
func (b *Bitmap) WriteTo(dst []byte, engine endian.EndianEngine) []byte {
	comp := b.Compress()
	for _, w := range comp {
		dst = engine.AppendUint64(dst, w)
	}

	return dst
}

// ReadBitmap decodes a bitmap of the given row count from a byte range
// previously produced by WriteTo. When engine matches the host's native
// byte order and data is 8-byte aligned, the compressed words are
// reinterpreted in place without copying (construction "from a contiguous
// byte slice without copy" per the spec's bitmap-primitive requirement);
// otherwise each word is decoded individually.
func ReadBitmap(data []byte, size uint64, engine endian.EndianEngine) *Bitmap {
	b := &Bitmap{size: size, cnt: -1}
	if len(data) == 0 {
		b.comp = []uint64{}
		b.cnt = 0

		return b
	}

	var comp []uint64
	if endian.CompareNativeEndian(engine) && uintptr(unsafe.Pointer(&data[0]))%8 == 0 && len(data)%8 == 0 {
		comp = unsafe.Slice((*uint64)(unsafe.Pointer(&data[0])), len(data)/8)
	} else {
		comp = make([]uint64, len(data)/8)
		for i := range comp {
			comp[i] = engine.Uint64(data[i*8 : i*8+8])
		}
	}
	b.comp = comp

	return b
}

// materializeFromComp lazily expands the cached compressed form into the
// literal word array the first time a mutator or Get needs random access.
// Called automatically by materialize when only comp is present.
func (b *Bitmap) materializeFromComp() {
	if b.words != nil || b.comp == nil {
		return
	}
	b.words = expand(b.comp, b.size)
}
