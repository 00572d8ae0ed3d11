package frame

import (
	"errors"
	"io"

	"github.com/go4x/lz4x/internal/blockcodec"
	"github.com/go4x/lz4x/internal/verify"
)

const historySize = 65536

// WriterOptions configures a Writer.
type WriterOptions struct {
	// Flags selects blockcodec.FlagFavorRatio / FlagIndependentBlocks /
	// FlagLegacyFrames. FlagRawBlock is not meaningful here: use the root
	// package's CompressBlockFlags for frameless single-block output.
	Flags blockcodec.Flags
	// BlockMaxCode selects the block size (4=64KiB .. 7=4MiB). Ignored
	// under FlagLegacyFrames, which always uses 8 MiB blocks. Defaults to 7.
	BlockMaxCode int
	// Dictionary primes the first block's history window. The caller is
	// expected to have already trimmed it to at most 64 KiB (see
	// internal/dictionary.Load).
	Dictionary []byte
}

// Writer compresses written bytes into a framed LZ4 stream.
type Writer struct {
	w            io.Writer
	compressor   *blockcodec.Compressor
	blockMaxCode int
	blockMaxSize int
	legacy       bool
	independent  bool
	history      []byte
	pending      []byte
	wroteHeader  bool
	closed       bool
}

// NewWriter returns a Writer with default options (modern frame, dependent
// 4 MiB blocks, favor decode speed).
func NewWriter(w io.Writer) *Writer {
	return NewWriterOptions(w, WriterOptions{})
}

// NewWriterOptions returns a Writer configured per opts.
func NewWriterOptions(w io.Writer, opts WriterOptions) *Writer {
	blockMaxCode := opts.BlockMaxCode
	if blockMaxCode == 0 {
		blockMaxCode = 7
	}
	legacy := opts.Flags&blockcodec.FlagLegacyFrames != 0
	independent := legacy || opts.Flags&blockcodec.FlagIndependentBlocks != 0

	blockMaxSize := BlockMaxSize(blockMaxCode)
	if legacy {
		blockMaxSize = 1 << legacyBlockMaxBits
	}

	fw := &Writer{
		w:            w,
		compressor:   blockcodec.New(opts.Flags),
		blockMaxCode: blockMaxCode,
		blockMaxSize: blockMaxSize,
		legacy:       legacy,
		independent:  independent,
	}

	if len(opts.Dictionary) > 0 {
		d := opts.Dictionary
		if len(d) > historySize {
			d = d[len(d)-historySize:]
		}
		fw.history = append([]byte{}, d...)
	}

	return fw
}

// Write buffers p and flushes complete blocks to the underlying writer. The
// frame header is not written until the first block actually flushes (see
// Close), so that an input shorter than one block can still benefit from
// auto block-size reduction.
func (fw *Writer) Write(p []byte) (int, error) {
	if fw.closed {
		return 0, errors.New("frame: write to closed Writer")
	}

	written := len(p)
	fw.pending = append(fw.pending, p...)
	for len(fw.pending) >= fw.blockMaxSize {
		if err := fw.flushChunk(fw.pending[:fw.blockMaxSize]); err != nil {
			return 0, err
		}
		fw.pending = append([]byte{}, fw.pending[fw.blockMaxSize:]...)
	}
	return written, nil
}

func (fw *Writer) writeHeaderOnce() error {
	if fw.wroteHeader {
		return nil
	}
	var hdr []byte
	if fw.legacy {
		hdr = EncodeLegacyHeader(nil)
	} else {
		hdr = EncodeHeader(nil, fw.blockMaxCode, fw.independent)
	}
	if _, err := fw.w.Write(hdr); err != nil {
		return err
	}
	fw.wroteHeader = true
	return nil
}

func (fw *Writer) flushChunk(data []byte) error {
	if err := fw.writeHeaderOnce(); err != nil {
		return err
	}

	previousBlockSize := len(fw.history)
	window := make([]byte, 0, previousBlockSize+len(data))
	window = append(window, fw.history...)
	window = append(window, data...)

	out, shrinkErr := fw.compressor.ShrinkBlock(window, previousBlockSize, len(data), nil)
	uncompressed := errors.Is(shrinkErr, blockcodec.ErrUncompressible)
	if shrinkErr != nil && !uncompressed {
		return shrinkErr
	}

	var blockHdr []byte
	var err error
	if uncompressed {
		blockHdr, err = EncodeBlock(nil, len(data), true)
	} else {
		blockHdr, err = EncodeBlock(nil, len(out), false)
	}
	if err != nil {
		return err
	}
	if _, err := fw.w.Write(blockHdr); err != nil {
		return err
	}
	if uncompressed {
		if _, err := fw.w.Write(data); err != nil {
			return err
		}
	} else {
		if _, err := fw.w.Write(out); err != nil {
			return err
		}
	}

	if fw.independent {
		fw.history = nil
	} else {
		carry := len(data)
		if carry > historySize {
			carry = historySize
		}
		fw.history = append([]byte{}, data[len(data)-carry:]...)
	}
	return nil
}

// autoReduceBlockSize shrinks blockMaxCode to the smallest code (never below
// 4) whose block size still fits inputSize, the same guarded loop
// shrink_inmem.c runs before emitting a frame whose entire payload turned
// out to fit in less than one block. Only meaningful before the header has
// been written, on a stream whose data never reached a full block.
func (fw *Writer) autoReduceBlockSize(inputSize int) {
	for fw.blockMaxCode > 4 && BlockMaxSize(fw.blockMaxCode-1) >= inputSize {
		fw.blockMaxCode--
	}
	fw.blockMaxSize = BlockMaxSize(fw.blockMaxCode)
}

// Close flushes any buffered data and writes the frame footer.
func (fw *Writer) Close() error {
	if fw.closed {
		return nil
	}
	if !fw.wroteHeader && !fw.legacy && len(fw.pending) < fw.blockMaxSize {
		fw.autoReduceBlockSize(len(fw.pending))
	}
	if err := fw.writeHeaderOnce(); err != nil {
		return err
	}
	if len(fw.pending) > 0 {
		if err := fw.flushChunk(fw.pending); err != nil {
			return err
		}
		fw.pending = nil
	}
	fw.closed = true
	if fw.legacy {
		return nil
	}
	_, err := fw.w.Write(EncodeFooter(nil))
	return err
}

// ReaderOptions configures a Reader.
type ReaderOptions struct {
	// Dictionary primes the first block's history window; it must be the
	// same bytes the writer was given (see WriterOptions.Dictionary), or
	// any match referencing it will decode garbage. It applies to the
	// first block only, the same as on the Writer side, even when blocks
	// are otherwise independent.
	Dictionary []byte
}

// Reader decompresses a framed LZ4 stream.
type Reader struct {
	r            io.Reader
	blockMaxCode int
	legacy       bool
	independent  bool
	history      []byte
	pending      []byte
	pendingPos   int
	readHeader   bool
	eof          bool
}

// NewReader returns a Reader that decompresses from r. It auto-detects
// modern vs legacy framing from the magic number.
func NewReader(r io.Reader) *Reader {
	return NewReaderOptions(r, ReaderOptions{})
}

// NewReaderOptions returns a Reader configured per opts.
func NewReaderOptions(r io.Reader, opts ReaderOptions) *Reader {
	fr := &Reader{r: r}
	if len(opts.Dictionary) > 0 {
		d := opts.Dictionary
		if len(d) > historySize {
			d = d[len(d)-historySize:]
		}
		fr.history = append([]byte{}, d...)
	}
	return fr
}

func (fr *Reader) Read(p []byte) (int, error) {
	if fr.eof {
		return 0, io.EOF
	}
	if !fr.readHeader {
		if err := fr.readFrameHeader(); err != nil {
			return 0, err
		}
		fr.readHeader = true
	}

	for fr.pendingPos >= len(fr.pending) {
		n, err := fr.readBlock()
		if err != nil {
			fr.eof = true
			return 0, err
		}
		if n == 0 {
			fr.eof = true
			return 0, io.EOF
		}
	}

	n := copy(p, fr.pending[fr.pendingPos:])
	fr.pendingPos += n
	return n, nil
}

func (fr *Reader) readFrameHeader() error {
	var magic [4]byte
	if _, err := io.ReadFull(fr.r, magic[:]); err != nil {
		return err
	}
	switch {
	case magic[0] == 0x04 && magic[1] == 0x22 && magic[2] == 0x4D && magic[3] == 0x18:
		rest := make([]byte, headerSize-4)
		if _, err := io.ReadFull(fr.r, rest); err != nil {
			return err
		}
		full := append(magic[:], rest...)
		blockMaxCode, independentBlocks, _, err := DecodeHeader(full)
		if err != nil {
			return err
		}
		fr.blockMaxCode = blockMaxCode
		fr.independent = independentBlocks
	case magic[0] == 0x02 && magic[1] == 0x21 && magic[2] == 0x4C && magic[3] == 0x18:
		fr.legacy = true
		fr.independent = true
	default:
		return ErrFormat
	}
	return nil
}

func (fr *Reader) readBlock() (int, error) {
	var hdr [blockHeaderSize]byte
	n, err := io.ReadFull(fr.r, hdr[:])
	if err == io.EOF && n == 0 {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	size, uncompressed, _, err := DecodeBlock(hdr[:])
	if err != nil {
		return 0, err
	}
	if size == 0 {
		return 0, nil
	}

	blockData := make([]byte, size)
	if _, err := io.ReadFull(fr.r, blockData); err != nil {
		return 0, err
	}

	if uncompressed {
		fr.pending = blockData
		fr.pendingPos = 0
	} else {
		maxBlockSize := BlockMaxSize(fr.blockMaxCode)
		if fr.legacy {
			maxBlockSize = 1 << legacyBlockMaxBits
		}
		dst := make([]byte, len(fr.history)+maxBlockSize)
		copy(dst, fr.history)
		written, err := verify.DecompressBlock(blockData, dst, len(fr.history))
		if err != nil {
			return 0, err
		}
		fr.pending = dst[len(fr.history) : len(fr.history)+written]
		fr.pendingPos = 0
	}

	if fr.independent {
		fr.history = nil
	} else {
		carry := len(fr.pending)
		if carry > historySize {
			carry = historySize
		}
		fr.history = append([]byte{}, fr.pending[len(fr.pending)-carry:]...)
	}

	return len(fr.pending), nil
}
