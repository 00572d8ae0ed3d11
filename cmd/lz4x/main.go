// Command lz4x is a command-line driver for the lz4x package: compress,
// decompress, verify, benchmark, and self-test, mirroring lz4ultra.c's own
// argv loop and option set rather than a flag-parsing library, since
// lz4x's combined short options (-B4, -Dfile) don't map onto flag.FlagSet.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go4x/lz4x"
	"github.com/go4x/lz4x/frame"
	"github.com/go4x/lz4x/internal/dictionary"
	mmapio "github.com/go4x/lz4x/internal/ioutil"
	"github.com/go4x/lz4x/selftest"
)

const version = "1.0.0"

type options struct {
	command          byte // 'z' compress, 'd' decompress, 'b' bench, 't' self-test
	inPath           string
	outPath          string
	dictPath         string
	verifyAfter      bool
	blockMaxCode     int
	blockCodeSet     bool
	independent      bool
	dependenceSet    bool
	legacy           bool
	raw              bool
	verbose          bool
	favorDecodeSpeed bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	for _, a := range args {
		if a == "--version" {
			fmt.Printf("lz4x v%s\n", version)
			return 0
		}
	}

	opt, err := parseArgs(args)
	if err != nil {
		printUsage(os.Args[0])
		fmt.Fprintln(os.Stderr, err)
		return 100
	}

	switch opt.command {
	case 'z':
		if err := doCompress(opt); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 100
		}
		if opt.verifyAfter {
			if err := doVerify(opt); err != nil {
				fmt.Fprintf(os.Stderr, "verification failed: %v\n", err)
				return 100
			}
		}
		return 0
	case 'd':
		if err := doDecompress(opt); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 100
		}
		return 0
	case 'b':
		if err := doBenchmark(opt); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 100
		}
		return 0
	case 't':
		if err := doSelftest(opt); err != nil {
			fmt.Fprintf(os.Stderr, "self-test failed: %v\n", err)
			return 100
		}
		return 0
	default:
		return 100
	}
}

func parseArgs(args []string) (options, error) {
	opt := options{command: 'z', blockMaxCode: 7, favorDecodeSpeed: false}
	commandDefined := false
	var positionals []string

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-d":
			if commandDefined {
				return opt, fmt.Errorf("command already specified")
			}
			opt.command, commandDefined = 'd', true
		case a == "-z":
			if commandDefined {
				return opt, fmt.Errorf("command already specified")
			}
			opt.command, commandDefined = 'z', true
		case a == "-c":
			if opt.verifyAfter {
				return opt, fmt.Errorf("-c already specified")
			}
			opt.verifyAfter = true
		case a == "-cbench" || a == "-dbench":
			if commandDefined {
				return opt, fmt.Errorf("command already specified")
			}
			opt.command, commandDefined = 'b', true
		case a == "-test":
			if commandDefined {
				return opt, fmt.Errorf("command already specified")
			}
			opt.command, commandDefined = 't', true
		case a == "-D":
			if opt.dictPath != "" || i+1 >= len(args) {
				return opt, fmt.Errorf("bad -D usage")
			}
			i++
			opt.dictPath = args[i]
		case len(a) > 2 && a[:2] == "-D":
			if opt.dictPath != "" {
				return opt, fmt.Errorf("dictionary already specified")
			}
			opt.dictPath = a[2:]
		case a == "-BD":
			if opt.dependenceSet {
				return opt, fmt.Errorf("-BD/-BI already specified")
			}
			opt.independent, opt.dependenceSet = false, true
		case a == "-BI":
			if opt.dependenceSet {
				return opt, fmt.Errorf("-BD/-BI already specified")
			}
			opt.independent, opt.dependenceSet = true, true
		case len(a) > 2 && a[:2] == "-B":
			if opt.blockCodeSet {
				return opt, fmt.Errorf("block size already specified")
			}
			code, err := strconv.Atoi(a[2:])
			if err != nil || code < 4 || code > 7 {
				return opt, fmt.Errorf("block size must be 4..7")
			}
			opt.blockMaxCode, opt.blockCodeSet = code, true
		case a == "-l":
			opt.legacy = true
		case a == "-v":
			if opt.verbose {
				return opt, fmt.Errorf("-v already specified")
			}
			opt.verbose = true
		case a == "-r":
			if opt.raw {
				return opt, fmt.Errorf("-r already specified")
			}
			opt.raw = true
		case a == "--favor-decSpeed":
			if opt.favorDecodeSpeed {
				return opt, fmt.Errorf("--favor-decSpeed already specified")
			}
			opt.favorDecodeSpeed = true
		default:
			positionals = append(positionals, a)
		}
	}

	if len(positionals) != 2 {
		return opt, fmt.Errorf("expected an input and an output filename")
	}
	opt.inPath, opt.outPath = positionals[0], positionals[1]
	return opt, nil
}

func printUsage(argv0 string) {
	fmt.Fprintf(os.Stderr, "lz4x v%s\n", version)
	fmt.Fprintf(os.Stderr, "usage: %s [-c] [-d] [-v] [-r] [-l] <infile> <outfile>\n", argv0)
	fmt.Fprintln(os.Stderr, "              -c: check resulting stream after compressing")
	fmt.Fprintln(os.Stderr, "              -d: decompress (default: compress)")
	fmt.Fprintln(os.Stderr, "         -cbench: benchmark in-memory compression")
	fmt.Fprintln(os.Stderr, "         -dbench: benchmark in-memory decompression")
	fmt.Fprintln(os.Stderr, "           -test: run the property-based self-test suite")
	fmt.Fprintln(os.Stderr, "          -B4..7: compress with 64, 256, 1024 or 4096 Kb blocks (defaults to -B7)")
	fmt.Fprintln(os.Stderr, "             -BD: use block-dependent compression (default)")
	fmt.Fprintln(os.Stderr, "             -BI: use block-independent compression")
	fmt.Fprintln(os.Stderr, "              -l: use legacy frame format")
	fmt.Fprintln(os.Stderr, "              -v: be verbose")
	fmt.Fprintln(os.Stderr, "              -r: raw block format (max. 4 Mb files)")
	fmt.Fprintln(os.Stderr, "--favor-decSpeed: trade some ratio for faster decompression")
	fmt.Fprintln(os.Stderr, "   -D <filename>: use dictionary file")
}

func buildFlags(opt options) lz4x.Flags {
	var flags lz4x.Flags
	if !opt.favorDecodeSpeed {
		flags |= lz4x.FlagFavorRatio
	}
	if opt.independent {
		flags |= lz4x.FlagIndependentBlocks
	}
	if opt.legacy {
		flags |= lz4x.FlagLegacyFrames
	}
	if opt.raw {
		flags |= lz4x.FlagRawBlock
	}
	return flags
}

func loadDictionary(opt options) ([]byte, error) {
	dict, err := dictionary.Load(opt.dictPath)
	if err != nil {
		return nil, err
	}
	if opt.verbose && len(dict) > 0 {
		fmt.Fprintf(os.Stderr, "using %d-byte dictionary from %s\n", len(dict), opt.dictPath)
	}
	return dict, nil
}

func doCompress(opt options) error {
	mf, err := mmapio.OpenMapped(opt.inPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", opt.inPath, err)
	}
	defer mf.Close()

	dict, err := loadDictionary(opt)
	if err != nil {
		return err
	}

	start := time.Now()
	out, err := os.Create(opt.outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", opt.outPath, err)
	}
	defer out.Close()

	flags := buildFlags(opt)
	var written int

	if opt.raw {
		compressed, err := lz4x.CompressBlockFlags(mf.Bytes(), nil, flags)
		if err != nil {
			return err
		}
		if _, err := out.Write(compressed); err != nil {
			return fmt.Errorf("writing %s: %w", opt.outPath, err)
		}
		written = len(compressed)
	} else {
		w := frame.NewWriterOptions(out, frame.WriterOptions{
			Flags:        flags,
			BlockMaxCode: opt.blockMaxCode,
			Dictionary:   dict,
		})
		if _, err := w.Write(mf.Bytes()); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
	}

	if opt.verbose {
		elapsed := time.Since(start)
		srcSize := len(mf.Bytes())
		info, statErr := os.Stat(opt.outPath)
		if statErr == nil {
			written = int(info.Size())
		}
		ratio := 0.0
		if srcSize > 0 {
			ratio = 100.0 * float64(written) / float64(srcSize)
		}
		fmt.Fprintf(os.Stderr, "%s: %d -> %d bytes (%.2f%%) in %s\n", opt.inPath, srcSize, written, ratio, elapsed)
	}
	return nil
}

func doDecompress(opt options) error {
	mf, err := mmapio.OpenMapped(opt.inPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", opt.inPath, err)
	}
	defer mf.Close()

	dict, err := loadDictionary(opt)
	if err != nil {
		return err
	}

	out, err := os.Create(opt.outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", opt.outPath, err)
	}
	defer out.Close()

	if opt.raw {
		decoded, err := lz4x.DecompressBlockFlags(mf.Bytes(), nil, lz4x.MaxRawBlockSize, lz4x.FlagRawBlock)
		if err != nil {
			return err
		}
		_, err = out.Write(decoded)
		return err
	}

	r := frame.NewReaderOptions(bytes.NewReader(mf.Bytes()), frame.ReaderOptions{Dictionary: dict})
	if _, err := io.Copy(out, r); err != nil {
		return err
	}
	return nil
}

func doVerify(opt options) error {
	compressed, err := mmapio.OpenMapped(opt.outPath)
	if err != nil {
		return err
	}
	defer compressed.Close()
	original, err := mmapio.OpenMapped(opt.inPath)
	if err != nil {
		return err
	}
	defer original.Close()

	dict, err := loadDictionary(opt)
	if err != nil {
		return err
	}

	var decoded []byte
	if opt.raw {
		decoded, err = lz4x.DecompressBlockFlags(compressed.Bytes(), nil, lz4x.MaxRawBlockSize, lz4x.FlagRawBlock)
	} else {
		r := frame.NewReaderOptions(bytes.NewReader(compressed.Bytes()), frame.ReaderOptions{Dictionary: dict})
		decoded, err = io.ReadAll(r)
	}
	if err != nil {
		return err
	}
	if string(decoded) != string(original.Bytes()) {
		return fmt.Errorf("decompressed output does not match the original")
	}
	return nil
}

func doBenchmark(opt options) error {
	mf, err := mmapio.OpenMapped(opt.inPath)
	if err != nil {
		return err
	}
	defer mf.Close()
	data := mf.Bytes()

	flags := buildFlags(opt)
	start := time.Now()
	var buf bytes.Buffer
	w := frame.NewWriterOptions(&buf, frame.WriterOptions{Flags: flags, BlockMaxCode: opt.blockMaxCode})
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	compressDur := time.Since(start)

	start = time.Now()
	r := frame.NewReader(bytes.NewReader(buf.Bytes()))
	decoded, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	decompressDur := time.Since(start)
	if string(decoded) != string(data) {
		return fmt.Errorf("benchmark roundtrip mismatch")
	}

	fmt.Printf("%s: %d bytes -> %d bytes\n", opt.inPath, len(data), buf.Len())
	fmt.Printf("  compress:   %s (%.2f MB/s)\n", compressDur, throughput(len(data), compressDur))
	fmt.Printf("  decompress: %s (%.2f MB/s)\n", decompressDur, throughput(len(data), decompressDur))
	return nil
}

func throughput(n int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / (1 << 20) / d.Seconds()
}

func doSelftest(opt options) error {
	cases := map[string][]byte{
		"empty":       nil,
		"single-byte": {0x2a},
		"all-zeros":   make([]byte, 1<<20),
		"repeating":   repeat("pattern-", 16384),
	}
	for name, data := range cases {
		for _, o := range selftest.Options() {
			if err := selftest.Roundtrip(data, o); err != nil {
				return fmt.Errorf("%s/%s: %w", name, o.Name, err)
			}
			if opt.verbose {
				fmt.Fprintf(os.Stderr, "ok  %s/%s\n", name, o.Name)
			}
		}
	}
	fmt.Println("self-test passed")
	return nil
}

func repeat(s string, n int) []byte {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return out
}
