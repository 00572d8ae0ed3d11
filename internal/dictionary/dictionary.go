// Package dictionary loads a dictionary file's trailing bytes as prior
// context for the first block of a stream, the way lz4ultra_dictionary_load
// does: the file's last HISTORY_SIZE bytes (or the whole file, if smaller)
// become the history prefix; nothing about the dictionary is ever written
// to the compressed output, it only ever influences which matches are
// found.
package dictionary

import (
	"errors"
	"io"
	"os"
)

// HistorySize is the maximum number of trailing dictionary bytes kept; it
// matches frame.historySize, the window size a block's matches can reach
// back into.
const HistorySize = 65536

// ErrRead is returned when the dictionary file cannot be opened or read.
var ErrRead = errors.New("dictionary: failed to read dictionary file")

// Load reads path and returns its last min(size, HistorySize) bytes. An
// empty path is not an error: it returns a nil slice, meaning no
// dictionary.
func Load(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrRead, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Join(ErrRead, err)
	}

	size := info.Size()
	if size > HistorySize {
		if _, err := f.Seek(-HistorySize, io.SeekEnd); err != nil {
			return nil, errors.Join(ErrRead, err)
		}
		size = HistorySize
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, errors.Join(ErrRead, err)
	}
	return data, nil
}
