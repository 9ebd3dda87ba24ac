// Package genome reads and writes flat parameter vectors: a header-less
// sequence of little-endian IEEE-754 float64 values.
package genome

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/spf13/afero"
)

// ValueSize is the number of bytes taken by one parameter.
const ValueSize = 8

var (
	// ErrFileUnreadable is returned when the parameter file cannot be opened
	// or read.
	ErrFileUnreadable = errors.New("parameter file unreadable")

	// ErrTruncatedFile is returned when the parameter file holds fewer values
	// than expected.
	ErrTruncatedFile = errors.New("parameter file truncated")
)

// TruncatedFileError reports how many parameters were wanted and how many
// complete values the file held.
type TruncatedFileError struct {
	Path     string
	Expected int
	Actual   int
}

func (e *TruncatedFileError) Error() string {
	return fmt.Sprintf("parameter file %s too short: %d wanted, %d read",
		e.Path, e.Expected, e.Actual)
}

// Is makes errors.Is(err, ErrTruncatedFile) hold.
func (e *TruncatedFileError) Is(target error) bool {
	return target == ErrTruncatedFile
}

// Load reads expectedCount parameters from the file at path. Values after the
// first expectedCount are ignored. No check is made that the values were
// produced for the topology the caller has in mind; only the count is
// checked.
func Load(fs afero.Fs, path string, expectedCount int) ([]float64, error) {
	if expectedCount < 0 {
		return nil, fmt.Errorf("negative parameter count %d", expectedCount)
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open %s: %v", ErrFileUnreadable, path, err)
	}
	defer f.Close()

	buf := make([]byte, expectedCount*ValueSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: cannot read %s: %v", ErrFileUnreadable, path, err)
	}

	read := n / ValueSize
	if read < expectedCount {
		return nil, &TruncatedFileError{
			Path:     path,
			Expected: expectedCount,
			Actual:   read,
		}
	}

	return decode(buf), nil
}

// Count returns the number of complete parameters stored in the file.
func Count(fs afero.Fs, path string) (int, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot stat %s: %v", ErrFileUnreadable, path, err)
	}

	return int(info.Size() / ValueSize), nil
}

// Save writes the parameters to the file at path, replacing any previous
// content.
func Save(fs afero.Fs, path string, params []float64) error {
	return afero.WriteFile(fs, path, encode(params), 0o644)
}

func decode(buf []byte) []float64 {
	params := make([]float64, len(buf)/ValueSize)
	for i := range params {
		bits := binary.LittleEndian.Uint64(buf[i*ValueSize:])
		params[i] = math.Float64frombits(bits)
	}

	return params
}

func encode(params []float64) []byte {
	buf := make([]byte, len(params)*ValueSize)
	for i, p := range params {
		binary.LittleEndian.PutUint64(buf[i*ValueSize:], math.Float64bits(p))
	}

	return buf
}
