package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	stdunicode "unicode"

	"github.com/eif-viewer/backend/internal/models"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrFileNotFound is returned by LoadLogFile when the path does not resolve.
var ErrFileNotFound = errors.New("log file not found")

// ReadError wraps any failure to open or read a log file other than a missing path.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading log file %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// readBufferSize is the initial read buffer; longer lines grow past it.
const readBufferSize = 64 * 1024

// LoadLogFile reads path into one LogRecord per non-blank line.
func LoadLogFile(path string) ([]models.LogRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, &ReadError{Path: path, Err: err}
	}
	defer file.Close()

	records, err := LoadLog(file)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return records, nil
}

// LoadLog reads records from r. Invalid UTF-8 is replaced with U+FFFD and a
// leading byte order mark is dropped. Lines have no length limit.
//
// Positions count retained lines only; Line keeps the 1-based physical line.
func LoadLog(r io.Reader) ([]models.LogRecord, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := bufio.NewReaderSize(decoded, readBufferSize)

	records := make([]models.LogRecord, 0, 1024)
	lineNum := 0
	for {
		text, err := reader.ReadString('\n')
		if text != "" {
			lineNum++
			if line := strings.TrimRightFunc(text, stdunicode.IsSpace); line != "" {
				records = append(records, models.LogRecord{
					Raw:      line,
					Position: len(records),
					Line:     lineNum,
				})
			}
		}
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
