package files

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"raisetl/internal/config"
	"raisetl/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TextFile is an open text source decoded to UTF-8.
type TextFile struct {
	io.Reader

	// Path is the file that was opened.
	Path string
	// Encoding is the encoding actually used to decode the file.
	Encoding string

	file *os.File
}

// Close closes the underlying file.
func (t *TextFile) Close() error {
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}

// OpenText opens path for sequential reading.
//
// encoding is one of config.EncodingAuto, config.EncodingUTF8 or
// config.EncodingLatin1 (empty means auto). In auto mode a file with any invalid
// UTF-8 sequence is decoded as ISO-8859-1 instead; fallback is per file, never
// per line. Auto mode reads the whole file once before opening it, so callers
// that know the encoding should pass it.
func OpenText(path, encoding string, logger *slog.Logger) (*TextFile, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch encoding {
	case config.EncodingUTF8:
		return openUTF8(path)
	case config.EncodingLatin1:
		return openLatin1(path)
	case config.EncodingAuto, "":
	default:
		return nil, errors.NewConfigError(fmt.Sprintf("unsupported encoding %q", encoding), nil)
	}

	valid, err := isValidUTF8File(path)
	if err != nil {
		return nil, err
	}
	if valid {
		return openUTF8(path)
	}

	logger.Warn("File is not valid UTF-8, reading it as latin-1",
		slog.String("file", path))

	tf, err := openLatin1(path)
	if err != nil {
		return nil, errors.NewMissingInputError(path, fmt.Errorf("latin-1 fallback failed: %w", err))
	}
	return tf, nil
}

func openUTF8(path string) (*TextFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewMissingInputError(path, err)
	}
	return &TextFile{
		Reader:   skipBOM(bufio.NewReader(f)),
		Path:     path,
		Encoding: config.EncodingUTF8,
		file:     f,
	}, nil
}

func openLatin1(path string) (*TextFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewMissingInputError(path, err)
	}
	return &TextFile{
		Reader:   charmap.ISO8859_1.NewDecoder().Reader(bufio.NewReader(f)),
		Path:     path,
		Encoding: config.EncodingLatin1,
		file:     f,
	}, nil
}

// skipBOM drops a leading UTF-8 byte order mark.
func skipBOM(r *bufio.Reader) io.Reader {
	head, err := r.Peek(len(utf8BOM))
	if err == nil && bytes.Equal(head, utf8BOM) {
		r.Discard(len(utf8BOM))
	}
	return r
}

// isValidUTF8File streams the file and reports whether every byte sequence is
// valid UTF-8. A multi-byte rune split across chunk boundaries is carried over.
func isValidUTF8File(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, errors.NewMissingInputError(path, err)
	}
	defer f.Close()

	buf := make([]byte, 64*1024)
	carry := 0
	for {
		n, err := f.Read(buf[carry:])
		data := buf[:carry+n]

		if err == io.EOF {
			return utf8.Valid(data), nil
		}
		if err != nil {
			return false, errors.NewMissingInputError(path, err)
		}

		tail := incompleteTail(data)
		if !utf8.Valid(data[:len(data)-tail]) {
			return false, nil
		}
		carry = copy(buf, data[len(data)-tail:])
	}
}

// incompleteTail returns how many trailing bytes form the start of a rune that
// may continue in the next chunk.
func incompleteTail(data []byte) int {
	for i := 1; i < utf8.UTFMax && i <= len(data); i++ {
		b := data[len(data)-i]
		if b&0xC0 == 0x80 {
			continue
		}
		if b < 0x80 {
			return 0
		}
		if !utf8.FullRune(data[len(data)-i:]) {
			return i
		}
		return 0
	}
	return 0
}
