package protocol

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// MaxLineLength bounds a single protocol line, terminator excluded.
const MaxLineLength = 4096

// ErrLineTooLong is returned by ReadLine for a line over MaxLineLength.
// The whole line has been consumed, so the stream stays in sync.
var ErrLineTooLong = errors.New("protocol: line too long")

// Reader reads protocol lines from a byte stream.
type Reader struct {
	br *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// ReadLine returns the next line without its terminator. A trailing "\r" is
// dropped too. An unterminated final line is still returned; once the stream
// is exhausted ReadLine returns io.EOF.
func (r *Reader) ReadLine() (string, error) {
	var buf []byte
	tooLong := false

	for {
		chunk, err := r.br.ReadSlice('\n')
		if !tooLong {
			buf = append(buf, chunk...)
			if len(buf) > MaxLineLength+2 {
				tooLong = true
				buf = nil
			}
		}

		switch {
		case err == nil:
			return finishLine(buf, tooLong)
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if !tooLong && len(buf) == 0 {
				return "", io.EOF
			}
			return finishLine(buf, tooLong)
		default:
			return "", err
		}
	}
}

func finishLine(buf []byte, tooLong bool) (string, error) {
	if tooLong {
		return "", ErrLineTooLong
	}
	line := strings.TrimSuffix(string(buf), LineEnd)
	line = strings.TrimSuffix(line, "\r")
	if len(line) > MaxLineLength {
		return "", ErrLineTooLong
	}
	return line, nil
}

// Writer writes protocol lines to a byte stream. Every write is followed by
// an explicit flush so no line is ever held back in the buffer.
type Writer struct {
	bw *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// WriteReply sends one reply line.
func (w *Writer) WriteReply(r Reply) error {
	return w.writeLine(Encode(r))
}

// WriteRequest sends one request line.
func (w *Writer) WriteRequest(x uint32) error {
	return w.writeLine(EncodeRequest(x))
}

func (w *Writer) writeLine(line string) error {
	if _, err := w.bw.WriteString(line); err != nil {
		return err
	}
	return w.bw.Flush()
}
