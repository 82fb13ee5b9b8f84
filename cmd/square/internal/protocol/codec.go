package protocol

import (
	"errors"
	"fmt"
	"strconv"
)

// Wire grammar:
//
//	Request ::= Number "\n"
//	Number  ::= [0-9]+
//	Reply   ::= (Number | "err") "\n"
const (
	LineEnd     = "\n"
	RejectToken = "err"

	// DefaultPort is where the server listens unless configured otherwise.
	DefaultPort = 4949
)

// MalformedRequestError reports a request line that is not a valid Number.
// It is recoverable: the connection answers "err" and keeps going.
type MalformedRequestError struct {
	Line string
}

func (e *MalformedRequestError) Error() string {
	return fmt.Sprintf("malformed request: %q", e.Line)
}

// IsMalformed reports whether err is a recoverable malformed request.
func IsMalformed(err error) bool {
	var malformed *MalformedRequestError
	return errors.As(err, &malformed) || errors.Is(err, ErrLineTooLong)
}

// ProtocolViolationError reports a reply line that is neither a Number nor "err".
type ProtocolViolationError struct {
	Line string
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("misformatted reply: %q", e.Line)
}

// Reply is the answer to exactly one request.
type Reply struct {
	Value    uint64
	Rejected bool
}

// Rejected is the reply sent for malformed requests.
var Rejected = Reply{Rejected: true}

// Decode parses one request line with its terminator already stripped.
// Only plain decimal digits are accepted and the value must fit in 32 bits,
// which keeps Square free of overflow.
func Decode(line string) (uint32, error) {
	// ParseUint with base 10 rejects signs, spaces and underscores.
	x, err := strconv.ParseUint(line, 10, 32)
	if err != nil {
		return 0, &MalformedRequestError{Line: line}
	}
	return uint32(x), nil
}

// Square computes the reply value. (2^32-1)^2 fits in a uint64.
func Square(x uint32) uint64 {
	return uint64(x) * uint64(x)
}

// Encode renders a reply as a single terminated line.
func Encode(r Reply) string {
	if r.Rejected {
		return RejectToken + LineEnd
	}
	return strconv.FormatUint(r.Value, 10) + LineEnd
}

// EncodeRequest renders a request as a single terminated line.
func EncodeRequest(x uint32) string {
	return strconv.FormatUint(uint64(x), 10) + LineEnd
}

// ParseReply decodes a reply line with its terminator already stripped.
func ParseReply(line string) (Reply, error) {
	if line == RejectToken {
		return Rejected, nil
	}
	v, err := strconv.ParseUint(line, 10, 64)
	if err != nil {
		return Reply{}, &ProtocolViolationError{Line: line}
	}
	return Reply{Value: v}, nil
}
