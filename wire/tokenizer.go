package wire

import "errors"

// Message is one tokenized command line. Token 0 is the command symbol,
// the rest are command-specific arguments. Messages are transient: the
// dispatcher consumes them as soon as they are produced.
type Message []string

// Line capacity defaults, matching the reference controller sizing.
const (
	MaxLineLength = 80
	MaxTokens     = 10
)

// ErrOverflow is returned by Feed exactly once per oversized line, on the
// byte that terminates it. The line never reaches the dispatcher.
var ErrOverflow = errors.New("excessive input, line discarded")

// Tokenizer incrementally splits a byte stream into whitespace-delimited
// tokens. It consumes exactly one byte per Feed call and never blocks, so
// it is safe to drive from a polling loop with whatever bytes happen to be
// available.
type Tokenizer struct {
	maxLine   int
	maxTokens int

	buf      []byte
	bounds   [][2]int // start/end offsets of accepted tokens
	open     bool
	start    int
	overflow bool
}

// NewTokenizer returns a tokenizer with the default line and token limits.
func NewTokenizer() *Tokenizer {
	return NewTokenizerLimits(MaxLineLength, MaxTokens)
}

// NewTokenizerLimits returns a tokenizer with custom capacity bounds.
func NewTokenizerLimits(maxLine, maxTokens int) *Tokenizer {
	return &Tokenizer{
		maxLine:   maxLine,
		maxTokens: maxTokens,
		buf:       make([]byte, 0, maxLine),
		bounds:    make([][2]int, 0, maxTokens),
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// Feed consumes one input byte. On a line terminator it returns the
// completed message, or ErrOverflow if the line exceeded the token or
// length capacity, or (nil, nil) for an empty line. Mid-line it always
// returns (nil, nil). Once a line overflows, further bytes are still
// consumed, to stay synchronized with line boundaries, but are not stored.
func (t *Tokenizer) Feed(b byte) (Message, error) {
	if !isSpace(b) {
		if t.overflow {
			return nil, nil
		}
		if !t.open {
			if len(t.bounds) == t.maxTokens {
				t.overflow = true
				return nil, nil
			}
			t.open = true
			t.start = len(t.buf)
		}
		if len(t.buf) == t.maxLine {
			t.overflow = true
			t.open = false
			return nil, nil
		}
		t.buf = append(t.buf, b)
		return nil, nil
	}

	if t.open && !t.overflow {
		t.bounds = append(t.bounds, [2]int{t.start, len(t.buf)})
	}
	t.open = false

	if b != '\r' && b != '\n' {
		return nil, nil
	}

	var msg Message
	var err error
	if t.overflow {
		err = ErrOverflow
	} else if len(t.bounds) > 0 {
		msg = make(Message, len(t.bounds))
		for i, bb := range t.bounds {
			msg[i] = string(t.buf[bb[0]:bb[1]])
		}
	}
	t.reset()
	return msg, err
}

// reset clears all line state, including the overflow flag.
func (t *Tokenizer) reset() {
	t.buf = t.buf[:0]
	t.bounds = t.bounds[:0]
	t.open = false
	t.overflow = false
}
