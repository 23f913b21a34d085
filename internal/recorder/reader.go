package recorder

import (
	"bufio"
	"io"
	"unicode/utf8"

	"bmxfeed/pkg/exception"
)

// Reader splits decoded text into records separated by a delimiter.
//
// Matching runs character by character. On a mismatch the cursor falls back
// along the delimiter's longest proper prefix that is also a suffix, so a
// partial delimiter is kept as record text and overlapping prefixes never
// hide a real delimiter. A plain reset to zero would miss "aab" in "xaaaby".
type Reader struct {
	r        *bufio.Reader
	delim    []rune
	fallback []int
	delimLen int
	buf      []byte
	eof      bool
}

// NewReader wraps UTF-8 text. An empty delimiter is rejected.
func NewReader(r io.Reader, delimiter string) (*Reader, error) {
	if len(delimiter) == 0 {
		return nil, exception.ErrReplayNoDelimiter
	}

	delim := []rune(delimiter)
	return &Reader{
		r:        bufio.NewReader(r),
		delim:    delim,
		fallback: prefixTable(delim),
		delimLen: len(delimiter),
	}, nil
}

// Next returns the next record. Records between adjacent delimiters are
// returned as empty strings. A non-empty tail without a closing delimiter is
// returned once; after that Next returns io.EOF.
func (r *Reader) Next() (string, error) {
	if r.eof {
		return "", io.EOF
	}

	r.buf = r.buf[:0]
	matched := 0
	for {
		c, size, err := r.r.ReadRune()
		if err != nil {
			if err != io.EOF {
				return "", err
			}
			r.eof = true
			if len(r.buf) == 0 {
				return "", io.EOF
			}
			return string(r.buf), nil
		}

		if c == utf8.RuneError && size == 1 {
			// keep undecodable bytes as they are
			_ = r.r.UnreadRune()
			b, _ := r.r.ReadByte()
			r.buf = append(r.buf, b)
		} else {
			r.buf = utf8.AppendRune(r.buf, c)
		}

		for matched > 0 && c != r.delim[matched] {
			matched = r.fallback[matched-1]
		}
		if c == r.delim[matched] {
			matched++
		}
		if matched == len(r.delim) {
			return string(r.buf[:len(r.buf)-r.delimLen]), nil
		}
	}
}

// prefixTable returns, for each i, the length of the longest proper prefix
// of delim[:i+1] that is also its suffix.
func prefixTable(delim []rune) []int {
	table := make([]int, len(delim))
	k := 0
	for i := 1; i < len(delim); i++ {
		for k > 0 && delim[i] != delim[k] {
			k = table[k-1]
		}
		if delim[i] == delim[k] {
			k++
		}
		table[i] = k
	}
	return table
}
