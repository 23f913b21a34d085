package recorder

import (
	"io"
	"strings"
	"testing"

	"bmxfeed/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, text, delimiter string) []string {
	t.Helper()
	r, err := NewReader(strings.NewReader(text), delimiter)
	require.NoError(t, err)

	var out []string
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

func TestReaderSingleCharDelimiter(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C"}, readAll(t, "A|B|C", "|"))
	assert.Equal(t, []string{"A", "B", "C"}, readAll(t, "A|B|C|", "|"))
}

func TestReaderTrailingPartialRecord(t *testing.T) {
	assert.Equal(t, []string{"one", "two", "tail"}, readAll(t, "one;;two;;tail", ";;"))
	assert.Empty(t, readAll(t, "", ";;"))
}

func TestReaderKeepsDelimiterPrefix(t *testing.T) {
	assert.Equal(t, []string{"a;b", "c"}, readAll(t, "a;b;;c", ";;"))
	assert.Equal(t, []string{"x", "y;"}, readAll(t, "x;;y;", ";;"))
	assert.Equal(t, []string{`{"price":1.5}`, "end"}, readAll(t, `{"price":1.5}<EOM>end`, "<EOM>"))
}

func TestReaderOverlappingDelimiter(t *testing.T) {
	// the third "a" breaks "aa" but still starts the real delimiter
	assert.Equal(t, []string{"xa", "y"}, readAll(t, "xaaaby", "aab"))
	assert.Equal(t, []string{"1", "ab2"}, readAll(t, "1ababab2", "abab"))
}

func TestReaderEmptyRecords(t *testing.T) {
	assert.Equal(t, []string{"A", "", "B"}, readAll(t, "A||B", "|"))
}

func TestReaderMultiByteDelimiter(t *testing.T) {
	assert.Equal(t, []string{"a§b", "c"}, readAll(t, "a§b§§c", "§§"))
	assert.Equal(t, []string{"价格", "数量"}, readAll(t, "价格\r\n数量", "\r\n"))
}

func TestReaderEmptyDelimiter(t *testing.T) {
	_, err := NewReader(strings.NewReader("x"), "")
	assert.ErrorIs(t, err, exception.ErrReplayNoDelimiter)
}

func TestPrefixTable(t *testing.T) {
	assert.Equal(t, []int{0, 1, 0}, prefixTable([]rune("aab")))
	assert.Equal(t, []int{0, 0, 1, 2}, prefixTable([]rune("abab")))
}
