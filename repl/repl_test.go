package repl

import (
	"bytes"
	"strings"
	"testing"

	"intbridge/marshal"
	"intbridge/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipedREPL(t *testing.T, input string) (*REPL, *bytes.Buffer) {
	t.Helper()
	table, err := platform.NewTable(platform.LP64)
	require.NoError(t, err)

	var out bytes.Buffer
	r, err := NewREPLWithConfig(REPLConfig{
		Converter: marshal.New(marshal.WithTable(table)),
		Input:     strings.NewReader(input),
		Output:    &out,
	})
	require.NoError(t, err)
	return r, &out
}

func TestPipedRun(t *testing.T) {
	r, out := newPipedREPL(t, strings.Join([]string{
		"# comment",
		"as long 12",
		"",
		"local x = intbridge.int(3)\\",
		"print(x)",
		":profile",
		":quit",
		"as int 1",
	}, "\n"))

	require.NoError(t, r.Run())
	assert.Equal(t, "(long) 12\n3\nlp64\n", out.String())
}

func TestPipedParseKeepsWhitespace(t *testing.T) {
	r, out := newPipedREPL(t, "parse 10   7 \n")

	require.NoError(t, r.Run())
	assert.Equal(t, "7 consumed=3 remainder=\" \"\n", out.String())
}

func TestPipedRunStopsOnError(t *testing.T) {
	r, out := newPipedREPL(t, "as int 4294967296\nas int 1\n")

	err := r.Run()
	require.Error(t, err)
	assert.Equal(t, "OverflowError: Python int too large to convert to C int\n", out.String())
}

func TestHelpListsCommands(t *testing.T) {
	r, out := newPipedREPL(t, ":help\n:nope\n")
	require.NoError(t, r.Run())

	for _, name := range r.Evaluator().Commands() {
		usage, _, _ := r.Evaluator().Usage(name)
		assert.Contains(t, out.String(), usage)
	}
	assert.Contains(t, out.String(), "warning: unknown command :nope")
}

func TestExecuteLine(t *testing.T) {
	r, _ := newPipedREPL(t, "")
	defer func() { _ = r.Close() }()

	got, err := r.ExecuteLine("as size 0")
	require.NoError(t, err)
	assert.Equal(t, "(size_t) 0", got)
}

func TestMultiLineBuffer(t *testing.T) {
	b := NewMultiLineBuffer()

	_, done := b.Feed("first \\")
	assert.False(t, done)
	assert.True(t, b.IsActive())
	_, done = b.Feed("second\\")
	assert.False(t, done)
	assert.Equal(t, 2, b.LineCount())

	content, done := b.Feed("third\r")
	assert.True(t, done)
	assert.Equal(t, "first \nsecond\nthird", content)
	assert.False(t, b.IsActive())

	b.Feed("dangling\\")
	b.Clear()
	content, done = b.Feed("alone")
	assert.True(t, done)
	assert.Equal(t, "alone", content)
}

func complete(c *Completer, line string) []string {
	candidates, _ := c.Do([]rune(line), len([]rune(line)))
	out := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, string(cand))
	}
	return out
}

func TestCompleter(t *testing.T) {
	c := NewCompleter(newEvaluator(t))

	assert.Equal(t, []string{"code "}, complete(c, "en"))
	assert.Equal(t, []string{"tes "}, complete(c, "by"))
	assert.Equal(t, []string{"elp "}, complete(c, ":h"))
	assert.Equal(t, []string{"ittle "}, complete(c, "bytes 5 2 l"))
	assert.Equal(t, []string{"son "}, complete(c, "decode j"))
	assert.Contains(t, complete(c, "as "), "size_t ")
	assert.Empty(t, complete(c, "as long "))

	_, length := c.Do([]rune("as ssi"), 6)
	assert.Equal(t, 3, length)
}
