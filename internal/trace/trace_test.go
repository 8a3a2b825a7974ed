package trace

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sampleTrace = `# short sample
20000
3
6
1
a 0 512
a 1 128
r 0 640
c 2 4 24
f 1
f 0
`

func TestParse(t *testing.T) {
	tr, err := Parse("sample", strings.NewReader(sampleTrace))
	require.NoError(t, err)

	assert.Equal(t, Header{HeapHint: 20000, IDs: 3, Ops: 6, Weight: 1}, tr.Header)
	assert.Equal(t, []Op{
		{Kind: OpAlloc, ID: 0, Size: 512, Line: 6},
		{Kind: OpAlloc, ID: 1, Size: 128, Line: 7},
		{Kind: OpRealloc, ID: 0, Size: 640, Line: 8},
		{Kind: OpCalloc, ID: 2, Count: 4, Size: 24, Line: 9},
		{Kind: OpFree, ID: 1, Line: 10},
		{Kind: OpFree, ID: 0, Line: 11},
	}, tr.Ops)
	assert.Equal(t, 3, tr.NumIDs())
	assert.Equal(t, 96, tr.Ops[3].Bytes())
	require.NoError(t, tr.Check())
}

func TestParse_NoHeader(t *testing.T) {
	tr, err := Parse("bare", strings.NewReader("a 0 8\n\nf 0\n"))
	require.NoError(t, err)
	assert.Equal(t, Header{}, tr.Header)
	assert.Len(t, tr.Ops, 2)
}

func TestParse_ByteOrderMarks(t *testing.T) {
	tests := []struct {
		name string
		enc  transform.Transformer
	}{
		{"utf8 bom", unicode.UTF8BOM.NewEncoder()},
		{"utf16 le bom", unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()},
		{"utf16 be bom", unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, _, err := transform.String(tt.enc, sampleTrace)
			require.NoError(t, err)

			tr, err := Parse(tt.name, strings.NewReader(encoded))
			require.NoError(t, err)
			assert.Len(t, tr.Ops, 6)
			assert.Equal(t, 20000, tr.Header.HeapHint)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
		msg   string
	}{
		{"unknown op", "x 1 2\n", 1, "unknown operation"},
		{"long op", "alloc 1 2\n", 1, "unknown operation"},
		{"missing size", "a 1\n", 1, "alloc takes 2 arguments"},
		{"extra field", "f 1 2\n", 1, "free takes 1 arguments"},
		{"bad number", "a 0 12x\n", 1, "bad number"},
		{"negative", "a 0 -5\n", 1, "negative value"},
		{"after header", "10\n\na 0 8\n7\n", 4, "unknown operation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad", strings.NewReader(tt.input))
			require.Error(t, err)
			var terr *Error
			require.True(t, errors.As(err, &terr))
			assert.Equal(t, tt.line, terr.Line)
			assert.Contains(t, terr.Message, tt.msg)
			assert.Contains(t, err.Error(), "bad:")
		})
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"double alloc", "a 0 8\na 0 8\n", "alloc of live id 0"},
		{"free unknown", "f 3\n", "free of unknown id 3"},
		{"double free", "a 0 8\nf 0\nf 0\n", "free of unknown id 0"},
		{"realloc unknown", "r 1 8\n", "realloc of unknown id 1"},
		{"calloc live", "a 0 8\nc 0 2 2\n", "calloc of live id 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Parse("chk", strings.NewReader(tt.input))
			require.NoError(t, err)
			err = tr.Check()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	tr, err := Parse("sample", strings.NewReader(sampleTrace))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tr.Write(&buf))

	again, err := Parse("sample", &buf)
	require.NoError(t, err)
	assert.Equal(t, tr.Header, again.Header)
	require.Len(t, again.Ops, len(tr.Ops))
	for i := range tr.Ops {
		want, got := tr.Ops[i], again.Ops[i]
		want.Line, got.Line = 0, 0
		assert.Equal(t, want, got)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.rep")
	require.NoError(t, os.WriteFile(path, []byte(sampleTrace), 0644))

	tr, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "short.rep", tr.Name)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.rep"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestGenerate(t *testing.T) {
	opts := GenOptions{Ops: 500, MaxSize: 4096, Seed: 7}
	tr := Generate(opts)

	require.NoError(t, tr.Check())
	assert.Len(t, tr.Ops, 500)
	assert.Equal(t, 500, tr.Header.Ops)
	assert.Equal(t, tr.NumIDs(), tr.Header.IDs)
	assert.Positive(t, tr.Header.HeapHint)

	live := make(map[int]bool)
	for _, op := range tr.Ops {
		assert.LessOrEqual(t, op.Bytes(), 4096)
		switch op.Kind {
		case OpAlloc, OpCalloc:
			live[op.ID] = true
		case OpFree:
			delete(live, op.ID)
		}
	}
	assert.Empty(t, live, "every id is freed")

	assert.Equal(t, tr.Ops, Generate(opts).Ops, "same seed, same trace")
	assert.NotEqual(t, tr.Ops, Generate(GenOptions{Ops: 500, MaxSize: 4096, Seed: 8}).Ops)
}

func TestGenerate_Defaults(t *testing.T) {
	tr := Generate(GenOptions{})
	assert.Equal(t, "generated", tr.Name)
	assert.Len(t, tr.Ops, defaultGenOps)
	require.NoError(t, tr.Check())
}
