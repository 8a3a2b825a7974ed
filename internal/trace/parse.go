package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	commentPrefix = "#"
	maxHeaderLine = 4

	scannerInitialBufferSize = 64 * 1024
	scannerMaxLineSize       = 1024 * 1024
)

// ParseFile parses the trace at path. The trace is named after the file.
func ParseFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(filepath.Base(path), f)
}

// Parse reads a trace from r.
func Parse(name string, r io.Reader) (*Trace, error) {
	// Default to UTF-8 but honor a UTF-8 or UTF-16 byte order mark.
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	scanner := bufio.NewScanner(transform.NewReader(r, decoder))
	buf := make([]byte, 0, scannerInitialBufferSize)
	scanner.Buffer(buf, scannerMaxLineSize)

	t := &Trace{Name: name}
	header := []*int{&t.Header.HeapHint, &t.Header.IDs, &t.Header.Ops, &t.Header.Weight}
	headerLines := 0
	inHeader := true
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}
		fields := strings.Fields(line)

		if inHeader && len(fields) == 1 && headerLines < maxHeaderLine {
			if v, err := strconv.Atoi(fields[0]); err == nil {
				if v < 0 {
					return nil, &Error{Name: name, Line: lineNo, Message: fmt.Sprintf("negative header value %d", v)}
				}
				*header[headerLines] = v
				headerLines++
				continue
			}
		}
		inHeader = false

		op, err := parseOp(fields)
		if err != nil {
			return nil, &Error{Name: name, Line: lineNo, Message: err.Error()}
		}
		op.Line = lineNo
		t.Ops = append(t.Ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning trace %s: %w", name, err)
	}
	return t, nil
}

// parseOp decodes the fields of one operation line.
func parseOp(fields []string) (Op, error) {
	if len(fields[0]) != 1 {
		return Op{}, fmt.Errorf("unknown operation %q", fields[0])
	}
	kind := OpKind(fields[0][0])

	var want int
	switch kind {
	case OpFree:
		want = 2
	case OpAlloc, OpRealloc:
		want = 3
	case OpCalloc:
		want = 4
	default:
		return Op{}, fmt.Errorf("unknown operation %q", fields[0])
	}
	if len(fields) != want {
		return Op{}, fmt.Errorf("%s takes %d arguments, got %d", kind, want-1, len(fields)-1)
	}

	nums := make([]int, 0, 3)
	for _, f := range fields[1:] {
		v, err := strconv.Atoi(f)
		if err != nil {
			return Op{}, fmt.Errorf("bad number %q", f)
		}
		if v < 0 {
			return Op{}, fmt.Errorf("negative value %d", v)
		}
		nums = append(nums, v)
	}

	op := Op{Kind: kind, ID: nums[0]}
	switch kind {
	case OpAlloc, OpRealloc:
		op.Size = nums[1]
	case OpCalloc:
		op.Count, op.Size = nums[1], nums[2]
	}
	return op, nil
}
