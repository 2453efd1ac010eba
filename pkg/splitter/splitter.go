package splitter

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgtidy/pkg/consts"
)

// Defaults splits on ';' and treats '$$' as the delimited-block marker.
var Defaults = Options{
	Terminator:  consts.DefaultTerminator,
	BlockMarker: consts.DefaultBlockMarker,
}

type (
	// BlockState is the position of the scanner relative to a delimited block.
	//
	// The state changes at most once per line: any line containing the block
	// marker flips it, regardless of how many markers the line holds.
	BlockState int

	// Options controls how a script is split.
	Options struct {
		// Terminator ends a statement when it closes a line outside a block
		Terminator string

		// BlockMarker opens and closes a delimited block
		BlockMarker string
	}

	// Statement is a syntactically complete, trimmed chunk of a script.
	Statement struct {
		// Text is the statement as written, possibly spanning several lines
		Text string

		// Line is the 1-based line number where the statement starts
		Line int
	}
)

const (
	// Outside means terminators end statements
	Outside BlockState = iota

	// Inside means terminators are literal text within a block body
	Inside
)

// Toggle returns the opposite state.
func (s BlockState) Toggle() BlockState {
	if s == Inside {
		return Outside
	}

	return Inside
}

func (s BlockState) String() string {
	if s == Inside {
		return "inside"
	}

	return "outside"
}

// FirstLine returns the statement's first line, trimmed and lowercased.
func (s Statement) FirstLine() string {
	line, _, _ := strings.Cut(s.Text, "\n")
	return strings.ToLower(strings.TrimSpace(line))
}

// FirstCodeLine is like FirstLine but skips leading "--" comment lines and
// blank lines. A statement made only of comments returns its first line.
func (s Statement) FirstCodeLine() string {
	for _, line := range strings.Split(s.Text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return strings.ToLower(line)
		}
	}

	return s.FirstLine()
}

// Lower returns the full statement text lowercased.
func (s Statement) Lower() string {
	return strings.ToLower(s.Text)
}

func (o Options) withDefaults() Options {
	if o.Terminator == "" {
		o.Terminator = Defaults.Terminator
	}
	if o.BlockMarker == "" {
		o.BlockMarker = Defaults.BlockMarker
	}

	return o
}

// Split divides script into statements in source order.
//
// A statement ends on a line whose trimmed text ends with opts.Terminator while
// the scanner is outside a delimited block. Whatever remains at the end of the
// input becomes a final statement, which covers both a trailing statement with
// no terminator and everything after an unterminated block.
//
// Example:
//
//	stmts := splitter.Split("create table a (id int);\ncomment on table a is 'x';", splitter.Defaults)
//	for _, stmt := range stmts {
//		fmt.Printf("%d: %s\n", stmt.Line, stmt.Text)
//	}
func Split(script string, opts Options) []Statement {
	opts = opts.withDefaults()

	var (
		stmts   []Statement
		current []string
		start   int
		state   = Outside
	)

	flush := func() {
		text := strings.TrimSpace(strings.Join(current, "\n"))
		if text != "" {
			stmts = append(stmts, Statement{Text: text, Line: start})
		}

		current = current[:0]
		start = 0
	}

	for i, line := range strings.Split(script, "\n") {
		if strings.Contains(line, opts.BlockMarker) {
			state = state.Toggle()
		}

		current = append(current, line)
		if start == 0 && strings.TrimSpace(line) != "" {
			start = i + 1
		}

		if state == Outside && strings.HasSuffix(strings.TrimSpace(line), opts.Terminator) {
			flush()
		}
	}

	flush()
	return stmts
}

// SplitReader reads all of r and splits it with Split.
func SplitReader(r io.Reader, opts Options) ([]Statement, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read SQL script")
	}

	return Split(string(content), opts), nil
}

// Join renders statements back into a script, one blank line apart.
func Join(stmts []Statement) string {
	parts := make([]string, len(stmts))
	for i, stmt := range stmts {
		parts[i] = stmt.Text
	}

	return strings.Join(parts, "\n\n")
}
