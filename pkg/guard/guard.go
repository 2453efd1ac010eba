// Package guard makes policy migrations safe to re-run.
//
// Patch inserts a "drop policy if exists" statement in front of every
// "create policy" that is not already preceded by one. Unwrap rewrites the
// older pg_policies existence-check blocks into the same guard-then-create
// form, and Fix runs both, also covering policies with bare names.
//
// All three are plain text passes: content outside the rewritten statements is
// left byte-for-byte intact, and applying a pass to its own output changes
// nothing.
package guard

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/pseudomuto/pgtidy/pkg/parser"
	"github.com/pseudomuto/pgtidy/pkg/splitter"
)

var (
	// Groups: 1 the create statement, 2 the policy name, 3 the table.
	createPolicy     = regexp.MustCompile(`(?i)(create\s+policy\s+("[^"]+")\s+on\s+([^\s;]+))`)
	bareCreatePolicy = regexp.MustCompile(`(?im)^[ \t]*(create\s+policy\s+([a-z_][a-z0-9_$]*)\s+on\s+([^\s;]+))`)

	dropPolicy = regexp.MustCompile(`(?i)drop\s+policy`)
)

type (
	// Guard identifies a policy, as written in the source.
	Guard struct {
		Policy string
		Table  string
	}

	// Result is the outcome of a pass.
	Result struct {
		// Content is the rewritten text
		Content string

		// Guards lists the guards inserted in front of unguarded create statements
		Guards []Guard

		// Unwrapped lists the existence-check blocks replaced by a guard
		Unwrapped []Guard
	}
)

// Statement renders the guard as a drop statement.
func (g Guard) Statement() string {
	return fmt.Sprintf("drop policy if exists %s on %s;", g.Policy, g.Table)
}

// Changed reports whether the pass modified the content.
func (r Result) Changed() bool {
	return len(r.Guards) > 0 || len(r.Unwrapped) > 0
}

// Patch inserts a guard before every unguarded create policy statement with
// a double-quoted name.
//
// A create is considered guarded when the statement immediately before it,
// ignoring whitespace and "--" comments, is a drop policy if exists for the
// same policy and table. Creates inside a "--" comment are left alone. The
// guard is placed on its own line with the create line's indentation, or on
// the same line when the create does not start its line.
//
// Example:
//
//	res := guard.Patch(`create policy "p1" on t1 for select using (true);`)
//	fmt.Println(res.Content)
//	// drop policy if exists "p1" on t1;
//	// create policy "p1" on t1 for select using (true);
func Patch(content string) Result {
	return patch(content, createPolicy)
}

type match struct {
	start int
	guard Guard
}

func patch(content string, patterns ...*regexp.Regexp) Result {
	var matches []match
	for _, re := range patterns {
		for _, loc := range re.FindAllStringSubmatchIndex(content, -1) {
			matches = append(matches, match{
				start: loc[2],
				guard: Guard{
					Policy: content[loc[4]:loc[5]],
					Table:  content[loc[6]:loc[7]],
				},
			})
		}
	}

	slices.SortFunc(matches, func(a, b match) int { return a.start - b.start })

	var (
		res  Result
		out  strings.Builder
		last int
	)

	for _, m := range matches {
		if inComment(content, m.start) || isGuarded(content[:m.start], m.guard) {
			continue
		}

		out.WriteString(content[last:m.start])
		out.WriteString(m.guard.Statement())
		out.WriteString(separator(content, m.start))
		last = m.start

		res.Guards = append(res.Guards, m.guard)
	}

	if len(res.Guards) == 0 {
		res.Content = content
		return res
	}

	out.WriteString(content[last:])
	res.Content = out.String()
	return res
}

// inComment reports whether offset sits after a "--" on its line.
func inComment(content string, offset int) bool {
	lineStart := strings.LastIndex(content[:offset], "\n") + 1
	return parser.CommentStart(content[lineStart:offset]) >= 0
}

// separator returns what goes between an inserted guard and the create
// statement starting at offset.
func separator(content string, offset int) string {
	lineStart := strings.LastIndex(content[:offset], "\n") + 1
	before := content[lineStart:offset]
	if strings.TrimSpace(before) == "" {
		return "\n" + before
	}

	return " "
}

// isGuarded reports whether the text preceding a create ends with a matching
// drop policy if exists statement.
func isGuarded(prefix string, g Guard) bool {
	prefix = trimTrailingComments(prefix)
	if !strings.HasSuffix(prefix, ";") {
		return false
	}

	candidate := prefix[:len(prefix)-1]
	candidate = candidate[strings.LastIndex(candidate, ";")+1:]

	locs := dropPolicy.FindAllStringIndex(candidate, -1)
	if len(locs) == 0 {
		return false
	}

	sql := candidate[locs[len(locs)-1][0]:] + ";"
	if sameText(sql, g.Statement()) {
		return true
	}

	stmt, err := parser.ParsePolicy(sql)
	if err != nil {
		return false
	}

	return stmt.IsGuard() &&
		stmt.Name() == parser.NormalizeName(g.Policy) &&
		stmt.Table() == parser.NormalizeName(g.Table)
}

// trimTrailingComments drops trailing whitespace, comment lines and the
// comment at the end of the last code line.
func trimTrailingComments(s string) string {
	for {
		s = strings.TrimRightFunc(s, unicode.IsSpace)

		nl := strings.LastIndex(s, "\n")
		line := s[nl+1:]

		at := parser.CommentStart(line)
		if at < 0 {
			return s
		}

		if code := strings.TrimRightFunc(line[:at], unicode.IsSpace); code != "" {
			return s[:nl+1] + code
		}

		if nl < 0 {
			return ""
		}

		s = s[:nl]
	}
}

func sameText(a, b string) bool {
	return strings.Join(strings.Fields(a), " ") == strings.Join(strings.Fields(b), " ")
}

// Unwrap replaces anonymous blocks of the form
//
//	do $$ begin
//	  if not exists (select 1 from pg_policies where policyname = 'p' ...) then
//	    create policy ...;
//	  end if;
//	end $$;
//
// with a drop policy if exists guard followed by the inner create statement.
// Leading comments of the block are kept. Blocks whose inner create does not
// parse are left untouched.
func Unwrap(content string, opts splitter.Options) Result {
	opts = withDefaults(opts)
	block := existenceBlock(opts.BlockMarker)

	res := Result{Content: content}

	var (
		out    strings.Builder
		last   int
		cursor int
	)

	for _, stmt := range splitter.Split(content, opts) {
		offset := strings.Index(content[cursor:], stmt.Text)
		if offset < 0 {
			continue
		}

		start := cursor + offset
		cursor = start + len(stmt.Text)

		m := block.FindStringSubmatch(stmt.Text)
		if m == nil {
			continue
		}

		create := strings.TrimSpace(m[2])
		parsed, err := parser.ParsePolicy(create)
		if err != nil || !parsed.IsCreate() {
			continue
		}

		g := Guard{
			Policy: parsed.Create.Name.String(),
			Table:  parsed.Create.Table.String(),
		}

		out.WriteString(content[last:start])
		out.WriteString(m[1])
		out.WriteString(g.Statement())
		out.WriteString("\n")
		out.WriteString(create)
		last = cursor

		res.Unwrapped = append(res.Unwrapped, g)
	}

	if len(res.Unwrapped) > 0 {
		out.WriteString(content[last:])
		res.Content = out.String()
	}

	return res
}

// Fix runs Unwrap and then guards every unguarded create policy. Unlike
// Patch, it also guards creates with bare names when the create starts its
// line.
func Fix(content string, opts splitter.Options) Result {
	unwrapped := Unwrap(content, opts)
	patched := patch(unwrapped.Content, createPolicy, bareCreatePolicy)
	patched.Unwrapped = unwrapped.Unwrapped

	return patched
}

func withDefaults(opts splitter.Options) splitter.Options {
	if opts.Terminator == "" {
		opts.Terminator = splitter.Defaults.Terminator
	}
	if opts.BlockMarker == "" {
		opts.BlockMarker = splitter.Defaults.BlockMarker
	}

	return opts
}

func existenceBlock(marker string) *regexp.Regexp {
	m := regexp.QuoteMeta(marker)

	return regexp.MustCompile(`(?is)^((?:[ \t]*--[^\n]*\n)*)\s*do\s+` + m +
		`\s*begin\s+if\s+not\s+exists\s*\(\s*select\s+1\s+from\s+pg_policies\s+where\s+` +
		`(?:polname|policyname)\s*=\s*'[^']+'.*?\)\s*then\s+` +
		`(create\s+policy\s.*?;)\s*end\s+if\s*;\s*end\s*` + m + `\s*;?$`)
}
