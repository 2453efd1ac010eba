package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

var (
	// policyLexer tokenizes PostgreSQL policy statements
	policyLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `--[^\r\n]*`},
		{Name: "MultilineComment", Pattern: `/\*[^*]*\*+([^/*][^*]*\*+)*/`},
		{Name: "QuotedIdent", Pattern: `"(""|[^"])*"`},
		{Name: "String", Pattern: `'(''|[^'])*'`},
		{Name: "Number", Pattern: `\d+(\.\d*)?`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_$]*`},
		{Name: "Punct", Pattern: `[(),.;]`},
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "Operator", Pattern: `[^\sa-zA-Z0-9_(),.;"']+`},
	})

	// parser is the participle parser instance for policy statements
	parser = participle.MustBuild[PolicyStmt](
		participle.Lexer(policyLexer),
		participle.Elide("Comment", "MultilineComment", "Whitespace"),
		participle.CaseInsensitive("Ident"),
		participle.UseLookahead(2),
	)

	nameParser = participle.MustBuild[QualifiedName](
		participle.Lexer(policyLexer),
		participle.Elide("Comment", "MultilineComment", "Whitespace"),
		participle.CaseInsensitive("Ident"),
	)

	commentToken = policyLexer.Symbols()["Comment"]
)

type (
	// PolicyStmt is either a DROP POLICY or a CREATE POLICY statement.
	PolicyStmt struct {
		Drop   *DropPolicyStmt   `parser:"@@"`
		Create *CreatePolicyStmt `parser:"| @@"`
	}

	// DropPolicyStmt represents DROP POLICY statements
	// Syntax: DROP POLICY [IF EXISTS] name ON table [CASCADE | RESTRICT];
	DropPolicyStmt struct {
		IfExists  bool          `parser:"'DROP' 'POLICY' @('IF' 'EXISTS')?"`
		Name      Identifier    `parser:"@@"`
		Table     QualifiedName `parser:"'ON' @@"`
		Behavior  string        `parser:"@('CASCADE' | 'RESTRICT')?"`
		Semicolon bool          `parser:"@';'?"`
	}

	// CreatePolicyStmt represents the header of CREATE POLICY statements
	// Syntax: CREATE POLICY name ON table [AS ...] [FOR ...] [TO ...] [USING (...)] [WITH CHECK (...)];
	CreatePolicyStmt struct {
		Name      Identifier    `parser:"'CREATE' 'POLICY' @@"`
		Table     QualifiedName `parser:"'ON' @@"`
		Clauses   []string      `parser:"@(~';')*"`
		Semicolon bool          `parser:"@';'?"`
	}

	// Identifier is a bare or double-quoted name.
	Identifier struct {
		Quoted *string `parser:"@QuotedIdent"`
		Bare   *string `parser:"| @Ident"`
	}

	// QualifiedName is a dot-separated, optionally schema-qualified name.
	QualifiedName struct {
		Parts []Identifier `parser:"@@ ('.' @@)*"`
	}
)

// ParsePolicy parses a single DROP POLICY or CREATE POLICY statement.
//
// Example:
//
//	stmt, err := parser.ParsePolicy(`create policy "p1" on t1 for select using (true);`)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Println(stmt.Name(), stmt.Table()) // p1 t1
func ParsePolicy(sql string) (*PolicyStmt, error) {
	stmt, err := parser.ParseString("", sql)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse policy statement")
	}

	return stmt, nil
}

// IsGuard reports whether the statement is a DROP POLICY IF EXISTS.
func (p *PolicyStmt) IsGuard() bool {
	return p.Drop != nil && p.Drop.IfExists
}

// IsCreate reports whether the statement is a CREATE POLICY.
func (p *PolicyStmt) IsCreate() bool {
	return p.Create != nil
}

// Name returns the normalized policy name.
func (p *PolicyStmt) Name() string {
	switch {
	case p.Drop != nil:
		return p.Drop.Name.Normalized()
	case p.Create != nil:
		return p.Create.Name.Normalized()
	default:
		return ""
	}
}

// Table returns the normalized table name.
func (p *PolicyStmt) Table() string {
	switch {
	case p.Drop != nil:
		return p.Drop.Table.Normalized()
	case p.Create != nil:
		return p.Create.Table.Normalized()
	default:
		return ""
	}
}

// Normalized returns the name as PostgreSQL resolves it: quoted names keep
// their case, bare names are lowercased.
func (i Identifier) Normalized() string {
	if i.Quoted != nil {
		return unquote(*i.Quoted)
	}
	if i.Bare != nil {
		return strings.ToLower(*i.Bare)
	}

	return ""
}

// String returns the name as written.
func (i Identifier) String() string {
	if i.Quoted != nil {
		return *i.Quoted
	}
	if i.Bare != nil {
		return *i.Bare
	}

	return ""
}

// Normalized joins the normalized parts with dots.
func (q QualifiedName) Normalized() string {
	parts := make([]string, len(q.Parts))
	for i, part := range q.Parts {
		parts[i] = part.Normalized()
	}

	return strings.Join(parts, ".")
}

// String returns the qualified name as written.
func (q QualifiedName) String() string {
	parts := make([]string, len(q.Parts))
	for i, part := range q.Parts {
		parts[i] = part.String()
	}

	return strings.Join(parts, ".")
}

// NormalizeName normalizes a name that may be quoted, schema-qualified, or both.
// Input that does not parse as a name is lowercased.
func NormalizeName(name string) string {
	q, err := nameParser.ParseString("", name)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(name))
	}

	return q.Normalized()
}

// CommentStart returns the offset of the first "--" comment in line, or -1.
// Dashes inside string literals and quoted identifiers do not count. A line
// that cannot be tokenized, such as one holding half of a multi-line string,
// reports no comment.
func CommentStart(line string) int {
	lex, err := policyLexer.LexString("", line)
	if err != nil {
		return -1
	}

	for {
		tok, err := lex.Next()
		if err != nil || tok.EOF() {
			return -1
		}

		if tok.Type == commentToken {
			return tok.Pos.Offset
		}
	}
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.ReplaceAll(s, `""`, `"`)
}
