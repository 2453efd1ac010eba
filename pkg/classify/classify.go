// Package classify assigns each SQL statement to one section of a migration.
//
// Classification is a heuristic over the statement's first line and its full
// text, both trimmed and lowercased. No SQL grammar is involved. Rules are
// evaluated in a fixed priority order and the first match wins; statements that
// match nothing land in Other.
//
// Example:
//
//	stmt := splitter.Statement{Text: "alter table public.users enable row level security;"}
//	fmt.Println(classify.Classify(stmt)) // table
package classify

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgtidy/pkg/splitter"
)

// Category is the section of a migration a statement belongs to.
type Category string

const (
	Extension         Category = "extension"
	TypeOrEnum        Category = "type_or_enum"
	Table             Category = "table"
	IndexOrConstraint Category = "index_or_constraint"
	Comment           Category = "comment"
	Function          Category = "function"
	Policy            Category = "policy"
	Trigger           Category = "trigger"
	Grant             Category = "grant"
	Other             Category = "other"
)

const (
	rlsEnablingPhrase  = "enable row level security"
	anonymousBlockOpen = "do $"
)

// Categories returns every category in canonical order.
func Categories() []Category {
	return []Category{
		Extension,
		TypeOrEnum,
		Table,
		IndexOrConstraint,
		Comment,
		Function,
		Policy,
		Trigger,
		Grant,
		Other,
	}
}

// ParseCategory validates a category name, ignoring case and surrounding space.
func ParseCategory(name string) (Category, error) {
	cat := Category(strings.ToLower(strings.TrimSpace(name)))
	if !slices.Contains(Categories(), cat) {
		return "", errors.Errorf("unknown category: %q", name)
	}

	return cat, nil
}

func (c Category) String() string {
	return string(c)
}

type (
	// Subject is the normalized view of a statement that rules match against.
	Subject struct {
		// FirstLine is the first line, trimmed and lowercased
		FirstLine string

		// Text is the whole statement, lowercased
		Text string
	}

	// Rule maps statements satisfying Match to Category.
	Rule struct {
		Name     string
		Category Category
		Match    func(Subject) bool
	}

	// Classifier evaluates an ordered rule list, first match wins.
	Classifier struct {
		rules        []Rule
		skipComments bool
	}
)

// Rules is the default rule list in priority order.
var Rules = []Rule{
	{
		Name:     "create extension",
		Category: Extension,
		Match:    firstLineHasPrefix("create extension"),
	},
	{
		Name:     "create type",
		Category: TypeOrEnum,
		Match: func(s Subject) bool {
			return strings.HasPrefix(s.FirstLine, "create type") ||
				(opensAnonymousBlock(s) && strings.Contains(s.Text, "create type"))
		},
	},
	{
		Name:     "create table",
		Category: Table,
		Match:    firstLineHasPrefix("create table"),
	},
	{
		Name:     "create index",
		Category: IndexOrConstraint,
		Match:    firstLineHasPrefix("create index", "create unique index"),
	},
	{
		// Enabling RLS travels with its table; any other alter is a constraint.
		Name:     "alter table enable rls",
		Category: Table,
		Match: func(s Subject) bool {
			return strings.HasPrefix(s.FirstLine, "alter table") && strings.Contains(s.Text, rlsEnablingPhrase)
		},
	},
	{
		Name:     "alter table",
		Category: IndexOrConstraint,
		Match:    firstLineHasPrefix("alter table"),
	},
	{
		Name:     "comment on",
		Category: Comment,
		Match:    firstLineHasPrefix("comment on"),
	},
	{
		Name:     "create function",
		Category: Function,
		Match: func(s Subject) bool {
			return strings.Contains(s.FirstLine, "create or replace function") ||
				strings.Contains(s.FirstLine, "create function")
		},
	},
	{
		Name:     "policy",
		Category: Policy,
		Match: func(s Subject) bool {
			return strings.HasPrefix(s.FirstLine, "drop policy") ||
				strings.HasPrefix(s.FirstLine, "create policy") ||
				(opensAnonymousBlock(s) && strings.Contains(s.Text, "policy"))
		},
	},
	{
		Name:     "trigger",
		Category: Trigger,
		Match:    firstLineHasPrefix("drop trigger", "create trigger"),
	},
	{
		Name:     "grant",
		Category: Grant,
		Match:    firstLineHasPrefix("grant", "revoke"),
	},
}

// Default classifies with Rules.
var Default = New(Rules...)

// New returns a Classifier evaluating rules in the given order.
func New(rules ...Rule) *Classifier {
	return &Classifier{rules: slices.Clone(rules)}
}

// SkipComments returns a copy of c that matches against the first line that
// is not a "--" comment, so commented statements classify by their SQL.
func (c *Classifier) SkipComments() *Classifier {
	return &Classifier{rules: slices.Clone(c.rules), skipComments: true}
}

// Classify returns the category of the first matching rule, or Other.
func (c *Classifier) Classify(stmt splitter.Statement) Category {
	subject := NewSubject(stmt)
	if c.skipComments {
		subject.FirstLine = stmt.FirstCodeLine()
	}

	for _, rule := range c.rules {
		if rule.Match(subject) {
			return rule.Category
		}
	}

	return Other
}

// Rules returns a copy of the classifier's rules.
func (c *Classifier) Rules() []Rule {
	return slices.Clone(c.rules)
}

// Classify classifies stmt with the Default classifier.
func Classify(stmt splitter.Statement) Category {
	return Default.Classify(stmt)
}

// NewSubject normalizes stmt for rule matching.
func NewSubject(stmt splitter.Statement) Subject {
	return Subject{
		FirstLine: stmt.FirstLine(),
		Text:      strings.TrimSpace(stmt.Lower()),
	}
}

func firstLineHasPrefix(prefixes ...string) func(Subject) bool {
	return func(s Subject) bool {
		for _, prefix := range prefixes {
			if strings.HasPrefix(s.FirstLine, prefix) {
				return true
			}
		}

		return false
	}
}

func opensAnonymousBlock(s Subject) bool {
	return strings.HasPrefix(s.FirstLine, anonymousBlockOpen)
}
