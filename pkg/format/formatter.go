package format

import (
	"fmt"
	"io"
	"maps"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgtidy/pkg/classify"
	"github.com/pseudomuto/pgtidy/pkg/organize"
)

// Defaults are the options used by the reorganize command.
var Defaults = FormatterOptions{
	BannerWidth: 44,
	BannerRune:  '=',
	Numbered:    true,
	Titles:      DefaultTitles(),
}

type (
	// FormatterOptions controls how a document is rendered.
	FormatterOptions struct {
		// BannerWidth is the number of BannerRune characters in a banner rule
		BannerWidth int

		// BannerRune draws the banner rule
		BannerRune rune

		// Numbered prefixes titles with the section's 1-based position
		Numbered bool

		// Titles overrides section titles; missing categories use their name
		Titles map[classify.Category]string
	}

	// Formatter renders organized documents with configurable options.
	Formatter struct {
		options FormatterOptions
	}
)

// DefaultTitles returns the section titles used by Defaults.
func DefaultTitles() map[classify.Category]string {
	return map[classify.Category]string{
		classify.Extension:         "EXTENSIONS",
		classify.TypeOrEnum:        "TYPES AND ENUMS",
		classify.Table:             "TABLES AND RLS",
		classify.IndexOrConstraint: "INDEXES AND CONSTRAINTS",
		classify.Comment:           "COMMENTS",
		classify.Function:          "HELPER FUNCTIONS",
		classify.Policy:            "RLS POLICIES",
		classify.Trigger:           "TRIGGERS",
		classify.Grant:             "GRANTS AND PERMISSIONS",
		classify.Other:             "OTHER",
	}
}

// New creates a Formatter. Zero-valued banner settings fall back to Defaults.
func New(options FormatterOptions) *Formatter {
	if options.BannerWidth <= 0 {
		options.BannerWidth = Defaults.BannerWidth
	}
	if options.BannerRune == 0 {
		options.BannerRune = Defaults.BannerRune
	}

	options.Titles = maps.Clone(options.Titles)
	return &Formatter{options: options}
}

// Format writes doc to w. Empty sections produce no output.
func (f *Formatter) Format(w io.Writer, doc *organize.Document) error {
	if doc == nil {
		return nil
	}

	var lines []string
	for i, section := range doc.Sections {
		if len(section.Statements) == 0 {
			continue
		}

		lines = append(lines, f.banner(i+1, section.Category)...)
		for _, stmt := range section.Statements {
			lines = append(lines, stmt.Text, "")
		}
	}

	if len(lines) == 0 {
		return nil
	}

	if _, err := io.WriteString(w, strings.Join(lines, "\n")); err != nil {
		return errors.Wrap(err, "failed to write formatted document")
	}

	return nil
}

// Title returns the rendered title for the section at the 1-based position.
func (f *Formatter) Title(position int, cat classify.Category) string {
	title, ok := f.options.Titles[cat]
	if !ok || title == "" {
		title = strings.ToUpper(strings.ReplaceAll(string(cat), "_", " "))
	}

	if f.options.Numbered {
		return fmt.Sprintf("%d. %s", position, title)
	}

	return title
}

func (f *Formatter) banner(position int, cat classify.Category) []string {
	rule := "-- " + strings.Repeat(string(f.options.BannerRune), f.options.BannerWidth)

	return []string{
		rule,
		"-- " + f.Title(position, cat),
		rule,
		"",
	}
}

// Format renders doc with the given options (convenience function).
func Format(w io.Writer, options FormatterOptions, doc *organize.Document) error {
	return New(options).Format(w, doc)
}
