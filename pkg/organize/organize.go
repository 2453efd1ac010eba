// Package organize groups classified statements into ordered document sections.
//
// The section order is configuration, not a constant: CanonicalOrder and
// LegacyOrder are the two orderings in use, and any permutation of the
// categories is accepted. Categories an order leaves out are appended in
// canonical order, so every input statement appears in the document exactly
// once and keeps its relative position within its section.
//
// Example:
//
//	stmts := splitter.Split(script, splitter.Defaults)
//	doc, err := organize.Organize(stmts, organize.CanonicalOrder, classify.Default)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, section := range doc.Sections {
//		fmt.Printf("%s: %d\n", section.Category, len(section.Statements))
//	}
package organize

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/pgtidy/pkg/classify"
	"github.com/pseudomuto/pgtidy/pkg/splitter"
)

type (
	// Order lists categories in the sequence their sections are emitted.
	Order []classify.Category

	// Section is one category's statements in source order.
	Section struct {
		Category   classify.Category
		Statements []splitter.Statement
	}

	// Document is a script regrouped into sections.
	Document struct {
		Sections []Section
	}
)

var (
	// CanonicalOrder puts every dependency before its dependents.
	CanonicalOrder = Order(classify.Categories())

	// LegacyOrder emits unclassified statements right after comments, ahead of
	// functions, matching the first generation of reorganized scripts. Those
	// scripts had one catch-all bucket between tables and functions; this
	// order splits that slot into index_or_constraint, comment, then other.
	LegacyOrder = Order{
		classify.Extension,
		classify.TypeOrEnum,
		classify.Table,
		classify.IndexOrConstraint,
		classify.Comment,
		classify.Other,
		classify.Function,
		classify.Policy,
		classify.Trigger,
		classify.Grant,
	}

	presets = map[string]Order{
		"canonical": CanonicalOrder,
		"legacy":    LegacyOrder,
	}
)

// OrderByName returns a preset order ("canonical" or "legacy").
func OrderByName(name string) (Order, error) {
	order, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.Errorf("unknown order preset: %q", name)
	}

	return slices.Clone(order), nil
}

// ParseOrder converts category names into an Order and validates it.
func ParseOrder(names []string) (Order, error) {
	order := make(Order, 0, len(names))
	for _, name := range names {
		cat, err := classify.ParseCategory(name)
		if err != nil {
			return nil, errors.Wrap(err, "invalid order")
		}

		order = append(order, cat)
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	return order, nil
}

// Validate rejects unknown and repeated categories.
func (o Order) Validate() error {
	known := classify.Categories()
	seen := make(map[classify.Category]bool, len(o))

	for _, cat := range o {
		if !slices.Contains(known, cat) {
			return errors.Errorf("invalid order: unknown category %q", cat)
		}
		if seen[cat] {
			return errors.Errorf("invalid order: category %q listed more than once", cat)
		}

		seen[cat] = true
	}

	return nil
}

// Complete returns the order with any missing categories appended in
// canonical order.
func (o Order) Complete() Order {
	out := slices.Clone(o)
	for _, cat := range classify.Categories() {
		if !slices.Contains(out, cat) {
			out = append(out, cat)
		}
	}

	return out
}

// Organize buckets stmts by category and lays the buckets out in order.
//
// Every category gets a section, including empty ones; renderers decide whether
// to skip them. A nil classifier means classify.Default.
func Organize(stmts []splitter.Statement, order Order, classifier *classify.Classifier) (*Document, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	if classifier == nil {
		classifier = classify.Default
	}

	buckets := make(map[classify.Category][]splitter.Statement)
	for _, stmt := range stmts {
		cat := classifier.Classify(stmt)
		buckets[cat] = append(buckets[cat], stmt)
	}

	doc := new(Document)
	for _, cat := range order.Complete() {
		doc.Sections = append(doc.Sections, Section{
			Category:   cat,
			Statements: buckets[cat],
		})
	}

	return doc, nil
}

// Section returns the section for cat, if present.
func (d *Document) Section(cat classify.Category) (Section, bool) {
	for _, section := range d.Sections {
		if section.Category == cat {
			return section, true
		}
	}

	return Section{}, false
}

// Count returns the number of statements filed under cat.
func (d *Document) Count(cat classify.Category) int {
	section, _ := d.Section(cat)
	return len(section.Statements)
}

// Total returns the number of statements across all sections.
func (d *Document) Total() int {
	total := 0
	for _, section := range d.Sections {
		total += len(section.Statements)
	}

	return total
}

// Statements flattens the document back into emission order.
func (d *Document) Statements() []splitter.Statement {
	var out []splitter.Statement
	for _, section := range d.Sections {
		out = append(out, section.Statements...)
	}

	return out
}
