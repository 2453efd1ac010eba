// Package format renders an organized migration document as SQL text.
//
// Each non-empty section is introduced by a banner made of SQL line comments:
//
//	-- ============================================
//	-- 1. EXTENSIONS
//	-- ============================================
//
//	create extension if not exists "uuid-ossp";
//
// Sections are numbered by their position in the document, so the canonical
// order always yields the same numbers even when some sections are empty and
// therefore omitted.
//
// Usage:
//
//	// Object-oriented API with default options
//	formatter := format.New(format.Defaults)
//
//	var buf bytes.Buffer
//	err := formatter.Format(&buf, doc)
//
//	// Functional API
//	err := format.Format(&buf, format.Defaults, doc)
package format
