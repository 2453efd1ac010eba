// Package splitter breaks a flat SQL script into top-level statements.
//
// The splitter is line oriented. It tracks whether the scan is inside a
// delimited block (a function body or anonymous block bounded by a marker such
// as $$) and only ends a statement on a line whose trimmed text ends with the
// terminator while outside any block:
//
//	stmts := splitter.Split(`
//	create extension if not exists "uuid-ossp";
//	do $$ begin
//	  create type status as enum ('a', 'b');
//	end $$;
//	`, splitter.Defaults)
//
//	fmt.Println(len(stmts)) // 2
//
// Splitting never fails. Input with an unbalanced block marker folds the rest of
// the file into one trailing statement.
//
// A line toggles the block state when it contains the marker, no matter how
// many times the marker appears on it. A single-line block such as
// "do $$ begin null; end $$;" therefore opens a block and the following lines
// are absorbed until the next marker. Block bodies are multi-line in practice
// and this approximation is intentional.
package splitter
