// Package parser provides a small participle-based grammar for PostgreSQL
// row-level security policy statements.
//
// Only the statement headers are modelled: enough to learn which policy a
// statement refers to and on which table. Everything after the table name of
// a CREATE POLICY is kept as raw tokens.
//
// Supported syntax:
//
//	DROP POLICY [IF EXISTS] name ON [schema.]table [CASCADE | RESTRICT];
//	CREATE POLICY name ON [schema.]table ...;
//
// Keywords are case-insensitive. Names may be bare or double-quoted; bare names
// are folded to lower case when normalized, as PostgreSQL does.
//
// Basic usage:
//
//	stmt, err := parser.ParsePolicy(`drop policy if exists "select_own" on public.users;`)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Println(stmt.IsGuard(), stmt.Name(), stmt.Table()) // true select_own public.users
package parser
