package splitter_test

import (
	"errors"
	"strings"
	"testing"

	. "github.com/pseudomuto/pgtidy/pkg/splitter"
	"github.com/stretchr/testify/require"
)

func texts(stmts []Statement) []string {
	out := make([]string, len(stmts))
	for i, stmt := range stmts {
		out[i] = stmt.Text
	}

	return out
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected []string
	}{
		{
			name:     "empty input",
			sql:      "",
			expected: []string{},
		},
		{
			name:     "whitespace only",
			sql:      "\n   \n\t\n",
			expected: []string{},
		},
		{
			name: "single line statements",
			sql:  "create table a (id int);\ncreate table b (id int);\n",
			expected: []string{
				"create table a (id int);",
				"create table b (id int);",
			},
		},
		{
			name: "multi-line statement",
			sql:  "create table users (\n  id uuid primary key,\n  name text\n);\n",
			expected: []string{
				"create table users (\n  id uuid primary key,\n  name text\n);",
			},
		},
		{
			name: "anonymous block is one statement",
			sql:  "do $$ begin\n  create type status as enum ('a','b');\nend $$;\n",
			expected: []string{
				"do $$ begin\n  create type status as enum ('a','b');\nend $$;",
			},
		},
		{
			name: "function body keeps inner terminators",
			sql: `create or replace function public.touch()
returns trigger as $$
begin
  new.updated_at = now();
  return new;
end;
$$ language plpgsql;
create trigger t before update on public.users for each row execute function public.touch();`,
			expected: []string{
				"create or replace function public.touch()\nreturns trigger as $$\nbegin\n  new.updated_at = now();\n  return new;\nend;\n$$ language plpgsql;",
				"create trigger t before update on public.users for each row execute function public.touch();",
			},
		},
		{
			name: "trailing statement without terminator",
			sql:  "create table a (id int);\nselect 1",
			expected: []string{
				"create table a (id int);",
				"select 1",
			},
		},
		{
			name: "unterminated block swallows the rest",
			sql:  "create table a (id int);\ndo $$ begin\n  perform 1;\nend;\ncreate table b (id int);\n",
			expected: []string{
				"create table a (id int);",
				"do $$ begin\n  perform 1;\nend;\ncreate table b (id int);",
			},
		},
		{
			name: "terminator must end the trimmed line",
			sql:  "insert into t values (';')\n  ;   \nselect 2;",
			expected: []string{
				"insert into t values (';')\n  ;",
				"select 2;",
			},
		},
		{
			name: "comments travel with the following statement",
			sql:  "-- users\ncreate table users (id int);",
			expected: []string{
				"-- users\ncreate table users (id int);",
			},
		},
		{
			name: "crlf line endings",
			sql:  "create table a (id int);\r\ncreate table b (id int);\r\n",
			expected: []string{
				"create table a (id int);",
				"create table b (id int);",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := Split(tt.sql, Defaults)
			require.Equal(t, tt.expected, texts(stmts))
		})
	}
}

func TestSplit_SingleLineBlockApproximation(t *testing.T) {
	// A line holding both markers flips the state only once, so the block stays
	// open and absorbs the next statement.
	sql := "do $$ begin perform 1; end $$;\ncreate table a (id int);\n"

	stmts := Split(sql, Defaults)
	require.Len(t, stmts, 1)
	require.Equal(t, strings.TrimSpace(sql), stmts[0].Text)
}

func TestSplit_LineNumbers(t *testing.T) {
	sql := "\n\ncreate table a (id int);\n\n-- note\ncreate table b (\n  id int\n);\n"

	stmts := Split(sql, Defaults)
	require.Len(t, stmts, 2)
	require.Equal(t, 3, stmts[0].Line)
	require.Equal(t, 5, stmts[1].Line)
}

func TestSplit_CustomOptions(t *testing.T) {
	sql := "create function f() returns int as $body$\nselect 1;\n$body$ language sql;\nselect 2;"

	t.Run("custom marker", func(t *testing.T) {
		stmts := Split(sql, Options{Terminator: ";", BlockMarker: "$body$"})
		require.Len(t, stmts, 2)
	})

	t.Run("zero value falls back to defaults", func(t *testing.T) {
		stmts := Split("select 1;\nselect 2;", Options{})
		require.Len(t, stmts, 2)
	})
}

func TestSplit_PreservesContent(t *testing.T) {
	sql := `create extension if not exists "uuid-ossp";

create table public.users (
  id uuid primary key default uuid_generate_v4()
);

create or replace function public.is_admin() returns boolean as $$
begin
  return true;
end;
$$ language plpgsql;

alter table public.users enable row level security;
`

	stmts := Split(sql, Defaults)
	require.Len(t, stmts, 4)

	// Rejoining reconstructs the input modulo whitespace.
	normalize := func(s string) string { return strings.Join(strings.Fields(s), " ") }
	require.Equal(t, normalize(sql), normalize(Join(stmts)))
}

func TestSplitReader(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		stmts, err := SplitReader(strings.NewReader("select 1;\nselect 2;"), Defaults)
		require.NoError(t, err)
		require.Len(t, stmts, 2)
	})

	t.Run("read error", func(t *testing.T) {
		stmts, err := SplitReader(failingReader{}, Defaults)
		require.Error(t, err)
		require.Nil(t, stmts)
		require.Contains(t, err.Error(), "failed to read SQL script")
	})
}

func TestStatement(t *testing.T) {
	stmt := Statement{Text: "  CREATE Table Users (\n  ID int\n);"}
	require.Equal(t, "create table users (", stmt.FirstLine())
	require.Equal(t, "  create table users (\n  id int\n);", stmt.Lower())

	t.Run("leading comments are part of the first line", func(t *testing.T) {
		stmt := Statement{Text: "-- Users\n\n-- more\nCREATE TABLE users (id int);"}
		require.Equal(t, "-- users", stmt.FirstLine())
		require.Equal(t, "create table users (id int);", stmt.FirstCodeLine())
	})

	t.Run("comment only", func(t *testing.T) {
		stmt := Statement{Text: "-- The End\n-- really"}
		require.Equal(t, "-- the end", stmt.FirstLine())
		require.Equal(t, "-- the end", stmt.FirstCodeLine())
	})
}

func TestBlockState(t *testing.T) {
	require.Equal(t, Inside, Outside.Toggle())
	require.Equal(t, Outside, Inside.Toggle())
	require.Equal(t, "outside", Outside.String())
	require.Equal(t, "inside", Inside.String())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}
