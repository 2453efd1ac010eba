package parser_test

import (
	"testing"

	. "github.com/pseudomuto/pgtidy/pkg/parser"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy_Drop(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		guard   bool
		policy  string
		table   string
		cascade string
	}{
		{name: "guard", sql: `drop policy if exists "p1" on t1;`, guard: true, policy: "p1", table: "t1"},
		{name: "uppercase keywords", sql: `DROP POLICY IF EXISTS "Select Own" ON public.users;`, guard: true, policy: "Select Own", table: "public.users"},
		{name: "bare names fold case", sql: `drop policy IF EXISTS Select_Own on Public.Users`, guard: true, policy: "select_own", table: "public.users"},
		{name: "without if exists", sql: `drop policy "p1" on t1;`, policy: "p1", table: "t1"},
		{name: "quoted table", sql: `drop policy if exists "p1" on "public"."Orders";`, guard: true, policy: "p1", table: "public.Orders"},
		{name: "escaped quote", sql: `drop policy if exists "say ""hi""" on t1;`, guard: true, policy: `say "hi"`, table: "t1"},
		{name: "cascade", sql: `drop policy if exists p on t cascade;`, guard: true, policy: "p", table: "t", cascade: "cascade"},
		{name: "comments are ignored", sql: "drop policy if exists /* old */ \"p1\" -- trailing\n on t1;", guard: true, policy: "p1", table: "t1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := ParsePolicy(tt.sql)
			require.NoError(t, err)
			require.NotNil(t, stmt.Drop)
			require.False(t, stmt.IsCreate())
			require.Equal(t, tt.guard, stmt.IsGuard())
			require.Equal(t, tt.policy, stmt.Name())
			require.Equal(t, tt.table, stmt.Table())
			require.Equal(t, tt.cascade, stmt.Drop.Behavior)
		})
	}
}

func TestParsePolicy_Create(t *testing.T) {
	sql := `create policy "Users can read own rows" on public.users
  for select
  to authenticated
  using (auth.uid() = id);`

	stmt, err := ParsePolicy(sql)
	require.NoError(t, err)
	require.True(t, stmt.IsCreate())
	require.False(t, stmt.IsGuard())
	require.Equal(t, "Users can read own rows", stmt.Name())
	require.Equal(t, "public.users", stmt.Table())
	require.Equal(t, `"Users can read own rows"`, stmt.Create.Name.String())
	require.Equal(t, "public.users", stmt.Create.Table.String())
	require.True(t, stmt.Create.Semicolon)
	require.NotEmpty(t, stmt.Create.Clauses)
	require.Equal(t, "for", stmt.Create.Clauses[0])
}

func TestParsePolicy_CreateWithOperators(t *testing.T) {
	stmt, err := ParsePolicy(`CREATE POLICY p ON t FOR ALL USING (owner_id = auth.uid() AND status <> 'closed') WITH CHECK (true)`)
	require.NoError(t, err)
	require.True(t, stmt.IsCreate())
	require.Equal(t, "p", stmt.Name())
	require.Equal(t, "t", stmt.Table())
	require.False(t, stmt.Create.Semicolon)
}

func TestParsePolicy_Errors(t *testing.T) {
	for _, sql := range []string{
		"",
		"create table t (id int);",
		"drop policy if exists on t;",
		`create policy "p1";`,
	} {
		_, err := ParsePolicy(sql)
		require.Error(t, err, sql)
		require.Contains(t, err.Error(), "failed to parse policy statement")
	}
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "public.users", NormalizeName("Public.Users"))
	require.Equal(t, "public.Users", NormalizeName(`public."Users"`))
	require.Equal(t, "a.b", NormalizeName(`"a"."b"`))
	require.Equal(t, `x"y`, NormalizeName(`"x""y"`))
	require.Equal(t, "odd.name", NormalizeName(`"odd.name"`))
	require.Equal(t, "t1", NormalizeName("t1"))
	require.Equal(t, "public.users", NormalizeName(" public . users "))

	t.Run("falls back to lowercasing", func(t *testing.T) {
		require.Equal(t, "weird-name", NormalizeName("Weird-Name"))
		require.Equal(t, `"unterminated`, NormalizeName(`"Unterminated`))
		require.Equal(t, "", NormalizeName(""))
	})
}

func TestCommentStart(t *testing.T) {
	tests := []struct {
		line     string
		expected int
	}{
		{line: "-- only a comment", expected: 0},
		{line: `drop policy if exists "p" on t; -- guard`, expected: 32},
		{line: "select 1;", expected: -1},
		{line: "select '--not a comment';", expected: -1},
		{line: `create policy "a--b" on t;`, expected: -1},
		{line: "select 'a' -- note", expected: 11},
		{line: "  where name = 'unterminated", expected: -1},
		{line: "", expected: -1},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			require.Equal(t, tt.expected, CommentStart(tt.line))
		})
	}
}
