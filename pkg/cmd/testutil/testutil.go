package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/pgtidy/pkg/config"
	"github.com/pseudomuto/pgtidy/pkg/consts"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type (
	// ProjectFixture is an isolated project directory with a migrations folder
	// and a configuration pointing at it.
	ProjectFixture struct {
		Dir    string
		Config *config.Config
		t      *testing.T
	}

	// MigrationFile is a migration to write into the fixture.
	MigrationFile struct {
		Name string
		SQL  string
	}
)

// TestProject creates a temp directory with an empty migrations folder. The
// fixture's Config uses absolute paths so commands do not depend on the
// working directory.
func TestProject(t *testing.T) *ProjectFixture {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.MigrationsDir = filepath.Join(dir, consts.DefaultMigrationsDir)
	cfg.Reorganize.Input = filepath.Join(dir, consts.DefaultReorganizeInput)
	cfg.Reorganize.Output = filepath.Join(dir, consts.DefaultReorganizeOutput)

	require.NoError(t, os.MkdirAll(cfg.MigrationsDir, consts.ModeDir), "Failed to create migrations directory")

	return &ProjectFixture{Dir: dir, Config: cfg, t: t}
}

// WithMigrations writes migration files into the migrations directory.
func (p *ProjectFixture) WithMigrations(migrations []MigrationFile) *ProjectFixture {
	p.t.Helper()

	for _, migration := range migrations {
		path := filepath.Join(p.Config.MigrationsDir, migration.Name)
		err := os.WriteFile(path, []byte(migration.SQL), consts.ModeFile)
		require.NoError(p.t, err, "Failed to write migration file: %s", migration.Name)
	}

	return p
}

// WithFile writes a file relative to the project directory.
func (p *ProjectFixture) WithFile(name, content string) *ProjectFixture {
	p.t.Helper()

	path := filepath.Join(p.Dir, name)
	require.NoError(p.t, os.MkdirAll(filepath.Dir(path), consts.ModeDir))
	require.NoError(p.t, os.WriteFile(path, []byte(content), consts.ModeFile), "Failed to write file: %s", name)

	return p
}

// WithSumFile writes a sum file into the migrations directory.
func (p *ProjectFixture) WithSumFile(content string) *ProjectFixture {
	p.t.Helper()

	err := os.WriteFile(p.SumFilePath(), []byte(content), consts.ModeFile)
	require.NoError(p.t, err, "Failed to write sum file")

	return p
}

// WithConfigFile writes the fixture's Config to pgtidy.yaml in the project
// directory.
func (p *ProjectFixture) WithConfigFile() *ProjectFixture {
	p.t.Helper()

	out, err := yaml.Marshal(p.Config)
	require.NoError(p.t, err, "Failed to marshal config")

	return p.WithFile(consts.ConfigFile, string(out))
}

// MigrationPath returns the path of a migration file.
func (p *ProjectFixture) MigrationPath(name string) string {
	return filepath.Join(p.Config.MigrationsDir, name)
}

// SumFilePath returns the path of the sum file.
func (p *ProjectFixture) SumFilePath() string {
	return filepath.Join(p.Config.MigrationsDir, consts.SumFile)
}

// ReadFile returns the content of a file, resolved against the project
// directory when relative.
func (p *ProjectFixture) ReadFile(path string) string {
	p.t.Helper()

	if !filepath.IsAbs(path) {
		path = filepath.Join(p.Dir, path)
	}

	content, err := os.ReadFile(path)
	require.NoError(p.t, err, "Failed to read file: %s", path)
	return string(content)
}

// PolicyMigrations returns migrations with unguarded policies, an already
// guarded one, and an old-style existence-check block.
func PolicyMigrations() []MigrationFile {
	return []MigrationFile{
		{
			Name: "001_init.sql",
			SQL:  "create table public.notes (id uuid primary key, owner uuid);\n\nalter table public.notes enable row level security;\n",
		},
		{
			Name: "002_policies.sql",
			SQL: "create policy \"Notes are private\" on public.notes\n  for select using (auth.uid() = owner);\n\n" +
				"drop policy if exists \"Owners insert\" on public.notes;\ncreate policy \"Owners insert\" on public.notes\n  for insert with check (auth.uid() = owner);\n",
		},
		{
			Name: "003_wrapped.sql",
			SQL: "do $$\nbegin\n  if not exists (select 1 from pg_policies where policyname = 'Owners delete') then\n" +
				"    create policy \"Owners delete\" on public.notes for delete using (auth.uid() = owner);\n  end if;\nend $$;\n",
		},
	}
}
