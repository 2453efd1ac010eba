package consts

import "os"

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)

	// ConfigFile is the optional project configuration file
	ConfigFile = "pgtidy.yaml"

	// SumFile is the integrity file kept alongside the migrations
	SumFile = "pgtidy.sum"

	// DefaultMigrationsDir is where migration files live in a Supabase project
	DefaultMigrationsDir = "supabase/migrations"

	// DefaultReorganizeInput is the consolidated script read by reorganize
	DefaultReorganizeInput = "APLICAR_NO_DASHBOARD.sql"

	// DefaultReorganizeOutput is where reorganize writes the grouped script
	DefaultReorganizeOutput = "APLICAR_NO_DASHBOARD_FINAL.sql"

	// DefaultOrder names the category order preset used by reorganize
	DefaultOrder = "canonical"

	// DefaultTerminator ends a top-level SQL statement
	DefaultTerminator = ";"

	// DefaultBlockMarker delimits function bodies and anonymous blocks
	DefaultBlockMarker = "$$"
)

// DefaultPatchFiles returns the migrations that the patch pass fixes when the
// configuration does not name any. Paths are relative to the migrations dir.
func DefaultPatchFiles() []string {
	return []string{
		"002_create_rls_policies.sql",
		"003_create_invites_system.sql",
		"004_create_checklist_system.sql",
		"20251021000002_rls_more_tables.sql",
		"20251021000003_roles_active_role.sql",
		"20251022000003_fix_invite_permissions.sql",
		"20251024000002_fix_all_rls_policies_active_role.sql",
	}
}
