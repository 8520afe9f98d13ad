package migrate

import (
	"github.com/spf13/cobra"

	"github.com/openkcm/storefront-sync/internal/business"
	"github.com/openkcm/storefront-sync/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"migrate",
		"Storefront Sync migrations",
		"Applies the storage schema migrations to the configured database",
		buildInfo,
		cmdutils.RunAsJob,
		business.MigrateMain,
	)
}
