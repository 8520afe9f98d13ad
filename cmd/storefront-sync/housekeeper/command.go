package housekeeper

import (
	"github.com/spf13/cobra"

	"github.com/openkcm/storefront-sync/internal/business"
	"github.com/openkcm/storefront-sync/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"housekeeper",
		"Storefront Sync Housekeeping job",
		"Storefront Sync Housekeeping job purges persisted client state nobody has touched within the retention period",
		buildInfo,
		cmdutils.RunAsService,
		business.HousekeeperMain,
	)
}
