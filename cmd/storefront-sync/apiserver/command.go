package apiserver

import (
	"github.com/spf13/cobra"

	"github.com/openkcm/storefront-sync/internal/business"
	"github.com/openkcm/storefront-sync/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"api-server",
		"Storefront Sync API server",
		"Storefront Sync API server hosts the public http API of the auth and cart stores",
		buildInfo,
		cmdutils.RunAsService,
		business.Main,
	)
}
