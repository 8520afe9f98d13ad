package configcmd

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/openkcm/storefront-sync/internal/cmdutils"
	"github.com/openkcm/storefront-sync/internal/config"
)

func Cmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  "Prints the effective configuration as YAML. Embedded secrets are masked.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutils.LoadConfig(buildInfo)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			return write(cmd.OutOrStdout(), cfg)
		},
	}
}

func write(w io.Writer, cfg *config.Config) error {
	out, err := yaml.Marshal(config.Masked(*cfg))
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
