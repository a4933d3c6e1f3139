package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/laytext/internal/config"
)

func newConfigCommand(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the configuration",
	}

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write a commented configuration file",
		Long: `Write the defaults of a profile to a commented YAML file
(default laytext.yaml in the current directory).

Examples:
  laytext config init
  laytext config init --profile arabic ~/.config/laytext/laytext.yaml`,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			file := config.ConfigFileName + ".yaml"
			if len(args) == 1 {
				file = args[0]
			}
			profile, _ := cmd.Flags().GetString("profile")
			force, _ := cmd.Flags().GetBool("force")
			if err := config.GenerateDefaultConfigFile(file, profile, force); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (profile %s)\n", file, profile)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if used := config.NewLoaderWithViper(a.v).GetConfigFileUsed(); used != "" {
				_, _ = fmt.Fprintf(out, "# loaded from %s\n", used)
			}
			return config.WriteYAML(out, *a.cfg, false)
		},
	}

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}
