package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/reqflat/batch"
)

var force bool

// initCmd: reqflat init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := initConfigurationFile(cfgFile, force)
		if err != nil {
			currentLogger().Error("Error initializing config file", zap.Error(err))
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created/updated: %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
}

func initConfigurationFile(configurationPath string, overwrite bool) (string, error) {
	if configurationPath == "" {
		configurationPath = batch.DefaultConfigPath
	}
	if _, err := os.Stat(configurationPath); err == nil && !overwrite {
		return configurationPath, fmt.Errorf("%s already exists, use --force to overwrite it", configurationPath)
	}
	return configurationPath, batch.WriteConfig(configurationPath, batch.DefaultConfig())
}
