package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dudk/patch/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		b, err := yaml.Marshal(c)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	paths, err := cmd.Flags().GetStringSlice("config")
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(paths...)
}
