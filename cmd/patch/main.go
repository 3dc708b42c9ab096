package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	successExitCode = 0
	errorExitCode   = 1
)

var rootCmd = &cobra.Command{
	Use:   "patch",
	Short: "Patch renders audio with DSP graphs",
	Long: `Patch wires DSP nodes into a graph and renders the result into a wav file.
Settings are read from YAML files and PATCH_* environment variables.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "YAML config files, applied in order")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(errorExitCode)
	}
	os.Exit(successExitCode)
}
