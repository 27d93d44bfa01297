package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	nodeConfigPath    = "node.yaml"
	centralConfigPath = "central.yaml"
	centralKeyPath    = "central.key"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rayon",
	Short: "Rayon Link-State Liveness Daemon",
	Long: `Rayon keeps a link-state routing daemon honest about its neighbours.
It probes adjacent routers over named hello exchanges, tracks their liveness, and adapts link costs to observed latency and load.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "init",
		Title: "Initialize Rayon",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "ry",
		Title: "Rayon Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&nodeConfigPath, "node-config", "n", nodeConfigPath, "node-specific config")
	rootCmd.PersistentFlags().StringVarP(&centralConfigPath, "central-config", "c", centralConfigPath, "network-global config")
	rootCmd.PersistentFlags().StringVarP(&centralKeyPath, "central-key", "k", centralKeyPath, "network-global administration key")
}
