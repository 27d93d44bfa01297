package cmd

import (
	"bytes"
	"os"

	"github.com/encodeous/rayon/state"
	"github.com/spf13/cobra"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Bundles the current central configuration, ready for distribution across nodes",
	Run: func(cmd *cobra.Command, args []string) {
		cfgFile, err := os.ReadFile(centralConfigPath)
		if err != nil {
			panic(err)
		}
		keyFile, err := os.ReadFile(centralKeyPath)
		if err != nil {
			panic(err)
		}
		key := &state.RyPrivateKey{}
		err = key.UnmarshalText(bytes.TrimSpace(keyFile))
		if err != nil {
			panic(err)
		}
		bundle, err := state.BundleConfig(string(cfgFile), *key)
		if err != nil {
			panic(err)
		}

		err = os.WriteFile("central.rybundle", []byte(bundle), 0700)
		if err != nil {
			panic(err)
		}
		println("Wrote bundle to central.rybundle")
	},
	GroupID: "ry",
}

func init() {
	rootCmd.AddCommand(bundleCmd)
}
