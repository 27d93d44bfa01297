package cmd

import (
	"fmt"
	"net/netip"
	"os"

	"github.com/encodeous/rayon/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new [id]",
	Short: "Create a node configuration",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			_ = cmd.Usage()
			return
		}

		id := args[0]
		err := state.IdValidator(id)
		if err != nil {
			fmt.Printf("Invalid id: %s\n", id)
			os.Exit(-1)
		}

		bind, _ := cmd.Flags().GetString("bind")
		nodeCfg := state.LocalCfg{
			Key:  state.GenerateKey(),
			Id:   state.NodeId(id),
			Bind: netip.MustParseAddrPort(bind),
		}

		ncfg, err := yaml.Marshal(&nodeCfg)
		if err != nil {
			panic(err)
		}

		outPath := cmd.Flag("output").Value.String()
		err = os.WriteFile(outPath, ncfg, 0700)
		if err != nil {
			panic(err)
		}

		pub, _ := nodeCfg.Key.Pubkey().MarshalText()
		fmt.Printf("PublicKey=%s\n", pub)
	},
	GroupID: "init",
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringP("output", "o", "node.yaml", "node config output file path")
	newCmd.Flags().StringP("bind", "b", fmt.Sprintf("[::]:%d", state.DefaultPort), "transport bind address")
}
