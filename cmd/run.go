package cmd

import (
	"github.com/encodeous/rayon/core"
	"github.com/encodeous/rayon/state"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run rayon",
	Long:  `This will run the rayon daemon on the current host, probing the neighbours configured in the central config.`,
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logPath, _ := cmd.Flags().GetString("log")
		core.Bootstrap(centralConfigPath, nodeConfigPath, logPath, verbose)
	},
	GroupID: "ry",
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().String("log", "", "Also write logs to the given file")
	runCmd.Flags().BoolVarP(&state.DBG_log_probe, "lprobe", "p", false, "Write probes to console")
	runCmd.Flags().BoolVarP(&state.DBG_log_cost, "lcost", "l", false, "Write cost adjustments to console")
	runCmd.Flags().BoolVarP(&state.DBG_json_logging, "json", "j", false, "Log as json instead of text")
	runCmd.Flags().BoolVarP(&state.DBG_debug, "debug", "d", false, "Expose debug http endpoints on :6060")
}
