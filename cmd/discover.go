package cmd

import (
	"time"

	"github.com/Ducheved/sharpmote/color"
	"github.com/Ducheved/sharpmote/discovery"
	"github.com/Ducheved/sharpmote/icon"
	"github.com/Ducheved/sharpmote/style"
	"github.com/Ducheved/sharpmote/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().DurationP("timeout", "t", 3*time.Second, "How long to wait for answers")
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List servers advertised on the local network",
	Run: func(cmd *cobra.Command, args []string) {
		found, err := discovery.Browse(cmd.Context(), lo.Must(cmd.Flags().GetDuration("timeout")))
		handleErr(err)

		if len(found) == 0 {
			cmd.Println(style.Faint("no servers found"))
			return
		}

		cmd.Println(style.Title(util.Quantify(len(found), "server", "servers")))
		for _, inst := range found {
			cmd.Printf("%s %s %s %s\n",
				icon.Get(icon.Link),
				style.Fg(color.Purple)(inst.Name),
				inst.URL(),
				style.Faint("v"+lo.Ternary(inst.Version == "", "?", inst.Version)),
			)
		}
	},
}
