package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/Ducheved/sharpmote/color"
	"github.com/Ducheved/sharpmote/history"
	"github.com/Ducheved/sharpmote/icon"
	"github.com/Ducheved/sharpmote/key"
	"github.com/Ducheved/sharpmote/style"
	"github.com/Ducheved/sharpmote/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	historyCmd.Flags().Bool("clear", false, "Forget every remembered track")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently played tracks",
	Run: func(cmd *cobra.Command, args []string) {
		played := history.Open(where.History(), viper.GetInt(key.HistorySize))

		if lo.Must(cmd.Flags().GetBool("clear")) {
			handleErr(played.Clear())
			fmt.Printf("%s history cleared\n", style.Fg(color.Green)(icon.Get(icon.Success)))
			return
		}

		entries := played.Get()
		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(entries))
			return
		}

		if len(entries) == 0 {
			cmd.Println(style.Faint("nothing played yet"))
			return
		}

		for _, e := range entries {
			cmd.Printf("%s %s %s\n",
				style.Faint(e.PlayedAt.Local().Format("2006-01-02 15:04")),
				style.Bold(e.String()),
				style.Faint(e.App),
			)
		}
	},
}
