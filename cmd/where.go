package cmd

import (
	"os"

	"github.com/Ducheved/sharpmote/color"
	"github.com/Ducheved/sharpmote/style"
	"github.com/Ducheved/sharpmote/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// whereTarget is a resolvable path and the flag that selects it.
type whereTarget struct {
	name    string
	resolve func() string
	flag    string
	short   mo.Option[string]
	hidden  bool
}

var wherePaths = []whereTarget{
	{name: "Config", resolve: where.Config, flag: "config", short: mo.Some("c")},
	{name: "Conf file", resolve: where.ConfFile, flag: "conf"},
	{name: "Logs", resolve: where.Logs, flag: "logs", short: mo.Some("l")},
	{name: "State", resolve: where.State, flag: "state", short: mo.Some("s")},
	{name: "History", resolve: where.History, flag: "history"},
	{name: "Telegram", resolve: where.Telegram, flag: "telegram", hidden: true},
	{name: "Cache", resolve: where.Cache, flag: "cache", hidden: true},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, t := range wherePaths {
		whereCmd.Flags().BoolP(t.flag, t.short.OrEmpty(), false, t.name+" path")
		if t.hidden {
			lo.Must0(whereCmd.Flags().MarkHidden(t.flag))
		}
	}

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(wherePaths, func(t whereTarget, _ int) string {
		return t.flag
	})...)

	whereCmd.SetOut(os.Stdout)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Display the filesystem paths used for configuration, logs and connector state",
	Run: func(cmd *cobra.Command, args []string) {
		if selected, ok := lo.Find(wherePaths, func(t whereTarget) bool {
			return lo.Must(cmd.Flags().GetBool(t.flag))
		}); ok {
			cmd.Println(selected.resolve())
			return
		}

		header := style.Heading(color.Purple)
		visible := lo.Reject(wherePaths, func(t whereTarget, _ int) bool { return t.hidden })

		for i, t := range visible {
			cmd.Printf("%s %s\n", header(t.name+"?"), style.Fg(color.Yellow)("--"+t.flag))
			cmd.Println(t.resolve())

			if i < len(visible)-1 {
				cmd.Println()
			}
		}
	},
}
