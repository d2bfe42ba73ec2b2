package cmd

import (
	"os"
	"sort"

	"github.com/Ducheved/sharpmote/color"
	"github.com/Ducheved/sharpmote/config"
	"github.com/Ducheved/sharpmote/style"
	"github.com/Ducheved/sharpmote/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Display only environment variables that are currently defined")
	envCmd.Flags().BoolP("unset-only", "u", false, "Display only environment variables that are currently undefined")

	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

// envVar is one supported variable together with the alias that supplied its value, if any.
type envVar struct {
	name  string
	value string
	via   string
}

// envVars lists every canonical variable. Values set through a legacy alias are attributed to it.
func envVars() []envVar {
	vars := []envVar{{name: where.EnvConfigPath, value: os.Getenv(where.EnvConfigPath)}}

	for _, field := range lo.Values(config.Default) {
		v := envVar{name: field.Env(), value: os.Getenv(field.Env())}
		if v.value == "" {
			for _, alias := range field.Aliases {
				if value := os.Getenv(alias); value != "" {
					v.value, v.via = value, alias
					break
				}
			}
		}
		vars = append(vars, v)
	}

	sort.Slice(vars, func(i, j int) bool { return vars[i].name < vars[j].name })
	return vars
}

// envCmd displays the current process values for all supported environment variables.
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Display the collection of supported environment variables",
	Long: `Display the collection of supported environment variables and their current process values.
Entries of sharpmote.conf are exported before this list is built.`,
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))

		for _, v := range envVars() {
			present := v.value != ""
			if (setOnly && !present) || (unsetOnly && present) {
				continue
			}

			cmd.Print(style.Heading(color.Purple)(v.name))
			cmd.Print("=")

			switch {
			case !present:
				cmd.Println(style.Fg(color.Red)("unset"))
			case v.via != "":
				cmd.Println(style.Fg(color.Green)(v.value) + " " + style.Faint("(from "+v.via+")"))
			default:
				cmd.Println(style.Fg(color.Green)(v.value))
			}
		}
	},
}
