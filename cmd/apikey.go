package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/Ducheved/sharpmote/auth"
	"github.com/Ducheved/sharpmote/color"
	"github.com/Ducheved/sharpmote/icon"
	"github.com/Ducheved/sharpmote/key"
	"github.com/Ducheved/sharpmote/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(apikeyCmd)
}

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage the API key stored in the OS keyring",
	Long: `Manage the API key clients send in the X-Api-Key header.
The api.key config value takes precedence over the keyring.`,
}

func init() {
	apikeyCmd.AddCommand(apikeySetCmd)
}

var apikeySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store an API key, prompting for it when omitted",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var value string
		if len(args) == 1 {
			value = args[0]
		} else {
			handleErr(survey.AskOne(&survey.Password{Message: "API key:"}, &value, survey.WithValidator(survey.Required)))
		}

		value = strings.TrimSpace(value)
		if value == "" {
			handleErr(errors.New("API key must not be empty"))
		}

		handleErr(auth.SetAPIKey(value))
		fmt.Printf("%s API key stored\n", style.Fg(color.Green)(icon.Get(icon.Success)))
		warnOverridden()
	},
}

func init() {
	apikeyCmd.AddCommand(apikeyGenerateCmd)
	apikeyGenerateCmd.Flags().BoolP("force", "f", false, "Replace an existing key without asking")
}

var apikeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a random API key, store it and print it",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := auth.GetAPIKey(); err == nil && !lo.Must(cmd.Flags().GetBool("force")) {
			var replace bool
			handleErr(survey.AskOne(&survey.Confirm{Message: "A key is already stored. Replace it?", Default: false}, &replace))
			if !replace {
				return
			}
		}

		generated := auth.GenerateAPIKey()
		handleErr(auth.SetAPIKey(generated))

		fmt.Printf("%s %s\n", style.Fg(color.Green)(icon.Get(icon.Key)), style.Bold(generated))
		warnOverridden()
	},
}

func init() {
	apikeyCmd.AddCommand(apikeyShowCmd)
}

var apikeyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective API key and where it comes from",
	Run: func(cmd *cobra.Command, args []string) {
		if configured := viper.GetString(key.APIKey); configured != "" {
			cmd.Println(configured, style.Faint("(config "+key.APIKey+")"))
			return
		}

		stored, err := auth.GetAPIKey()
		switch {
		case auth.IsNotFound(err):
			handleErr(errors.New(`no API key configured. Type "sharpmote apikey generate"`))
		case err != nil:
			handleErr(err)
		}

		cmd.Println(stored, style.Faint("(keyring)"))
	},
}

func init() {
	apikeyCmd.AddCommand(apikeyDeleteCmd)
}

var apikeyDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove the API key from the keyring",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		if err := auth.DeleteAPIKey(); err != nil && !auth.IsNotFound(err) {
			handleErr(err)
		}
		fmt.Printf("%s API key deleted\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

func warnOverridden() {
	if viper.GetString(key.APIKey) != "" {
		fmt.Printf("%s %s is set and takes precedence over the keyring\n", style.Fg(color.Yellow)(icon.Get(icon.Warn)), key.APIKey)
	}
}
