package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/Ducheved/sharpmote/color"
	"github.com/Ducheved/sharpmote/icon"
	"github.com/Ducheved/sharpmote/key"
	"github.com/Ducheved/sharpmote/log"
	"github.com/Ducheved/sharpmote/style"
	"github.com/Ducheved/sharpmote/telegram"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(integrationCmd)
}

var integrationCmd = &cobra.Command{
	Use:   "integration",
	Short: "Configure the chat-bot and smart home connectors",
}

func init() {
	integrationCmd.AddCommand(integrationTelegramCmd)
	integrationTelegramCmd.Flags().BoolP("disable", "d", false, "Disable the Telegram connector")
}

var integrationTelegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Configure the Telegram bot",
	Long: `Set the bot token issued by @BotFather and the user or chat ids allowed to control playback.
Leave the webhook secret empty to use long polling.`,
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("disable")) {
			viper.Set(key.TelegramToken, "")
			viper.Set(key.TelegramWebhookSecret, "")
			writeConfig()
			log.Info("Telegram integration disabled")
			fmt.Printf("%s Telegram integration disabled\n", style.Fg(color.Green)(icon.Get(icon.Success)))
			return
		}

		var token string
		handleErr(survey.AskOne(&survey.Password{
			Message: "Bot token:",
			Help:    "Leave empty to keep the current token",
		}, &token))
		if token != "" {
			viper.Set(key.TelegramToken, token)
		}

		var ids string
		handleErr(survey.AskOne(&survey.Input{
			Message: "Allowed user or chat ids (comma separated, empty allows everyone):",
			Default: joinIDs(telegram.ParseIDs(viper.GetStringSlice(key.TelegramAllowedIDs))),
		}, &ids))
		viper.Set(key.TelegramAllowedIDs, formatIDs(telegram.ParseIDs([]string{ids})))

		var secret string
		handleErr(survey.AskOne(&survey.Input{
			Message: "Webhook secret (empty for long polling):",
			Default: viper.GetString(key.TelegramWebhookSecret),
		}, &secret))
		viper.Set(key.TelegramWebhookSecret, secret)

		writeConfig()
		fmt.Printf("%s Telegram integration was set up\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

func formatIDs(ids []int64) []string {
	return lo.Map(ids, func(id int64, _ int) string { return strconv.FormatInt(id, 10) })
}

func joinIDs(ids []int64) string {
	return strings.Join(formatIDs(ids), ",")
}

func init() {
	integrationCmd.AddCommand(integrationYandexCmd)
	integrationYandexCmd.Flags().BoolP("disable", "d", false, "Disable the smart home endpoints")
}

var integrationYandexCmd = &cobra.Command{
	Use:   "yandex",
	Short: "Configure the smart home endpoints",
	Long:  `Set the bearer token the smart home platform sends to /yandex/v1.0.`,
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("disable")) {
			viper.Set(key.YandexDevToken, "")
			writeConfig()
			fmt.Printf("%s Smart home endpoints disabled\n", style.Fg(color.Green)(icon.Get(icon.Success)))
			return
		}

		var token string
		handleErr(survey.AskOne(&survey.Password{Message: "Bearer token:"}, &token, survey.WithValidator(survey.Required)))
		viper.Set(key.YandexDevToken, token)

		writeConfig()
		fmt.Printf("%s Smart home endpoints were set up\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
