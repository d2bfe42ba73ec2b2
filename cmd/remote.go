package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Ducheved/sharpmote/auth"
	"github.com/Ducheved/sharpmote/client"
	"github.com/Ducheved/sharpmote/color"
	"github.com/Ducheved/sharpmote/discovery"
	"github.com/Ducheved/sharpmote/icon"
	"github.com/Ducheved/sharpmote/key"
	"github.com/Ducheved/sharpmote/projection"
	"github.com/Ducheved/sharpmote/style"
	"github.com/Ducheved/sharpmote/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const remoteTimeout = 10 * time.Second

func init() {
	rootCmd.AddCommand(remoteCmd)

	remoteCmd.PersistentFlags().StringP("url", "u", "", "Server base URL. Defaults to this machine")
	remoteCmd.PersistentFlags().StringP("key", "k", "", "API key. Defaults to the configured one")
	remoteCmd.PersistentFlags().BoolP("discover", "d", false, "Use the first server found on the local network")
}

var remoteCmd = &cobra.Command{
	Use:     "remote",
	Aliases: []string{"r"},
	Short:   "Control a running server",
}

// remoteClient resolves the target from the flags, falling back to discovery or the local listener.
func remoteClient(cmd *cobra.Command) *client.Client {
	base := lo.Must(cmd.Flags().GetString("url"))
	apiKey := lo.Must(cmd.Flags().GetString("key"))

	if apiKey == "" {
		apiKey = auth.APIKey()
	}

	if base == "" && lo.Must(cmd.Flags().GetBool("discover")) {
		found, err := discovery.Browse(cmd.Context(), 2*time.Second)
		handleErr(err)
		if len(found) == 0 {
			handleErr(errors.New("no server found on the local network"))
		}
		base = found[0].URL()
	}

	if base == "" {
		base = "http://" + net.JoinHostPort("127.0.0.1", strconv.Itoa(viper.GetInt(key.HTTPPort)))
	}

	return client.New(base, apiKey)
}

func remoteContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), remoteTimeout)
}

func init() {
	remoteCmd.AddCommand(remoteStateCmd)
	remoteStateCmd.Flags().BoolP("json", "j", false, "Print the raw state document")
}

var remoteStateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print what is playing",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := remoteContext(cmd)
		defer cancel()

		st, err := remoteClient(cmd).State(ctx)
		var apiErr *client.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
			cmd.Println(style.Faint("nothing is playing"))
			return
		}
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(st))
			return
		}

		cmd.Println(formatState(st))
	},
}

// formatState renders a state for the terminal.
func formatState(st projection.State) string {
	title := lo.Ternary(st.Title == "", "-", st.Title)
	out := fmt.Sprintf("%s %s %s", icon.Get(icon.ForPlayback(st.Playback)), style.Playback(st.Playback), style.Bold(title))

	if st.Artist != "" {
		out += "\n  " + st.Artist
	}
	if st.DurationMs > 0 {
		out += "\n  " + style.Faint(clock(st.PositionMs)+" / "+clock(st.DurationMs))
	}
	if st.Volume != nil {
		vol := fmt.Sprintf("%s %d%%", icon.Get(icon.Volume), util.Percent(*st.Volume))
		if st.Mute != nil && *st.Mute {
			vol = icon.Get(icon.Muted) + " " + style.Fg(color.Yellow)("muted")
		}
		out += "\n  " + vol
	}
	return out
}

func clock(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func init() {
	for _, name := range client.Commands {
		remoteCmd.AddCommand(&cobra.Command{
			Use:   name,
			Short: "Send " + name + " to the player",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				ctx, cancel := remoteContext(cmd)
				defer cancel()

				handleErr(remoteClient(cmd).Command(ctx, name))
				cmd.Println(style.Fg(color.Green)(icon.Get(icon.Success)), name)
			},
		})
	}
}

func init() {
	remoteCmd.AddCommand(remoteVolumeCmd)
}

var remoteVolumeCmd = &cobra.Command{
	Use:   "volume <set N|up [N]|down [N]|mute>",
	Short: "Set, step or mute the system volume",
	Example: `  sharpmote remote volume set 40
  sharpmote remote volume up
  sharpmote remote volume down 10
  sharpmote remote volume mute`,
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{"set", "up", "down", "mute"},
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := remoteContext(cmd)
		defer cancel()

		c := remoteClient(cmd)

		amount := func(fallback float64) float64 {
			if len(args) < 2 {
				return fallback
			}
			n, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				handleErr(fmt.Errorf("invalid volume %q", args[1]))
			}
			return n
		}

		step := viper.GetFloat64(key.VolumeStep) * 100

		switch args[0] {
		case "set":
			if len(args) < 2 {
				handleErr(errors.New("set needs a percentage"))
			}
			handleErr(c.SetVolume(ctx, util.Clamp(amount(0), 0, 100)/100))
		case "up":
			handleErr(c.StepVolume(ctx, amount(step)/100))
		case "down":
			handleErr(c.StepVolume(ctx, -amount(step)/100))
		case "mute":
			handleErr(c.ToggleMute(ctx))
		default:
			handleErr(fmt.Errorf("unknown volume action %q", args[0]))
		}

		cmd.Println(style.Fg(color.Green)(icon.Get(icon.Success)), "volume", args[0])
	},
}
