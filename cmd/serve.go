package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Ducheved/sharpmote/auth"
	"github.com/Ducheved/sharpmote/config"
	"github.com/Ducheved/sharpmote/discovery"
	"github.com/Ducheved/sharpmote/history"
	"github.com/Ducheved/sharpmote/hub"
	"github.com/Ducheved/sharpmote/key"
	"github.com/Ducheved/sharpmote/log"
	"github.com/Ducheved/sharpmote/media"
	"github.com/Ducheved/sharpmote/platform"
	"github.com/Ducheved/sharpmote/projection"
	"github.com/Ducheved/sharpmote/server"
	"github.com/Ducheved/sharpmote/telegram"
	"github.com/Ducheved/sharpmote/volume"
	"github.com/Ducheved/sharpmote/where"
	"github.com/Ducheved/sharpmote/yandex"
	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("bind", "b", "", "Address to listen on")
	lo.Must0(viper.BindPFlag(key.HTTPBind, serveCmd.Flags().Lookup("bind")))

	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on")
	lo.Must0(viper.BindPFlag(key.HTTPPort, serveCmd.Flags().Lookup("port")))

	serveCmd.Flags().Bool("mdns", false, "Advertise the service on the local network")
	lo.Must0(viper.BindPFlag(key.DiscoveryMDNS, serveCmd.Flags().Lookup("mdns")))
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server, the event stream and the enabled connectors",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(serve(cmd.Context()))
	},
}

func serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.Watch(func(e fsnotify.Event) {
		log.ApplyLevel()
		log.WithFields(log.Fields{"module": "config", "file": e.Name}).Info("configuration reloaded")
	})

	adapters := platform.Open(ctx, viper.GetDuration(key.VolumePollInterval))
	events := hub.New(hub.WithMaxBacklog(viper.GetInt(key.HubMaxBacklog)))
	publisher := projection.NewPublisher(events)
	played := history.Open(where.History(), viper.GetInt(key.HistorySize))

	mediaEngine := media.NewEngine(
		adapters.Source,
		adapters.Injector,
		played.Tee(publisher.Media()),
		media.WithPollInterval(viper.GetDuration(key.MediaPollInterval)),
		media.WithRepublishInterval(viper.GetDuration(key.MediaRepublishInterval)),
	)
	volumeEngine := volume.NewEngine(adapters.Device, publisher.Volume())

	var loops sync.WaitGroup
	defer loops.Wait()

	loops.Go(func() { mediaEngine.Start(ctx) })
	loops.Go(func() { volumeEngine.Start(ctx) })

	opts := []server.Option{
		server.WithHistory(played),
		server.WithYandex(yandex.New(func() string { return viper.GetString(key.YandexDevToken) }, mediaEngine, volumeEngine)),
	}

	if cfg := telegram.LoadConfig(); cfg.Token != "" {
		bot := telegram.New(cfg, mediaEngine, volumeEngine)
		opts = append(opts, server.WithTelegram(bot))
		loops.Go(func() { bot.Run(ctx) })
	} else {
		log.WithFields(log.Fields{"module": "telegram"}).Info("no bot token, connector disabled")
	}

	if viper.GetBool(key.DiscoveryMDNS) {
		loops.Go(func() {
			if err := discovery.Advertise(ctx, viper.GetInt(key.HTTPPort)); err != nil {
				log.WithFields(log.Fields{"module": "discovery"}).WithError(err).Warn("advertisement failed")
			}
		})
	}

	if auth.APIKey() == "" {
		log.WithFields(log.Fields{"module": "http"}).Warn(`no API key configured, the API answers 503. Type "sharpmote apikey generate"`)
	}

	err := server.New(mediaEngine, volumeEngine, events, server.LoadConfig(), opts...).Serve(ctx)
	stop()
	return err
}
