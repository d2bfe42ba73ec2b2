// Package telegram drives the engines from a Telegram chat: commands and inline
// buttons in, an edited-in-place status message out.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Ducheved/sharpmote/key"
	"github.com/Ducheved/sharpmote/log"
	"github.com/Ducheved/sharpmote/media"
	"github.com/Ducheved/sharpmote/util"
	"github.com/Ducheved/sharpmote/volume"
	"github.com/Ducheved/sharpmote/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

const (
	pollTimeout  = 20 * time.Second
	maxBackoff   = 30 * time.Second
	idleInterval = 100 * time.Millisecond
)

// Media is the part of the media engine the bot drives.
type Media interface {
	State() mo.Option[media.State]
	Play(ctx context.Context)
	Pause(ctx context.Context)
	Toggle(ctx context.Context)
	Next(ctx context.Context)
	Previous(ctx context.Context)
	Stop(ctx context.Context)
}

// Volume is the part of the volume engine the bot drives.
type Volume interface {
	Snapshot(ctx context.Context) (volume.State, error)
	Set(ctx context.Context, level float64) error
	Step(ctx context.Context, delta float64) error
	ToggleMute(ctx context.Context) error
}

// Config holds the bot settings.
type Config struct {
	Token         string
	WebhookSecret string
	// AllowedIDs restricts the bot to these user or chat ids. Empty allows everyone.
	AllowedIDs []int64
	Step       float64
	Endpoint   string
	StatePath  string
}

// LoadConfig reads the bot settings from viper.
func LoadConfig() Config {
	return Config{
		Token:         viper.GetString(key.TelegramToken),
		WebhookSecret: viper.GetString(key.TelegramWebhookSecret),
		AllowedIDs:    ParseIDs(viper.GetStringSlice(key.TelegramAllowedIDs)),
		Step:          viper.GetFloat64(key.VolumeStep),
		StatePath:     where.Telegram(),
	}
}

// ParseIDs reads ids from entries that may themselves be comma separated lists.
// Entries that are not integers are skipped.
func ParseIDs(entries []string) []int64 {
	var ids []int64
	for _, entry := range entries {
		for _, part := range strings.Split(entry, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
				ids = append(ids, id)
			}
		}
	}
	return lo.Uniq(ids)
}

// Bot is the chat connector.
type Bot struct {
	cfg    Config
	api    *API
	store  *Store
	media  Media
	volume Volume

	allowed map[int64]struct{}
}

// New creates a bot. It does not contact the Bot API until Run or HandleUpdate.
func New(cfg Config, m Media, v Volume) *Bot {
	if cfg.Step <= 0 {
		cfg.Step = 0.05
	}

	return &Bot{
		cfg:     cfg,
		api:     NewAPI(cfg.Token, cfg.Endpoint),
		store:   NewStore(cfg.StatePath),
		media:   m,
		volume:  v,
		allowed: lo.SliceToMap(cfg.AllowedIDs, func(id int64) (int64, struct{}) { return id, struct{}{} }),
	}
}

// Secret returns the webhook path secret. Empty means long polling.
func (b *Bot) Secret() string {
	return b.cfg.WebhookSecret
}

// Run long-polls the Bot API until ctx is done. It returns at once in webhook mode.
// Failed polls back off exponentially up to 30 s.
func (b *Bot) Run(ctx context.Context) {
	if b.cfg.WebhookSecret != "" {
		log.WithFields(log.Fields{"module": "telegram", "action": "run"}).Info("webhook mode, polling disabled")
		return
	}

	log.WithFields(log.Fields{"module": "telegram", "action": "run"}).Info("polling for updates")

	delay := time.Second
	for {
		updates, err := b.api.GetUpdates(ctx, b.store.Offset()+1, pollTimeout)
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			delay = backoff(delay)
			log.WithFields(log.Fields{"module": "telegram", "action": "poll", "retry_in": delay}).WithError(err).Error("poll failed")
		default:
			delay = idleInterval
			for _, u := range updates {
				if b.store.Advance(u.UpdateID) {
					b.process(ctx, u)
				}
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func backoff(d time.Duration) time.Duration {
	return min(max(d, time.Second)*2, maxBackoff)
}

// HandleUpdate processes one webhook delivery. Updates not newer than the last
// processed one are ignored.
func (b *Bot) HandleUpdate(ctx context.Context, body []byte) error {
	var u Update
	if err := json.Unmarshal(body, &u); err != nil {
		return fmt.Errorf("decode update: %w", err)
	}

	if !b.store.Advance(u.UpdateID) {
		log.WithFields(log.Fields{"module": "telegram", "update": u.UpdateID}).Debug("duplicate update ignored")
		return nil
	}

	b.process(ctx, u)
	return nil
}

func (b *Bot) permitted(user *User, chat int64) bool {
	if len(b.allowed) == 0 {
		return true
	}
	if _, ok := b.allowed[chat]; ok {
		return true
	}
	if user == nil {
		return false
	}
	_, ok := b.allowed[user.ID]
	return ok
}

func (b *Bot) process(ctx context.Context, u Update) {
	entry := log.WithFields(log.Fields{"module": "telegram", "update": u.UpdateID})

	switch {
	case u.Message != nil:
		chat := u.Message.Chat.ID
		if !b.permitted(u.Message.From, chat) {
			entry.WithField("chat", chat).Warn("message from a chat that is not allowed")
			return
		}

		b.execute(ctx, Parse(u.Message.Text))
		b.upsert(ctx, chat)

	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		if q.Message == nil {
			return
		}

		chat := q.Message.Chat.ID
		if !b.permitted(q.From, chat) {
			entry.WithField("chat", chat).Warn("button from a chat that is not allowed")
			b.answer(ctx, q.ID, "forbidden")
			return
		}

		b.execute(ctx, Parse(q.Data))
		b.store.SetMessage(chat, q.Message.MessageID)
		b.upsert(ctx, chat)
		b.answer(ctx, q.ID, "")
	}
}

func (b *Bot) answer(ctx context.Context, id, text string) {
	if err := b.api.AnswerCallbackQuery(ctx, id, text); err != nil {
		log.WithFields(log.Fields{"module": "telegram", "action": "answer"}).WithError(err).Warn("callback not answered")
	}
}

func (b *Bot) execute(ctx context.Context, cmd Command) {
	var err error

	switch cmd.Kind {
	case Play:
		b.media.Play(ctx)
	case Pause:
		b.media.Pause(ctx)
	case Toggle:
		b.media.Toggle(ctx)
	case Next:
		b.media.Next(ctx)
	case Prev:
		b.media.Previous(ctx)
	case Stop:
		b.media.Stop(ctx)
	case VolUp:
		err = b.volume.Step(ctx, b.cfg.Step)
	case VolDown:
		err = b.volume.Step(ctx, -b.cfg.Step)
	case VolSet:
		if percent, ok := cmd.Percent.Get(); ok {
			err = b.volume.Set(ctx, float64(percent)/100)
		}
	case Mute:
		err = b.volume.ToggleMute(ctx)
	}

	if err != nil {
		log.WithFields(log.Fields{"module": "telegram", "command": cmd.Kind.String()}).WithError(err).Warn("command failed")
	}
}

// Status renders the status message text.
func Status(st mo.Option[media.State], vol mo.Option[volume.State]) string {
	playback := string(media.Unknown)
	title, artist := "-", ""
	if s, ok := st.Get(); ok {
		playback = string(s.Status)
		title = lo.Ternary(s.Title == "", "-", s.Title)
		artist = s.Artist
	}

	line := playback + " • no audio device"
	if v, ok := vol.Get(); ok {
		line = fmt.Sprintf("%s • %d%%", playback, util.Percent(v.Level))
		if v.Muted {
			line += " (mute)"
		}
	}

	lines := []string{line, title}
	if strings.TrimSpace(artist) != "" {
		lines = append(lines, artist)
	}
	return strings.Join(lines, "\n")
}

// Keyboard is the inline keyboard attached to every status message.
func Keyboard() InlineKeyboardMarkup {
	return InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{{Text: "⏮", CallbackData: "/prev"}, {Text: "⏯", CallbackData: "/toggle"}, {Text: "⏭", CallbackData: "/next"}},
		{{Text: "🔉", CallbackData: "/voldown"}, {Text: "🔇", CallbackData: "/mute"}, {Text: "🔊", CallbackData: "/volup"}},
		{{Text: "🔄 Refresh", CallbackData: "/refresh"}},
	}}
}

// upsert edits the chat's status message in place, or sends a new one when
// there is none or the edit failed for another reason than an unchanged text.
func (b *Bot) upsert(ctx context.Context, chat int64) {
	vol := mo.None[volume.State]()
	if v, err := b.volume.Snapshot(ctx); err == nil {
		vol = mo.Some(v)
	}
	text := Status(b.media.State(), vol)
	entry := log.WithFields(log.Fields{"module": "telegram", "chat": chat})

	if id, ok := b.store.Message(chat); ok {
		err := b.api.EditMessageText(ctx, chat, id, text, Keyboard())
		if err == nil || IsNotModified(err) {
			return
		}
		entry.WithError(err).Debug("edit failed, sending a new message")
	}

	msg, err := b.api.SendMessage(ctx, chat, text, Keyboard())
	if err != nil {
		entry.WithError(err).Warn("status message not sent")
		return
	}
	b.store.SetMessage(chat, msg.MessageID)
}
