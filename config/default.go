// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/Ducheved/sharpmote/color"
	"github.com/Ducheved/sharpmote/constant"
	"github.com/Ducheved/sharpmote/key"
	"github.com/Ducheved/sharpmote/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
	// Aliases are extra environment variable names consulted after the canonical one.
	Aliases []string
	// Secret values are masked when displayed.
	Secret bool
}

const mask = "********"

// Current returns the effective value, masked for secrets that are set.
func (f *Field) Current() any {
	v := viper.Get(f.Key)
	if f.Secret && viper.GetString(f.Key) != "" {
		return mask
	}
	return v
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Sharpmote + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       f.Current(),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float64"
	case time.Duration:
		return "duration"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string, aliases ...string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc, Aliases: aliases}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.HTTPBind, "0.0.0.0", "Address the HTTP server listens on", "SHARPMOTE_BIND_ADDRESS")
	register(key.HTTPPort, 8080, "Port the HTTP server listens on")
	register(key.HTTPMaxConnections, 400, "Maximum number of concurrent client connections")
	register(key.HTTPSSELifetime, 30*time.Minute, "Absolute lifetime of a single event stream.\nClients are expected to reconnect")
	register(key.APIKey, "", "API key required in the X-Api-Key header.\nFalls back to the OS keyring when empty.\nType \"sharpmote apikey generate\" to create one")
	register(key.APIKeyUseKeyring, true, "Look up the API key in the OS keyring when api.key is empty")
	register(key.APIAllowedOrigins, []string{}, "Origins allowed to call the API from a browser.\nEmpty means same-origin only")
	register(key.APIRateLimit, 40, "Sustained API requests per second across all clients")
	register(key.APIRateBurst, 40, "API request burst size")
	register(key.WebhookRateLimit, 15, "Sustained webhook requests per second")
	register(key.WebhookRateBurst, 15, "Webhook request burst size")
	register(key.MediaPollInterval, time.Second, "How often the media session is reconciled from scratch")
	register(key.MediaRepublishInterval, 500*time.Millisecond, "How often the interpolated position is pushed while playing")
	register(key.VolumePollInterval, 500*time.Millisecond, "How often the audio endpoint is polled for changes")
	register(key.VolumeStep, 0.05, "Volume step used by chat commands, from 0 to 1")
	register(key.HubMaxBacklog, 0, "Disconnect a subscriber whose backlog grows past this many frames.\n0 keeps queues unbounded")
	register(key.TelegramToken, "", "Telegram bot token. The bot is disabled when empty", "SHARPMOTE_TELEGRAM_BOT_TOKEN")
	register(key.TelegramWebhookSecret, "", "Secret path segment for webhook mode.\nLong polling is used when empty")
	register(key.TelegramAllowedIDs, []string{}, "User or chat ids allowed to control playback.\nEmpty allows everyone")
	register(key.YandexDevToken, "", "Bearer token accepted by the smart home endpoints.\nEvery request is rejected when empty", "SHARPMOTE_YA_OAUTH_DEV_TOKEN")
	register(key.HistorySize, 50, "How many recently played tracks are remembered")
	register(key.DiscoveryMDNS, false, "Advertise the service on the local network over mDNS")
	for _, k := range []string{key.APIKey, key.TelegramToken, key.TelegramWebhookSecret, key.YandexDevToken} {
		field := Default[k]
		field.Secret = true
		Default[k] = field
	}

	register(key.LogsWrite, false, "Write logs to a dated file in addition to stderr")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Check for a newer release when printing help or version")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"current":  func(f *Field) any { return f.Current() },
	"join":     strings.Join,
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}{{ if .Aliases }} {{ faint (join .Aliases ", ") }}{{ end }}
{{ blue "Value:" }}   {{ hl (current .) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
