// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// HTTP Listener - these keys configure the embedded HTTP server and its Server-Sent Events stream.
const (
	HTTPBind           = "http.bind"
	HTTPPort           = "http.port"
	HTTPMaxConnections = "http.max_connections"
	HTTPSSELifetime    = "http.sse_lifetime"
)

// API Access - these keys govern authentication and throttling of the remote-control API.
const (
	APIKey            = "api.key"
	APIRateLimit      = "api.rate_limit"
	APIRateBurst      = "api.rate_burst"
	WebhookRateLimit  = "webhook.rate_limit"
	WebhookRateBurst  = "webhook.rate_burst"
	APIKeyUseKeyring  = "api.use_keyring"
	APIAllowedOrigins = "api.allowed_origins"
)

// Media Session - these keys tune reconciliation of the host media session.
const (
	MediaPollInterval      = "media.poll_interval"
	MediaRepublishInterval = "media.republish_interval"
)

// Audio Endpoint - these keys tune the system volume bridge.
const (
	VolumePollInterval = "volume.poll_interval"
	VolumeStep         = "volume.step"
)

// Broadcast - these keys configure subscriber fan-out.
const (
	HubMaxBacklog = "hub.max_backlog"
)

// Telegram Connector - these keys enable and restrict the chat-bot interface.
const (
	TelegramToken         = "telegram.token"
	TelegramWebhookSecret = "telegram.webhook_secret"
	TelegramAllowedIDs    = "telegram.allowed_ids"
)

// Track History - these keys bound the persisted list of recently played tracks.
const (
	HistorySize = "history.size"
)

// Smart Home Connector - these keys configure the voice-assistant protocol bridge.
const (
	YandexDevToken = "yandex.dev_token"
)

// Discovery - these keys manage LAN advertisement of the service.
const (
	DiscoveryMDNS = "discovery.mdns"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-server application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
	IconsVariant    = "icons.variant"
)
