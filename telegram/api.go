package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Ducheved/sharpmote/network"
	"github.com/Ducheved/sharpmote/util"
)

// Endpoint is the public Bot API host.
const Endpoint = "https://api.telegram.org"

// Update is one incoming event. Only messages and callback queries are decoded.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

type User struct {
	ID int64 `json:"id"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	From    *User    `json:"from,omitempty"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// APIError is a non-ok Bot API reply.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %d %s", e.Code, e.Description)
}

// IsNotModified reports whether err is the Bot API refusing an edit that changes nothing.
func IsNotModified(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Description, "message is not modified")
}

type envelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

// API is a minimal Bot API client.
type API struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewAPI creates a client for token against endpoint. An empty endpoint means the public host.
func NewAPI(token, endpoint string) *API {
	if endpoint == "" {
		endpoint = Endpoint
	}

	return &API{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		token:    token,
		// attempts must outlive the long-poll window
		client: network.Retrying(3, pollTimeout+15*time.Second),
	}
}

func (a *API) call(ctx context.Context, method string, params, result any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", a.endpoint, a.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		// the URL embeds the token
		return fmt.Errorf("telegram %s: %w", method, redact(err, a.token))
	}
	defer util.Ignore(resp.Body.Close)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", method, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode %s: %w (status %s)", method, err, resp.Status)
	}

	if !env.OK {
		return &APIError{Code: env.ErrorCode, Description: env.Description}
	}

	if result == nil {
		return nil
	}
	return json.Unmarshal(env.Result, result)
}

func redact(err error, token string) error {
	if token == "" {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), token, "<token>"))
}

// GetUpdates long-polls for updates starting at offset.
func (a *API) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	var updates []Update
	err := a.call(ctx, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message", "callback_query"},
	}, &updates)
	return updates, err
}

// SendMessage posts text with an inline keyboard and returns the new message.
func (a *API) SendMessage(ctx context.Context, chatID int64, text string, markup InlineKeyboardMarkup) (Message, error) {
	var msg Message
	err := a.call(ctx, "sendMessage", map[string]any{
		"chat_id":      chatID,
		"text":         text,
		"reply_markup": markup,
	}, &msg)
	return msg, err
}

// EditMessageText replaces the text and keyboard of an earlier message.
func (a *API) EditMessageText(ctx context.Context, chatID, messageID int64, text string, markup InlineKeyboardMarkup) error {
	return a.call(ctx, "editMessageText", map[string]any{
		"chat_id":      chatID,
		"message_id":   messageID,
		"text":         text,
		"reply_markup": markup,
	}, nil)
}

// AnswerCallbackQuery dismisses the loading state of a pressed button. text may be empty.
func (a *API) AnswerCallbackQuery(ctx context.Context, id, text string) error {
	params := map[string]any{"callback_query_id": id}
	if text != "" {
		params["text"] = text
	}
	return a.call(ctx, "answerCallbackQuery", params, nil)
}
