// Package telegram is a minimal Telegram Bot API client covering the
// methods novelforge needs: long-poll updates, messages with inline
// keyboards, and multipart document uploads.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DefaultAPIBase is the production Bot API endpoint.
const DefaultAPIBase = "https://api.telegram.org"

// longPollSeconds is the server-side hold time for getUpdates.
const longPollSeconds = 30

// Config assembles a Client.
type Config struct {
	// Token is the bot token.
	Token string
	// APIBase overrides the API endpoint, mainly for tests.
	APIBase string
	// ConnectTimeout bounds dialing for document uploads (default 10s).
	ConnectTimeout time.Duration
	// ReadTimeout bounds the whole upload exchange (default 180s).
	ReadTimeout time.Duration
}

// Client talks to the Telegram Bot API.
type Client struct {
	base   string
	token  string
	http   *http.Client // short calls and long polls
	upload *http.Client // document uploads
}

// NewClient creates a Client.
func NewClient(cfg Config) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 180 * time.Second
	}
	return &Client{
		base:  cfg.APIBase,
		token: cfg.Token,
		http: &http.Client{
			// Above the long-poll hold so the server answers first.
			Timeout: (longPollSeconds + 15) * time.Second,
		},
		upload: &http.Client{
			Timeout: cfg.ReadTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
			},
		},
	}
}

// methodURL builds the endpoint for one Bot API method.
func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.base, c.token, method)
}

// call POSTs a JSON payload and decodes the response envelope into result
// (which may be nil).
func (c *Client) call(ctx context.Context, method string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, method, result)
}

// GetUpdates long-polls for new updates after offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	payload := map[string]any{
		"offset":  offset,
		"timeout": longPollSeconds,
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessageOptions are the optional sendMessage parameters used here.
type SendMessageOptions struct {
	ParseMode   string
	ReplyMarkup *InlineKeyboardMarkup
}

// SendMessage sends a text message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts *SendMessageOptions) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if opts != nil {
		if opts.ParseMode != "" {
			payload["parse_mode"] = opts.ParseMode
		}
		if opts.ReplyMarkup != nil {
			payload["reply_markup"] = opts.ReplyMarkup
		}
	}
	return c.call(ctx, "sendMessage", payload, nil)
}

// AnswerCallbackQuery acknowledges an inline keyboard tap.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]any{"callback_query_id": callbackID}, nil)
}

// SendDocument uploads a file to a chat as a document with the given
// caption, which doubles as the visible filename. Satisfies
// delivery.Uploader.
func (c *Client) SendDocument(ctx context.Context, chatID, filePath, caption string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("chat_id", chatID); err != nil {
		return err
	}
	if err := mw.WriteField("caption", caption); err != nil {
		return err
	}

	name := caption
	if name == "" {
		name = filepath.Base(filePath)
	}
	part, err := mw.CreateFormFile("document", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendDocument"), &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.upload.Do(req)
	if err != nil {
		return fmt.Errorf("sendDocument request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, "sendDocument", nil)
}

// decodeEnvelope checks both the HTTP status and the ok field; only a
// 200-class response with ok=true counts as success.
func decodeEnvelope(resp *http.Response, method string, result any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("%s returned status %d with undecodable body", method, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || !envelope.OK {
		return fmt.Errorf("%s failed: status %d: %s", method, resp.StatusCode, envelope.Description)
	}

	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}
