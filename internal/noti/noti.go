package noti

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
)

// Sender delivers a text message to the trader. Best effort: callers
// log failures and move on.
type Sender interface {
	Send(ctx context.Context, msg string) error
}

// Discard drops every message. Used when no channel is configured.
type Discard struct{}

func (Discard) Send(context.Context, string) error { return nil }

const _telegramBaseURL = "https://api.telegram.org"

// Telegram delivers messages through the Telegram bot API.
type Telegram struct {
	client  *http.Client
	baseURL string
	token   string
	chatID  int64
}

func NewTelegram(token string, chatID int64) *Telegram {
	return &Telegram{
		client:  &http.Client{},
		baseURL: _telegramBaseURL,
		token:   token,
		chatID:  chatID,
	}
}

func (t *Telegram) Send(ctx context.Context, msg string) error {
	payload, err := sonic.ConfigFastest.Marshal(map[string]string{
		"chat_id": strconv.FormatInt(t.chatID, 10),
		"text":    msg,
	})
	if err != nil {
		return errors.Wrap(err, "marshal telegram message")
	}

	url := t.baseURL + "/bot" + t.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build telegram request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "send telegram message")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("telegram responded %d", resp.StatusCode)
	}
	return nil
}
