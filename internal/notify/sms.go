// Package notify delivers SMS and email to callers and the manager. Every
// send is best effort from the dialogue's point of view: failures are
// logged and swallowed upstream so a failed message never aborts a booking.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// SMSSender sends one text message and returns the provider message ID.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

// TwilioSMS posts to the Twilio Messages endpoint.
type TwilioSMS struct {
	accountSID string
	authToken  string
	fromNumber string
	enabled    bool
	httpClient *http.Client
	log        *slog.Logger
}

func NewTwilioSMS(accountSID, authToken, fromNumber string, enabled bool, log *slog.Logger) *TwilioSMS {
	if log == nil {
		log = slog.Default()
	}
	return &TwilioSMS{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		enabled:    enabled,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (t *TwilioSMS) SendSMS(ctx context.Context, to, body string) (string, error) {
	if !t.enabled {
		t.log.Info("sms disabled, skipping send", "to", to)
		return "", nil
	}

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", t.accountSID)
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.fromNumber)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("twilio sms: status %d", resp.StatusCode)
	}
	var out struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.SID, nil
}

// MemorySMS records messages for tests.
type MemorySMS struct {
	mu   sync.Mutex
	sent []SentSMS
	Err  error
}

type SentSMS struct {
	To   string
	Body string
}

func (m *MemorySMS) SendSMS(ctx context.Context, to, body string) (string, error) {
	_ = ctx
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentSMS{To: to, Body: body})
	return fmt.Sprintf("SM-test-%d", len(m.sent)), nil
}

func (m *MemorySMS) Sent() []SentSMS {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentSMS, len(m.sent))
	copy(out, m.sent)
	return out
}
