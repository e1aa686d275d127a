package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Caller creates outbound calls through the Twilio REST API, used for
// lead-list dialing. The created call posts its first webhook to
// VoiceURL and status events to StatusCallbackURL.
type Caller struct {
	accountSID string
	authToken  string
	fromNumber string
	httpClient *http.Client
}

func NewCaller(accountSID, authToken, fromNumber string) *Caller {
	return &Caller{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type OutboundCallRequest struct {
	To                string
	VoiceURL          string
	StatusCallbackURL string
	Record            bool
}

// CreateCall starts an outbound call and returns its SID.
func (c *Caller) CreateCall(ctx context.Context, req OutboundCallRequest) (string, error) {
	if req.To == "" || req.VoiceURL == "" {
		return "", fmt.Errorf("telephony: outbound call needs To and VoiceURL")
	}

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Calls.json", c.accountSID)
	form := url.Values{}
	form.Set("To", req.To)
	form.Set("From", c.fromNumber)
	form.Set("Url", req.VoiceURL)
	if req.StatusCallbackURL != "" {
		form.Set("StatusCallback", req.StatusCallbackURL)
		for _, ev := range []string{"completed", "busy", "no-answer", "failed"} {
			form.Add("StatusCallbackEvent", ev)
		}
	}
	if req.Record {
		form.Set("Record", "true")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	httpReq.SetBasicAuth(c.accountSID, c.authToken)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("twilio call create: status %d", resp.StatusCode)
	}
	var out struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.SID, nil
}
