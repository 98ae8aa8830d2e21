package notify

import (
	"context"
	"fmt"
	"strings"

	"carmarket-backend/internal/config"

	"github.com/go-resty/resty/v2"
)

// TwilioWhatsApp sends WhatsApp messages through the Twilio Messages API.
type TwilioWhatsApp struct {
	client     *resty.Client
	accountSID string
	from       string
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type twilioMessage struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

func NewTwilioWhatsApp(cfg config.TwilioConfig) *TwilioWhatsApp {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	return &TwilioWhatsApp{
		client:     client,
		accountSID: cfg.AccountSID,
		from:       cfg.From,
	}
}

func (t *TwilioWhatsApp) Send(ctx context.Context, to, body string) error {
	var result twilioMessage
	var apiErr twilioError

	resp, err := t.client.R().
		SetContext(ctx).
		SetPathParam("sid", t.accountSID).
		SetFormData(map[string]string{
			"From": whatsappAddress(t.from),
			"To":   whatsappAddress(to),
			"Body": body,
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/2010-04-01/Accounts/{sid}/Messages.json")
	if err != nil {
		return fmt.Errorf("twilio request: %w", err)
	}

	if resp.IsError() {
		if apiErr.Message != "" {
			return fmt.Errorf("twilio returned %d: %s (code %d)", resp.StatusCode(), apiErr.Message, apiErr.Code)
		}
		return fmt.Errorf("twilio returned %d", resp.StatusCode())
	}

	return nil
}

func whatsappAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
