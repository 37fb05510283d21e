package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// WhatsAppClient sends text messages through the WhatsApp Business Cloud API.
type WhatsAppClient struct {
	BaseURL       string
	PhoneNumberID string
	Token         string
	HTTP          *http.Client
}

func NewWhatsAppClient(baseURL, phoneNumberID, token string) *WhatsAppClient {
	return &WhatsAppClient{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		PhoneNumberID: phoneNumberID,
		Token:         token,
		HTTP:          &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether credentials are present.
func (c *WhatsAppClient) Configured() bool {
	return c != nil && c.PhoneNumberID != "" && c.Token != ""
}

type textMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendText delivers body to an E.164 phone number.
func (c *WhatsAppClient) SendText(ctx context.Context, phone, body string) error {
	msg := textMessage{MessagingProduct: "whatsapp", To: strings.TrimPrefix(phone, "+"), Type: "text"}
	msg.Text.Body = body
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", c.BaseURL, c.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	var apiErr apiError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("whatsapp API returned %d: %s (code %d)", resp.StatusCode, apiErr.Error.Message, apiErr.Error.Code)
	}
	return fmt.Errorf("whatsapp API returned %d", resp.StatusCode)
}
