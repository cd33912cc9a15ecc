package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Sender delivers transactional email through the SendGrid v3 API.
// Delivery is best-effort everywhere it is used: callers treat a failed
// send as a logged event, never as an operation failure.
type Sender struct {
	hc      *http.Client
	baseURL string
	apiKey  string
	from    string
}

func NewSender(apiKey, from string) *Sender {
	return &Sender{
		hc:      &http.Client{Timeout: 5 * time.Second},
		baseURL: "https://api.sendgrid.com",
		apiKey:  apiKey,
		from:    from,
	}
}

// NewSenderURL is NewSender against a different endpoint. Tests point it at
// a local server.
func NewSenderURL(baseURL, apiKey, from string) *Sender {
	s := NewSender(apiKey, from)
	s.baseURL = baseURL
	return s
}

type address struct {
	Email string `json:"email"`
}

type message struct {
	Personalizations []struct {
		To []address `json:"to"`
	} `json:"personalizations"`
	From    address `json:"from"`
	Subject string  `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

// Send dispatches one HTML email and reports whether it was accepted.
func (s *Sender) Send(ctx context.Context, to, subject, html string) error {
	if s.apiKey == "" {
		return fmt.Errorf("mail: no API key configured")
	}

	var m message
	m.Personalizations = append(m.Personalizations, struct {
		To []address `json:"to"`
	}{To: []address{{Email: to}}})
	m.From = address{Email: s.from}
	m.Subject = subject
	m.Content = append(m.Content, struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{Type: "text/html", Value: html})

	body, err := json.Marshal(m)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := s.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("mail: send rejected (status=%d): %s", res.StatusCode, b)
	}
	log.Printf("mail: sent to %s", to)
	return nil
}
