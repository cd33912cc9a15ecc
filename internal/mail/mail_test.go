package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSend(t *testing.T) {
	var got struct {
		Personalizations []struct {
			To []struct {
				Email string `json:"email"`
			} `json:"to"`
		} `json:"personalizations"`
		From struct {
			Email string `json:"email"`
		} `json:"from"`
		Subject string `json:"subject"`
		Content []struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"content"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/mail/send" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sg-test-key" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	s := NewSenderURL(ts.URL, "sg-test-key", "noreply@sharebite.ca")
	if err := s.Send(context.Background(), "rae@example.com", "Food Reservation Confirmed", "<p>hi</p>"); err != nil {
		t.Fatalf("Send() = %v", err)
	}

	if len(got.Personalizations) != 1 || got.Personalizations[0].To[0].Email != "rae@example.com" {
		t.Errorf("to = %+v", got.Personalizations)
	}
	if got.From.Email != "noreply@sharebite.ca" || got.Subject != "Food Reservation Confirmed" {
		t.Errorf("from=%q subject=%q", got.From.Email, got.Subject)
	}
	if len(got.Content) != 1 || got.Content[0].Type != "text/html" {
		t.Errorf("content = %+v", got.Content)
	}
}

func TestSendRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer ts.Close()

	s := NewSenderURL(ts.URL, "wrong-key", "noreply@sharebite.ca")
	err := s.Send(context.Background(), "rae@example.com", "subject", "body")
	if err == nil {
		t.Fatal("Send() = nil, want error on 401")
	}
	if !strings.Contains(err.Error(), "status=401") {
		t.Errorf("error = %v", err)
	}
}

func TestSendNoKey(t *testing.T) {
	s := NewSenderURL("http://127.0.0.1:1", "", "noreply@sharebite.ca")
	if err := s.Send(context.Background(), "rae@example.com", "subject", "body"); err == nil {
		t.Fatal("Send() = nil, want error without API key")
	}
}
