package images

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSign(t *testing.T) {
	u := NewUploader("demo", "key", "abcd")
	got := u.sign(map[string]string{
		"timestamp": "1315060510",
		"folder":    "food_donations",
	})

	sum := sha1.Sum([]byte("folder=food_donations&timestamp=1315060510abcd"))
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Fatalf("sign() = %s, want %s", got, want)
	}
}

func TestUpload(t *testing.T) {
	var gotFile, gotSig, gotKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1_1/demo/image/upload" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotFile = r.FormValue("file")
		gotSig = r.FormValue("signature")
		gotKey = r.FormValue("api_key")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"secure_url": "https://res.cloudinary.example/demo/image/upload/v1/food_donations/abc.png",
		})
	}))
	defer ts.Close()

	u := NewUploaderURL(ts.URL, "demo", "key", "secret")
	url, err := u.Upload(context.Background(), []byte{0x89, 0x50, 0x4e, 0x47}, "image/png")
	if err != nil {
		t.Fatalf("Upload() = %v", err)
	}
	if !strings.HasSuffix(url, "abc.png") {
		t.Errorf("url = %q", url)
	}

	if !strings.HasPrefix(gotFile, "data:image/png;base64,") {
		t.Errorf("file field = %q", gotFile)
	}
	if gotKey != "key" || gotSig == "" {
		t.Errorf("api_key=%q signature=%q", gotKey, gotSig)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	u := NewUploader("demo", "key", "secret")
	if _, err := u.Upload(context.Background(), []byte("plain"), "text/plain"); err == nil {
		t.Fatal("Upload() = nil, want error for non-image content type")
	}
}

func TestUploadUnconfigured(t *testing.T) {
	u := NewUploader("", "", "")
	if u.Configured() {
		t.Error("Configured() = true with empty credentials")
	}
	if _, err := u.Upload(context.Background(), []byte{1}, "image/png"); err == nil {
		t.Fatal("Upload() = nil, want error when unconfigured")
	}
}

func TestUploadServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid Signature"}}`))
	}))
	defer ts.Close()

	u := NewUploaderURL(ts.URL, "demo", "key", "wrong")
	if _, err := u.Upload(context.Background(), []byte{1}, "image/png"); err == nil {
		t.Fatal("Upload() = nil, want error on 400")
	}
}
