package images

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Uploader pushes donation photos to Cloudinary's signed upload endpoint and
// hands back the hosted URL stored on the food item.
type Uploader struct {
	hc        *http.Client
	baseURL   string
	cloud     string
	apiKey    string
	apiSecret string
	folder    string
}

func NewUploader(cloud, apiKey, apiSecret string) *Uploader {
	return &Uploader{
		hc:        &http.Client{Timeout: 15 * time.Second},
		baseURL:   "https://api.cloudinary.com",
		cloud:     cloud,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		folder:    "food_donations",
	}
}

// NewUploaderURL is NewUploader against a different endpoint, for tests.
func NewUploaderURL(baseURL, cloud, apiKey, apiSecret string) *Uploader {
	u := NewUploader(cloud, apiKey, apiSecret)
	u.baseURL = baseURL
	return u
}

func (u *Uploader) Configured() bool {
	return u.cloud != "" && u.apiKey != "" && u.apiSecret != ""
}

// Upload sends one image and returns its secure URL.
func (u *Uploader) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if !u.Configured() {
		return "", fmt.Errorf("images: cloudinary not configured")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("images: unsupported content type %q", contentType)
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"folder":    u.folder,
		"timestamp": ts,
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	dataURI := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
	if err := mw.WriteField("file", dataURI); err != nil {
		return "", err
	}
	for k, v := range params {
		if err := mw.WriteField(k, v); err != nil {
			return "", err
		}
	}
	if err := mw.WriteField("api_key", u.apiKey); err != nil {
		return "", err
	}
	if err := mw.WriteField("signature", u.sign(params)); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", u.baseURL, u.cloud)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res, err := u.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode >= 400 {
		return "", fmt.Errorf("images: upload failed (status=%d): %s", res.StatusCode, b)
	}

	var out struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return "", err
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("images: no secure_url in response")
	}
	return out.SecureURL, nil
}

// sign builds Cloudinary's request signature: the sorted k=v params joined
// with &, with the API secret appended, SHA-1 hex digested.
func (u *Uploader) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
	}
	sb.WriteString(u.apiSecret)

	sum := sha1.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
