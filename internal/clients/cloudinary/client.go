package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/indecor/dreamspace-backend/internal/logger"
)

// UploadResult carries what the provider returns for a stored image. Width,
// height, format and the public id end up in ProjectImage metadata; the rest
// of this backend never touches raw image bytes again.
type UploadResult struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
}

type Client interface {
	Upload(ctx context.Context, folder, filename string, file io.Reader) (*UploadResult, error)
	CloudName() string
}

type client struct {
	log        *logger.Logger
	cloudName  string
	apiKey     string
	apiSecret  string
	apiBaseURL string
	httpClient *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	cloudName := strings.TrimSpace(os.Getenv("CLOUDINARY_CLOUD_NAME"))
	if cloudName == "" {
		return nil, fmt.Errorf("missing CLOUDINARY_CLOUD_NAME")
	}
	apiKey := strings.TrimSpace(os.Getenv("CLOUDINARY_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing CLOUDINARY_API_KEY")
	}
	apiSecret := strings.TrimSpace(os.Getenv("CLOUDINARY_API_SECRET"))
	if apiSecret == "" {
		return nil, fmt.Errorf("missing CLOUDINARY_API_SECRET")
	}

	baseURL := strings.TrimSpace(os.Getenv("CLOUDINARY_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.cloudinary.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &client{
		log:        log.With("client", "CloudinaryClient"),
		cloudName:  cloudName,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		apiBaseURL: baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (c *client) CloudName() string { return c.cloudName }

func (c *client) Upload(ctx context.Context, folder, filename string, file io.Reader) (*UploadResult, error) {
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	params := map[string]string{
		"folder":    folder,
		"timestamp": timestamp,
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range params {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := mw.WriteField("api_key", c.apiKey); err != nil {
		return nil, fmt.Errorf("write api_key: %w", err)
	}
	if err := mw.WriteField("signature", signParams(params, c.apiSecret)); err != nil {
		return nil, fmt.Errorf("write signature: %w", err)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(fw, file); err != nil {
		return nil, fmt.Errorf("copy file body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/v1_1/%s/image/upload", c.apiBaseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("upload failed: status=%d body=%s", resp.StatusCode, string(b))
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &result, nil
}

// signParams produces the Cloudinary request signature: params sorted by key,
// joined as key=value with '&', then the API secret, SHA-1 hex digest.
func signParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "&") + secret))
	return hex.EncodeToString(sum[:])
}
