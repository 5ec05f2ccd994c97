package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/marcoberry/barberhub-backend/pkg/config"
	pkgerrors "github.com/marcoberry/barberhub-backend/pkg/errors"
)

// Client uploads and destroys gallery images through the Cloudinary REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cloudName  string
	apiKey     string
	apiSecret  string
	folder     string
	now        func() time.Time
}

// UploadResult carries the stable identifiers for a stored image.
type UploadResult struct {
	PublicID string
	URL      string
}

// NewClient builds a Cloudinary client from configuration.
func NewClient(cfg config.CloudinaryConfig) (*Client, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("cloudinary cloud name, api key and api secret are required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cloudName:  cfg.CloudName,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		folder:     cfg.Folder,
		now:        time.Now,
	}, nil
}

type uploadEnvelope struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends a base64 or remote-URL image payload and returns its stored
// identifiers. Failures never leave partial state behind; callers only persist
// after a confirmed upload.
func (c *Client) Upload(ctx context.Context, imageData string) (*UploadResult, error) {
	imageData = strings.TrimSpace(imageData)
	if imageData == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image payload is required")
	}

	params := map[string]string{
		"timestamp": fmt.Sprintf("%d", c.now().Unix()),
	}
	if c.folder != "" {
		params["folder"] = c.folder
	}

	form := url.Values{}
	for key, value := range params {
		form.Set(key, value)
	}
	form.Set("file", imageData)
	form.Set("api_key", c.apiKey)
	form.Set("signature", c.sign(params))

	envelope, err := c.post(ctx, "/image/upload", form)
	if err != nil {
		return nil, err
	}

	resultURL := envelope.SecureURL
	if resultURL == "" {
		resultURL = envelope.URL
	}
	if envelope.PublicID == "" || resultURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "storage response missing image identifiers")
	}

	return &UploadResult{PublicID: envelope.PublicID, URL: resultURL}, nil
}

// Destroy removes a stored image by its public id.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "public id is required")
	}

	params := map[string]string{
		"public_id": publicID,
		"timestamp": fmt.Sprintf("%d", c.now().Unix()),
	}

	form := url.Values{}
	for key, value := range params {
		form.Set(key, value)
	}
	form.Set("api_key", c.apiKey)
	form.Set("signature", c.sign(params))

	_, err := c.post(ctx, "/image/destroy", form)
	return err
}

func (c *Client) post(ctx context.Context, path string, form url.Values) (*uploadEnvelope, error) {
	endpoint := fmt.Sprintf("%s/%s%s", c.baseURL, c.cloudName, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "building storage request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "calling image storage")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "reading storage response")
	}

	var envelope uploadEnvelope
	if resp.StatusCode != http.StatusOK {
		if decodeErr := json.Unmarshal(body, &envelope); decodeErr == nil && envelope.Error.Message != "" {
			return nil, pkgerrors.New(pkgerrors.CodeUpstream, fmt.Sprintf("storage rejected request: %s", envelope.Error.Message))
		}
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, fmt.Sprintf("storage returned status %d", resp.StatusCode))
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decoding storage response")
	}

	return &envelope, nil
}

// sign computes the SHA1 request signature over the sorted non-auth params.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))
	return hex.EncodeToString(sum[:])
}
