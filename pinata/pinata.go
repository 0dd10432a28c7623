package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"rovify-backend/model"
	"rovify-backend/response"
	"strings"
	"time"
)

const (
	pinFilePath = "/pinning/pinFileToIPFS"
	pinJSONPath = "/pinning/pinJSONToIPFS"
)

// Pinner pins content to IPFS and resolves gateway URLs for the resulting CIDs.
type Pinner interface {
	PinFile(ctx context.Context, name string, file io.Reader) (*model.PinResult, error)
	PinJSON(ctx context.Context, name string, content interface{}) (*model.PinResult, error)
	URL(cid string) string
}

type Client struct {
	APIKey     string
	SecretKey  string
	BaseURL    string
	Gateway    string
	HTTPClient *http.Client
}

func New(apiKey, secretKey, baseURL, gateway string) *Client {
	return &Client{
		APIKey:     apiKey,
		SecretKey:  secretKey,
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		Gateway:    strings.TrimSuffix(gateway, "/"),
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
	PinSize  int64  `json:"PinSize"`
}

type pinMetadata struct {
	Name      string            `json:"name"`
	KeyValues map[string]string `json:"keyvalues"`
}

type pinOptions struct {
	CIDVersion        int  `json:"cidVersion"`
	WrapWithDirectory bool `json:"wrapWithDirectory"`
}

func (c *Client) PinFile(ctx context.Context, name string, file io.Reader) (*model.PinResult, error) {
	if err := c.configured(); err != nil {
		return nil, err
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("pinFile: unable to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("pinFile: unable to copy file: %w", err)
	}

	meta, _ := json.Marshal(pinMetadata{Name: name, KeyValues: c.keyValues("event-image")})
	opts, _ := json.Marshal(pinOptions{})
	if err := mw.WriteField("pinataMetadata", string(meta)); err != nil {
		return nil, fmt.Errorf("pinFile: unable to write metadata: %w", err)
	}
	if err := mw.WriteField("pinataOptions", string(opts)); err != nil {
		return nil, fmt.Errorf("pinFile: unable to write options: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("pinFile: unable to close form: %w", err)
	}

	res, err := c.post(ctx, pinFilePath, mw.FormDataContentType(), body)
	if err != nil {
		return nil, fmt.Errorf("pinFile: %w", err)
	}
	return &model.PinResult{Path: res.IpfsHash, URL: c.URL(res.IpfsHash)}, nil
}

func (c *Client) PinJSON(ctx context.Context, name string, content interface{}) (*model.PinResult, error) {
	if err := c.configured(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]interface{}{
		"pinataContent":  content,
		"pinataMetadata": pinMetadata{Name: name, KeyValues: c.keyValues("event-metadata")},
		"pinataOptions":  map[string]int{"cidVersion": 0},
	})
	if err != nil {
		return nil, fmt.Errorf("pinJSON: unable to marshal content: %w", err)
	}

	res, err := c.post(ctx, pinJSONPath, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("pinJSON: %w", err)
	}
	return &model.PinResult{Path: res.IpfsHash, URL: c.URL(res.IpfsHash)}, nil
}

func (c *Client) URL(cid string) string {
	return fmt.Sprintf("%s/ipfs/%s", c.Gateway, cid)
}

func (c *Client) configured() error {
	if c.APIKey == "" || c.SecretKey == "" {
		return response.ServiceUnavailable("IPFS pinning is not configured")
	}
	return nil
}

func (c *Client) keyValues(kind string) map[string]string {
	return map[string]string{"type": kind, "uploadedAt": time.Now().UTC().Format(time.RFC3339)}
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) (*pinResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("pinata_api_key", c.APIKey)
	req.Header.Set("pinata_secret_api_key", c.SecretKey)

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post: request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return nil, fmt.Errorf("post: pinata returned status code: %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}

	var pr pinResponse
	if err := json.NewDecoder(res.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("post: error unmarshalling response body: %w", err)
	}
	if pr.IpfsHash == "" {
		return nil, fmt.Errorf("post: pinata response has no hash")
	}
	return &pr, nil
}
