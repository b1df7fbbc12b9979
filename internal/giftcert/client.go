package giftcert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vrpoint/giftcert-bot/pkg/config"
	"github.com/vrpoint/giftcert-bot/pkg/metrics"
)

const tokenHeader = "X-Giftcert-Token"

// Backend routes of the OpenCart gift-certificate extension
const (
	routeCreate = "extension/module/giftcert_pdf_api/create"
	routePDF    = "extension/module/giftcert_pdf_api/pdf"
	routeList   = "extension/module/giftcert_pdf_api/list"
	routeResend = "extension/module/giftcert_pdf_api/resend"
	routeAnnul  = "extension/module/giftcert_pdf_api/annul"
	routeDelete = "extension/module/giftcert_pdf_api/delete"
	routeGet    = "extension/module/giftcert_pdf_api/get"
	routeUse    = "extension/module/giftcert_pdf_api/use"
)

// BackendError is a non-success response or transport failure from the
// backend. Its message is shown to the operator, truncated for display.
type BackendError struct {
	Op      string
	Message string
}

func (e *BackendError) Error() string {
	return e.Message
}

// Client talks to the gift-certificate API of the shop backend
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a backend client with a bounded per-call timeout
func NewClient(cfg *config.BackendConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 40 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.APIToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// routeURL builds the full endpoint URL for an extension route
func (c *Client) routeURL(route string) string {
	return c.baseURL + "/index.php?route=" + route
}

// Create issues one certificate and returns its id, code and amount
func (c *Client) Create(ctx context.Context, req *CreateRequest) (*CreateResult, error) {
	env, err := c.postJSON(ctx, "create", routeCreate, req)
	if err != nil {
		return nil, err
	}

	metrics.CertificateCreated()
	return &CreateResult{
		ID:     env.GiftcertID.Int64(),
		Code:   env.Code,
		Amount: env.Amount.String(),
	}, nil
}

// List returns the most recent certificates
func (c *Client) List(ctx context.Context, offset, limit int) ([]Certificate, error) {
	params := url.Values{}
	params.Set("start", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(limit))

	env, err := c.getJSON(ctx, "list", routeList, params)
	if err != nil {
		return nil, err
	}

	var rows []Certificate
	if len(env.Rows) > 0 {
		if err := json.Unmarshal(env.Rows, &rows); err != nil {
			return nil, &BackendError{Op: "list", Message: fmt.Sprintf("bad rows payload: %v", err)}
		}
	}
	return rows, nil
}

// Get fetches one certificate by id or code
func (c *Client) Get(ctx context.Context, ref Ref) (*Certificate, error) {
	params := url.Values{}
	if ref.ID != 0 {
		params.Set("giftcert_id", strconv.FormatInt(ref.ID, 10))
	}
	if ref.Code != "" {
		params.Set("code", ref.Code)
	}

	env, err := c.getJSON(ctx, "get", routeGet, params)
	if err != nil {
		return nil, err
	}

	var cert Certificate
	if len(env.Cert) == 0 {
		return nil, &BackendError{Op: "get", Message: "empty certificate payload"}
	}
	if err := json.Unmarshal(env.Cert, &cert); err != nil {
		return nil, &BackendError{Op: "get", Message: fmt.Sprintf("bad certificate payload: %v", err)}
	}
	return &cert, nil
}

// Use marks a certificate as used. The backend rejects certificates that
// are already used or annulled; the bot relies on that and does not
// deduplicate.
func (c *Client) Use(ctx context.Context, ref Ref, note string) error {
	payload := map[string]interface{}{"note": note}
	if ref.ID != 0 {
		payload["giftcert_id"] = ref.ID
	}
	if ref.Code != "" {
		payload["code"] = ref.Code
	}
	_, err := c.postJSON(ctx, "use", routeUse, payload)
	return err
}

// Annul voids a certificate without releasing its code
func (c *Client) Annul(ctx context.Context, id int64, reason string) error {
	_, err := c.postJSON(ctx, "annul", routeAnnul, map[string]interface{}{
		"giftcert_id": id,
		"reason":      reason,
	})
	return err
}

// Delete removes a certificate; its code becomes available again
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.postJSON(ctx, "delete", routeDelete, map[string]interface{}{
		"giftcert_id": id,
		"confirm":     true,
	})
	return err
}

// ResendEmail re-sends the certificate email to its recipient
func (c *Client) ResendEmail(ctx context.Context, id int64) error {
	_, err := c.postJSON(ctx, "email", routeResend, map[string]interface{}{
		"giftcert_id": id,
	})
	return err
}

// DownloadPDF fetches the rendered certificate document
func (c *Client) DownloadPDF(ctx context.Context, ref Ref) ([]byte, error) {
	params := url.Values{}
	if ref.ID != 0 {
		params.Set("giftcert_id", strconv.FormatInt(ref.ID, 10))
	}
	if ref.Code != "" {
		params.Set("code", ref.Code)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.routeURL(routePDF)+"&"+params.Encode(), nil)
	if err != nil {
		return nil, &BackendError{Op: "pdf", Message: err.Error()}
	}
	req.Header.Set(tokenHeader, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.BackendCall("pdf", "network_error")
		return nil, &BackendError{Op: "pdf", Message: fmt.Sprintf("network error: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.BackendCall("pdf", "network_error")
		return nil, &BackendError{Op: "pdf", Message: fmt.Sprintf("network error: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		metrics.BackendCall("pdf", strconv.Itoa(resp.StatusCode))
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &BackendError{Op: "pdf", Message: fmt.Sprintf("PDF download failed: %d %s", resp.StatusCode, snippet)}
	}

	metrics.BackendCall("pdf", "ok")
	return body, nil
}

// postJSON performs a POST round trip and normalizes the response
func (c *Client) postJSON(ctx context.Context, op, route string, payload interface{}) (*apiEnvelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &BackendError{Op: op, Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.routeURL(route), bytes.NewReader(body))
	if err != nil {
		return nil, &BackendError{Op: op, Message: err.Error()}
	}
	req.Header.Set(tokenHeader, c.token)
	req.Header.Set("Content-Type", "application/json")

	return c.do(op, req)
}

// getJSON performs a GET round trip and normalizes the response
func (c *Client) getJSON(ctx context.Context, op, route string, params url.Values) (*apiEnvelope, error) {
	endpoint := c.routeURL(route)
	if encoded := params.Encode(); encoded != "" {
		endpoint += "&" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &BackendError{Op: op, Message: err.Error()}
	}
	req.Header.Set(tokenHeader, c.token)

	return c.do(op, req)
}

// do executes the request and folds transport, parse and application
// failures into a single BackendError shape.
func (c *Client) do(op string, req *http.Request) (*apiEnvelope, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.BackendCall(op, "network_error")
		return nil, &BackendError{Op: op, Message: fmt.Sprintf("network error: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.BackendCall(op, "network_error")
		return nil, &BackendError{Op: op, Message: fmt.Sprintf("network error: %v", err)}
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		metrics.BackendCall(op, "parse_error")
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &BackendError{Op: op, Message: fmt.Sprintf("bad response: %d %s", resp.StatusCode, snippet)}
	}

	if !env.Success {
		metrics.BackendCall(op, "api_error")
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return nil, &BackendError{Op: op, Message: msg}
	}

	metrics.BackendCall(op, "ok")
	return &env, nil
}
