package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marcoberry/barberhub-backend/pkg/config"
	"github.com/marcoberry/barberhub-backend/pkg/enums"
	pkgerrors "github.com/marcoberry/barberhub-backend/pkg/errors"
)

// Client talks to the Paystack REST API. It is the only component allowed to
// decide what a gateway transaction is worth; callers treat its answers as
// ground truth.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

// Verification is the normalized outcome of a verify call. Amount is in naira.
type Verification struct {
	Reference string
	Status    enums.PaymentStatus
	Amount    decimal.Decimal
	Currency  string
	PaidAt    *time.Time
}

// NewClient builds a Paystack client from configuration.
func NewClient(cfg config.PaystackConfig) (*Client, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("paystack secret key is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("paystack base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		secretKey:  cfg.SecretKey,
	}, nil
}

type verifyEnvelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		PaidAt    string `json:"paid_at"`
	} `json:"data"`
}

// VerifyTransaction fetches the settled state of a transaction by reference.
// Transport and decode failures surface as upstream errors so callers never
// mutate records off an unconfirmed answer.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Verification, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference is required")
	}

	endpoint := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, url.PathEscape(reference))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "building verify request")
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "calling payment gateway")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "reading gateway response")
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidPayment, "transaction reference not found at gateway")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, fmt.Sprintf("gateway returned status %d", resp.StatusCode))
	}

	var envelope verifyEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decoding gateway response")
	}
	if !envelope.Status {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidPayment, "gateway could not verify the transaction")
	}

	verification := &Verification{
		Reference: envelope.Data.Reference,
		Status:    enums.PaymentStatus(envelope.Data.Status),
		Amount:    decimal.NewFromInt(envelope.Data.Amount).Div(decimal.NewFromInt(100)),
		Currency:  envelope.Data.Currency,
	}
	if verification.Reference == "" {
		verification.Reference = reference
	}
	if envelope.Data.PaidAt != "" {
		if paidAt, parseErr := time.Parse(time.RFC3339, envelope.Data.PaidAt); parseErr == nil {
			verification.PaidAt = &paidAt
		}
	}

	return verification, nil
}
