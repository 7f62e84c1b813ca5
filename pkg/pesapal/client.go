package pesapal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Xebarter/Clevers-Website-sub000/pkg/httpclient"
)

const (
	SubmitOrderEndpoint       = "/api/Transactions/SubmitOrderRequest"
	TransactionStatusEndpoint = "/api/Transactions/GetTransactionStatus"
	RegisterIPNEndpoint       = "/api/URLSetup/RegisterIPN"
)

const (
	NotificationTypePost = "POST"
	NotificationTypeGet  = "GET"
)

const maxErrorBodyLength = 512

type Client interface {
	SubmitOrder(ctx context.Context, request OrderRequest) (OrderResponse, error)
	GetTransactionStatus(ctx context.Context, orderTrackingID string) (TransactionStatus, error)
	RegisterIPN(ctx context.Context, request RegisterIPNRequest) (IPNRegistration, error)
}

type client struct {
	cfg    Config
	http   httpclient.HTTPClient
	tokens TokenSource
}

func NewClient(cfg Config, httpClient httpclient.HTTPClient, tokens TokenSource) Client {
	return &client{cfg: cfg, http: httpClient, tokens: tokens}
}

func (c *client) SubmitOrder(ctx context.Context, request OrderRequest) (OrderResponse, error) {
	if request.ID == "" || request.Currency == "" || request.Amount <= 0 {
		return OrderResponse{}, fmt.Errorf("%w: id, currency and a positive amount are required", ErrInvalidRequest)
	}

	status, body, err := c.call(ctx, http.MethodPost, SubmitOrderEndpoint, request)
	if err != nil {
		return OrderResponse{}, err
	}

	if status != http.StatusOK || gatewayErrorObject(body) {
		return OrderResponse{}, responseError(ErrGateway, status, body)
	}

	order := parseOrderResponse(body)
	if order.OrderTrackingID == "" {
		return OrderResponse{}, &Error{Kind: ErrGateway, StatusCode: status,
			Code: ErrCodeMissingTrackingID, Message: "gateway response has no order tracking id"}
	}

	if order.MerchantReference == "" {
		order.MerchantReference = request.ID
	}

	return order, nil
}

func (c *client) GetTransactionStatus(ctx context.Context, orderTrackingID string) (TransactionStatus, error) {
	if strings.TrimSpace(orderTrackingID) == "" {
		return TransactionStatus{}, fmt.Errorf("%w: order tracking id is required", ErrInvalidRequest)
	}

	endpoint := TransactionStatusEndpoint + "?orderTrackingId=" + url.QueryEscape(orderTrackingID)

	status, body, err := c.call(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return TransactionStatus{}, err
	}

	if status != http.StatusOK || gatewayErrorObject(body) {
		return TransactionStatus{}, responseError(ErrGateway, status, body)
	}

	return parseTransactionStatus(orderTrackingID, body), nil
}

func (c *client) RegisterIPN(ctx context.Context, request RegisterIPNRequest) (IPNRegistration, error) {
	if request.URL == "" {
		return IPNRegistration{}, fmt.Errorf("%w: ipn url is required", ErrInvalidRequest)
	}

	if request.NotificationType == "" {
		request.NotificationType = NotificationTypePost
	}

	status, body, err := c.call(ctx, http.MethodPost, RegisterIPNEndpoint, request)
	if err != nil {
		return IPNRegistration{}, err
	}

	if status != http.StatusOK || gatewayErrorObject(body) {
		return IPNRegistration{}, responseError(ErrGateway, status, body)
	}

	registration := parseIPNRegistration(body)
	if registration.IPNID == "" {
		return IPNRegistration{}, &Error{Kind: ErrGateway, StatusCode: status,
			Code: ErrCodeInvalidResponse, Message: "gateway response has no ipn id"}
	}

	return registration, nil
}

// call performs an authenticated request and decodes the reply. A 401 drops the cached token
// and the request is retried once with a fresh one. Transport and token failures are returned
// as errors; HTTP-level failures are left to the caller to interpret.
func (c *client) call(ctx context.Context, method, endpoint string, request any) (int, map[string]any, error) {
	status, body, err := c.send(ctx, method, endpoint, request)
	if err != nil || status != http.StatusUnauthorized {
		return status, body, err
	}

	c.tokens.Invalidate()

	return c.send(ctx, method, endpoint, request)
}

func (c *client) send(ctx context.Context, method, endpoint string, request any) (int, map[string]any, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return 0, nil, err
	}

	headers := map[string]string{
		"Accept":        "application/json",
		"Authorization": "Bearer " + token,
	}

	var resp *http.Response
	switch method {
	case http.MethodGet:
		resp, err = c.http.Get(ctx, c.cfg.Endpoint()+endpoint, headers)
	default:
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(request); err != nil {
			return 0, nil, fmt.Errorf("encoding error: %w", err)
		}

		headers["Content-Type"] = "application/json"
		resp, err = c.http.Post(ctx, c.cfg.Endpoint()+endpoint, &buf, headers)
	}

	if err != nil {
		return 0, nil, transportError(ErrGateway, err)
	}

	defer resp.Body.Close()

	body, err := decodeBody(resp.Body)
	if err != nil {
		if resp.StatusCode == http.StatusOK {
			return 0, nil, &Error{Kind: ErrGateway, StatusCode: resp.StatusCode,
				Code: ErrCodeInvalidResponse, Message: err.Error(), Err: err}
		}

		body = map[string]any{"message": err.Error()}
	}

	return resp.StatusCode, body, nil
}

// decodeBody reads a JSON object, keeping numbers exact. A non-JSON body is reported as an
// error with a truncated copy of the text in its message.
func decodeBody(r io.Reader) (map[string]any, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decoding error: %w", err)
	}

	body := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return body, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&body); err != nil {
		text := string(raw)
		if len(text) > maxErrorBodyLength {
			text = text[:maxErrorBodyLength]
		}

		return nil, fmt.Errorf("decoding error: %w: %s", err, text)
	}

	return body, nil
}
