// Package payment integrates the hosted Lemon Squeezy checkout.  The
// client carries an explicit HTTP timeout and every call takes a
// context so requests are cancelled with the initiating HTTP request.
// Webhook authenticity is verified with an HMAC-SHA256 signature over
// the raw body.
package payment

import (
    "bytes"
    "context"
    "crypto/hmac"
    "crypto/sha256"
    "encoding/hex"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "time"
)

const defaultBaseURL = "https://api.lemonsqueezy.com/v1"

// ErrNotConfigured is returned by client methods when no API key was
// provided at startup.  Booking creation surfaces it as a 503.
var ErrNotConfigured = errors.New("payment provider not configured")

// Client talks to the Lemon Squeezy API.
type Client struct {
    http          *http.Client
    baseURL       string
    apiKey        string
    storeID       string
    variantID     string
    signingSecret string
}

// Config carries the provider credentials loaded from the environment.
type Config struct {
    APIKey        string
    StoreID       string
    VariantID     string
    SigningSecret string
    BaseURL       string // override for tests; empty means production
}

// NewClient builds a Client with a 10 second request timeout.  A client
// with an empty API key is returned as configured-off: calls fail with
// ErrNotConfigured instead of panicking, so the rest of the service can
// run without payment credentials in development.
func NewClient(cfg Config) *Client {
    base := cfg.BaseURL
    if base == "" {
        base = defaultBaseURL
    }
    return &Client{
        http:          &http.Client{Timeout: 10 * time.Second},
        baseURL:       base,
        apiKey:        cfg.APIKey,
        storeID:       cfg.StoreID,
        variantID:     cfg.VariantID,
        signingSecret: cfg.SigningSecret,
    }
}

// Configured reports whether API credentials are present.
func (c *Client) Configured() bool { return c.apiKey != "" }

// CheckoutParams describes one booking checkout.  BookingRef rides in
// the checkout's custom metadata and comes back in the order webhook,
// acting as the idempotency key tying provider orders to bookings.
type CheckoutParams struct {
    BookingRef     string
    WriterID       uint64
    SponsorID      uint64
    SponsorEmail   string
    NewsletterName string
    SlotDate       string
    AmountCents    uint32
    SuccessURL     string
}

// Checkout is the provider's answer: an id and a hosted payment URL the
// sponsor is redirected to.
type Checkout struct {
    CheckoutID  string
    CheckoutURL string
}

type checkoutResponse struct {
    Data struct {
        ID         string `json:"id"`
        Attributes struct {
            URL string `json:"url"`
        } `json:"attributes"`
    } `json:"data"`
}

// CreateCheckout creates a hosted checkout for one slot booking.
func (c *Client) CreateCheckout(ctx context.Context, p CheckoutParams) (Checkout, error) {
    if !c.Configured() {
        return Checkout{}, ErrNotConfigured
    }
    body := map[string]any{
        "data": map[string]any{
            "type": "checkouts",
            "attributes": map[string]any{
                "custom_price": p.AmountCents,
                "product_options": map[string]any{
                    "name":         fmt.Sprintf("Ad slot in %s (%s)", p.NewsletterName, p.SlotDate),
                    "redirect_url": p.SuccessURL,
                },
                "checkout_data": map[string]any{
                    "email": p.SponsorEmail,
                    "custom": map[string]string{
                        "booking_ref": p.BookingRef,
                        "writer_id":   fmt.Sprint(p.WriterID),
                        "sponsor_id":  fmt.Sprint(p.SponsorID),
                        "slot_date":   p.SlotDate,
                    },
                },
            },
            "relationships": map[string]any{
                "store":   map[string]any{"data": map[string]string{"type": "stores", "id": c.storeID}},
                "variant": map[string]any{"data": map[string]string{"type": "variants", "id": c.variantID}},
            },
        },
    }
    var resp checkoutResponse
    if err := c.do(ctx, http.MethodPost, "/checkouts", body, &resp); err != nil {
        return Checkout{}, err
    }
    if resp.Data.ID == "" || resp.Data.Attributes.URL == "" {
        return Checkout{}, errors.New("checkout response missing id or url")
    }
    return Checkout{CheckoutID: resp.Data.ID, CheckoutURL: resp.Data.Attributes.URL}, nil
}

// RefundOrder asks the provider to refund a captured order, used when a
// writer rejects a paid booking.
func (c *Client) RefundOrder(ctx context.Context, orderID string) error {
    if !c.Configured() {
        return ErrNotConfigured
    }
    body := map[string]any{
        "data": map[string]any{
            "type": "orders",
            "id":   orderID,
            "attributes": map[string]any{
                "refund": true,
            },
        },
    }
    return c.do(ctx, http.MethodPatch, "/orders/"+orderID, body, nil)
}

// Order is a slimmed provider order used by the admin inspection
// endpoint.
type Order struct {
    ID       string `json:"id"`
    Status   string `json:"status"`
    Total    int64  `json:"total"`
    Currency string `json:"currency"`
}

type orderResponse struct {
    Data struct {
        ID         string `json:"id"`
        Attributes struct {
            Status   string `json:"status"`
            Total    int64  `json:"total"`
            Currency string `json:"currency"`
        } `json:"attributes"`
    } `json:"data"`
}

// GetOrder fetches an order's status from the provider.
func (c *Client) GetOrder(ctx context.Context, orderID string) (Order, error) {
    if !c.Configured() {
        return Order{}, ErrNotConfigured
    }
    var resp orderResponse
    if err := c.do(ctx, http.MethodGet, "/orders/"+orderID, nil, &resp); err != nil {
        return Order{}, err
    }
    return Order{
        ID:       resp.Data.ID,
        Status:   resp.Data.Attributes.Status,
        Total:    resp.Data.Attributes.Total,
        Currency: resp.Data.Attributes.Currency,
    }, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
    var rd io.Reader
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil {
            return err
        }
        rd = bytes.NewReader(b)
    }
    req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
    if err != nil {
        return err
    }
    req.Header.Set("Authorization", "Bearer "+c.apiKey)
    req.Header.Set("Accept", "application/vnd.api+json")
    if body != nil {
        req.Header.Set("Content-Type", "application/vnd.api+json")
    }
    resp, err := c.http.Do(req)
    if err != nil {
        return err
    }
    defer resp.Body.Close()
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
        return fmt.Errorf("lemonsqueezy: %s %s returned %d: %s", method, path, resp.StatusCode, msg)
    }
    if out == nil {
        return nil
    }
    return json.NewDecoder(resp.Body).Decode(out)
}

// VerifySignature checks the X-Signature header of a webhook delivery
// against the HMAC-SHA256 of the raw body using the signing secret.
func (c *Client) VerifySignature(body []byte, signature string) bool {
    if c.signingSecret == "" || signature == "" {
        return false
    }
    mac := hmac.New(sha256.New, []byte(c.signingSecret))
    mac.Write(body)
    expected := hex.EncodeToString(mac.Sum(nil))
    return hmac.Equal([]byte(expected), []byte(signature))
}

// WebhookEvent is the decoded shape of an order webhook delivery.  The
// booking ref placed in checkout metadata comes back under custom_data.
type WebhookEvent struct {
    Meta struct {
        EventName  string            `json:"event_name"`
        CustomData map[string]string `json:"custom_data"`
    } `json:"meta"`
    Data struct {
        ID         string `json:"id"`
        Attributes struct {
            Status   string `json:"status"`
            Total    int64  `json:"total"`
            Currency string `json:"currency"`
        } `json:"attributes"`
    } `json:"data"`
}

// ParseWebhook decodes a webhook body.
func ParseWebhook(body []byte) (WebhookEvent, error) {
    var ev WebhookEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return WebhookEvent{}, fmt.Errorf("decode webhook: %w", err)
    }
    if ev.Meta.EventName == "" {
        return WebhookEvent{}, errors.New("webhook missing event name")
    }
    return ev, nil
}

// BookingRef returns the booking reference carried in the event's
// custom metadata.
func (e WebhookEvent) BookingRef() string { return e.Meta.CustomData["booking_ref"] }

// IsOrderCreated reports a successful payment capture event.
func (e WebhookEvent) IsOrderCreated() bool { return e.Meta.EventName == "order_created" }

// IsOrderRefunded reports a provider-side refund event.
func (e WebhookEvent) IsOrderRefunded() bool { return e.Meta.EventName == "order_refunded" }
