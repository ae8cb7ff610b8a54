package payment

import (
    "crypto/hmac"
    "crypto/sha256"
    "encoding/hex"
    "testing"
)

func sign(secret string, body []byte) string {
    mac := hmac.New(sha256.New, []byte(secret))
    mac.Write(body)
    return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
    c := NewClient(Config{APIKey: "k", SigningSecret: "whsec_test"})
    body := []byte(`{"meta":{"event_name":"order_created"}}`)

    if !c.VerifySignature(body, sign("whsec_test", body)) {
        t.Fatalf("valid signature rejected")
    }
    if c.VerifySignature(body, sign("wrong_secret", body)) {
        t.Fatalf("signature from wrong secret accepted")
    }
    if c.VerifySignature([]byte(`tampered`), sign("whsec_test", body)) {
        t.Fatalf("signature over different body accepted")
    }
    if c.VerifySignature(body, "") {
        t.Fatalf("empty signature accepted")
    }
}

func TestVerifySignatureNoSecret(t *testing.T) {
    c := NewClient(Config{APIKey: "k"})
    body := []byte(`{}`)
    if c.VerifySignature(body, sign("", body)) {
        t.Fatalf("verification must fail when no secret is configured")
    }
}

func TestParseWebhook(t *testing.T) {
    body := []byte(`{
        "meta": {"event_name": "order_created", "custom_data": {"booking_ref": "b-123"}},
        "data": {"id": "9001", "attributes": {"status": "paid", "total": 25000, "currency": "USD"}}
    }`)
    ev, err := ParseWebhook(body)
    if err != nil {
        t.Fatalf("ParseWebhook: %v", err)
    }
    if !ev.IsOrderCreated() || ev.IsOrderRefunded() {
        t.Fatalf("event kind misclassified: %q", ev.Meta.EventName)
    }
    if got := ev.BookingRef(); got != "b-123" {
        t.Fatalf("BookingRef = %q, want b-123", got)
    }
    if ev.Data.ID != "9001" || ev.Data.Attributes.Total != 25000 {
        t.Fatalf("order fields not decoded: %+v", ev.Data)
    }
}

func TestParseWebhookRejectsGarbage(t *testing.T) {
    if _, err := ParseWebhook([]byte("not json")); err == nil {
        t.Fatalf("expected decode error")
    }
    if _, err := ParseWebhook([]byte(`{"meta":{}}`)); err == nil {
        t.Fatalf("expected missing event name error")
    }
}

func TestUnconfiguredClient(t *testing.T) {
    c := NewClient(Config{})
    if c.Configured() {
        t.Fatalf("client without api key reported configured")
    }
}
