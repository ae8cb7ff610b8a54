package wizard

import (
    "context"
    "errors"
    "strings"
    "sync"
    "sync/atomic"
    "testing"
    "time"

    "github.com/adsloty/adsloty/internal/model"
    "github.com/adsloty/adsloty/internal/validation"
)

var slotDate = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

func creative() model.AdCreative {
    return model.AdCreative{
        Copy:     "Meet Acme, the fastest way to ship.",
        ClickURL: "https://acme.example.com",
    }
}

func TestLinearFlow(t *testing.T) {
    s := NewSession(context.Background(), 7)
    if s.Step() != StepSelectWeek {
        t.Fatalf("initial step = %v", s.Step())
    }
    if err := s.SelectSlot(slotDate, 25000); err != nil {
        t.Fatalf("SelectSlot: %v", err)
    }
    if s.Step() != StepAdDetails {
        t.Fatalf("after select: %v", s.Step())
    }
    if err := s.SubmitCreative(creative()); err != nil {
        t.Fatalf("SubmitCreative: %v", err)
    }
    if s.Step() != StepPayment {
        t.Fatalf("after creative: %v", s.Step())
    }
    if err := s.CompletePayment(); err != nil {
        t.Fatalf("CompletePayment: %v", err)
    }
    if !s.Done() {
        t.Fatal("session not done after payment")
    }
}

func TestBackPreservesData(t *testing.T) {
    s := NewSession(context.Background(), 7)
    if err := s.SelectSlot(slotDate, 25000); err != nil {
        t.Fatal(err)
    }
    if err := s.Back(); err != nil {
        t.Fatalf("Back: %v", err)
    }
    if s.Step() != StepSelectWeek {
        t.Fatalf("step after back = %v", s.Step())
    }
    // The selected slot survives the round trip.
    date, price, ok := s.Slot()
    if !ok || !date.Equal(slotDate) || price != 25000 {
        t.Fatalf("slot lost after back: %v %d %v", date, price, ok)
    }
    // Going forward again works and keeps the same context.
    if err := s.SelectSlot(slotDate, 25000); err != nil {
        t.Fatalf("re-select: %v", err)
    }
    if err := s.SubmitCreative(creative()); err != nil {
        t.Fatal(err)
    }
    if err := s.Back(); err != nil {
        t.Fatal(err)
    }
    if got, ok := s.Creative(); !ok || got.Copy == "" {
        t.Fatal("creative lost after back")
    }
}

func TestValidationGatesAdvancing(t *testing.T) {
    s := NewSession(context.Background(), 7)
    if err := s.SelectSlot(slotDate, 25000); err != nil {
        t.Fatal(err)
    }
    long := creative()
    long.Copy = strings.Repeat("x", 281)
    err := s.SubmitCreative(long)
    if !errors.Is(err, validation.ErrValidation) {
        t.Fatalf("281-char copy advanced the wizard: %v", err)
    }
    if s.Step() != StepAdDetails {
        t.Fatalf("step moved despite validation failure: %v", s.Step())
    }
}

func TestStepOrderEnforced(t *testing.T) {
    s := NewSession(context.Background(), 7)
    if err := s.SubmitCreative(creative()); !errors.Is(err, ErrWrongStep) {
        t.Fatalf("creative accepted before slot: %v", err)
    }
    if err := s.CompletePayment(); !errors.Is(err, ErrWrongStep) {
        t.Fatalf("payment accepted at start: %v", err)
    }
    if err := s.Back(); !errors.Is(err, ErrWrongStep) {
        t.Fatalf("back allowed from first step: %v", err)
    }
}

func TestConfirmationIsTerminal(t *testing.T) {
    s := NewSession(context.Background(), 7)
    _ = s.SelectSlot(slotDate, 25000)
    _ = s.SubmitCreative(creative())
    _ = s.CompletePayment()

    if err := s.Back(); !errors.Is(err, ErrWrongStep) {
        t.Fatalf("back allowed from confirmation: %v", err)
    }
    if err := s.SelectSlot(slotDate, 25000); !errors.Is(err, ErrWrongStep) {
        t.Fatalf("re-select allowed after confirmation: %v", err)
    }
}

func TestBeginPaymentClaimsOnce(t *testing.T) {
    s := NewSession(context.Background(), 7)
    _ = s.SelectSlot(slotDate, 25000)
    _ = s.SubmitCreative(creative())

    if err := s.BeginPayment(); err != nil {
        t.Fatalf("BeginPayment: %v", err)
    }
    if err := s.BeginPayment(); !errors.Is(err, ErrCheckoutInFlight) {
        t.Fatalf("second claim: got %v, want ErrCheckoutInFlight", err)
    }
    if err := s.Back(); !errors.Is(err, ErrCheckoutInFlight) {
        t.Fatalf("back with claim held: got %v, want ErrCheckoutInFlight", err)
    }

    s.AbortPayment()
    if err := s.BeginPayment(); err != nil {
        t.Fatalf("claim after abort: %v", err)
    }
    if err := s.CompletePayment(); err != nil {
        t.Fatalf("CompletePayment: %v", err)
    }
    if !s.Done() {
        t.Fatal("session not done after payment")
    }
}

func TestBeginPaymentConcurrentClaims(t *testing.T) {
    s := NewSession(context.Background(), 7)
    _ = s.SelectSlot(slotDate, 25000)
    _ = s.SubmitCreative(creative())

    const n = 16
    var wg sync.WaitGroup
    var won int32
    for i := 0; i < n; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            if s.BeginPayment() == nil {
                atomic.AddInt32(&won, 1)
            }
        }()
    }
    wg.Wait()
    if won != 1 {
        t.Fatalf("claims won = %d, want exactly 1", won)
    }
}

func TestBeginPaymentRequiresPaymentStep(t *testing.T) {
    s := NewSession(context.Background(), 7)
    if err := s.BeginPayment(); !errors.Is(err, ErrWrongStep) {
        t.Fatalf("claim at start: got %v, want ErrWrongStep", err)
    }
    _ = s.SelectSlot(slotDate, 25000)
    if err := s.BeginPayment(); !errors.Is(err, ErrWrongStep) {
        t.Fatalf("claim on ad details: got %v, want ErrWrongStep", err)
    }
}

func TestCancelledContextClosesSession(t *testing.T) {
    ctx, cancel := context.WithCancel(context.Background())
    s := NewSession(ctx, 7)
    if err := s.SelectSlot(slotDate, 25000); err != nil {
        t.Fatal(err)
    }
    cancel()
    if err := s.SubmitCreative(creative()); !errors.Is(err, ErrClosed) {
        t.Fatalf("transition after cancel: %v", err)
    }
}
