// Package wizard drives the sponsor booking flow as a linear state
// machine: select a week, fill in ad details, pay, confirm.  Each
// session belongs to one sponsor and one listing; forward transitions
// are gated by per-step validation and Back never discards previously
// entered data.  A session is tied to a context so nothing can advance
// it after the initiating request scope is gone.
package wizard

import (
    "context"
    "errors"
    "sync"
    "time"

    "github.com/adsloty/adsloty/internal/model"
    "github.com/adsloty/adsloty/internal/validation"
)

// Step identifies a wizard state.
type Step int

const (
    StepSelectWeek Step = iota
    StepAdDetails
    StepPayment
    StepConfirmation
)

// String returns the step name used in API responses.
func (s Step) String() string {
    switch s {
    case StepSelectWeek:
        return "select_week"
    case StepAdDetails:
        return "ad_details"
    case StepPayment:
        return "payment"
    case StepConfirmation:
        return "confirmation"
    default:
        return "unknown"
    }
}

var (
    // ErrClosed is returned when the session's context has been
    // cancelled or the wizard already reached its terminal state.
    ErrClosed = errors.New("wizard session closed")
    // ErrWrongStep is returned when an operation does not belong to
    // the current step.
    ErrWrongStep = errors.New("operation not valid for current step")
    // ErrNoSlot is returned when advancing without a selected slot.
    ErrNoSlot = errors.New("no slot selected")
    // ErrCheckoutInFlight is returned when a checkout claim is already
    // held for the session and has not completed or been released.
    ErrCheckoutInFlight = errors.New("checkout already in progress")
)

// Session is one sponsor's pass through the booking flow.  All methods
// are safe for concurrent use; the flow itself is inherently sequential
// per session.
type Session struct {
    mu sync.Mutex

    ctx      context.Context
    step     Step
    writerID uint64

    slotDate   time.Time
    priceCents uint32
    hasSlot    bool

    creative    model.AdCreative
    hasCreative bool

    paying bool // a checkout claim is held
}

// NewSession opens a wizard session for booking a slot on the given
// writer's newsletter.  The session refuses transitions once ctx is
// done.
func NewSession(ctx context.Context, writerID uint64) *Session {
    return &Session{ctx: ctx, step: StepSelectWeek, writerID: writerID}
}

func (s *Session) alive() error {
    if err := s.ctx.Err(); err != nil {
        return ErrClosed
    }
    return nil
}

// Step returns the current state.
func (s *Session) Step() Step {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.step
}

// WriterID returns the listing this session is booking against.
func (s *Session) WriterID() uint64 { return s.writerID }

// SelectSlot commits a week and its captured price as the context for
// the rest of the flow and advances to the ad-details step.  Only valid
// in the select-week step.
func (s *Session) SelectSlot(date time.Time, priceCents uint32) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if err := s.alive(); err != nil {
        return err
    }
    if s.step != StepSelectWeek {
        return ErrWrongStep
    }
    s.slotDate = date
    s.priceCents = priceCents
    s.hasSlot = true
    s.step = StepAdDetails
    return nil
}

// SubmitCreative validates the ad content and advances to the payment
// step.  Invalid creatives leave the session on the ad-details step with
// prior data intact.
func (s *Session) SubmitCreative(c model.AdCreative) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if err := s.alive(); err != nil {
        return err
    }
    if s.step != StepAdDetails {
        return ErrWrongStep
    }
    sanitized, err := validation.ValidateCreative(c)
    if err != nil {
        return err
    }
    s.creative = sanitized
    s.hasCreative = true
    s.step = StepPayment
    return nil
}

// BeginPayment atomically claims the payment step for one checkout
// attempt.  A second claim before CompletePayment or AbortPayment fails
// with ErrCheckoutInFlight, so a session can never hold two live
// checkouts for the same week.
func (s *Session) BeginPayment() error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if err := s.alive(); err != nil {
        return err
    }
    if s.step != StepPayment {
        return ErrWrongStep
    }
    if !s.hasSlot || !s.hasCreative {
        return ErrNoSlot
    }
    if s.paying {
        return ErrCheckoutInFlight
    }
    s.paying = true
    return nil
}

// AbortPayment releases a claim taken by BeginPayment after a failed
// checkout attempt, leaving the session on the payment step.
func (s *Session) AbortPayment() {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.paying = false
}

// CompletePayment marks the payment step done and moves the session to
// its terminal confirmation state.  The caller performs the actual
// checkout and booking creation; the wizard only tracks flow state.
func (s *Session) CompletePayment() error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if err := s.alive(); err != nil {
        return err
    }
    if s.step != StepPayment {
        return ErrWrongStep
    }
    if !s.hasSlot || !s.hasCreative {
        return ErrNoSlot
    }
    s.paying = false
    s.step = StepConfirmation
    return nil
}

// Back returns to the immediately preceding step without discarding any
// previously entered data.  The confirmation step is terminal and the
// first step has nothing to go back to; both return ErrWrongStep.
func (s *Session) Back() error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if err := s.alive(); err != nil {
        return err
    }
    switch s.step {
    case StepAdDetails:
        s.step = StepSelectWeek
    case StepPayment:
        if s.paying {
            return ErrCheckoutInFlight
        }
        s.step = StepAdDetails
    default:
        return ErrWrongStep
    }
    return nil
}

// Slot returns the committed slot context, if one has been selected.
func (s *Session) Slot() (date time.Time, priceCents uint32, ok bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.slotDate, s.priceCents, s.hasSlot
}

// Creative returns the submitted ad content, if any.
func (s *Session) Creative() (model.AdCreative, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.creative, s.hasCreative
}

// Done reports whether the session reached its terminal state.
func (s *Session) Done() bool {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.step == StepConfirmation
}
