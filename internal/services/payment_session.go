package services

import (
	"sync"
	"time"

	"github.com/tesvanthan/ticketbooking/internal/models"
)

// PaymentSession tracks a single payment attempt against its deadline.
// It owns the countdown goroutine and the payment sub-state. The expiry
// callback fires at most once, and never while a submission is processing:
// an in-flight charge is allowed to finish, and only a non-success outcome
// after the deadline converts into expiry.
type PaymentSession struct {
	mu sync.Mutex

	bookingID string
	status    models.PaymentStatus
	method    models.PaymentMethod
	data      models.PaymentData

	expiresAt      time.Time
	remaining      int
	deadlinePassed bool

	tick      time.Duration
	stop      chan struct{}
	stopOnce  sync.Once
	onExpired func()

	transactionID string
}

// NewPaymentSession creates an unstarted payment session for a booking
func NewPaymentSession(bookingID string, expiry time.Duration, onExpired func()) *PaymentSession {
	return &PaymentSession{
		bookingID: bookingID,
		status:    models.PaymentSelecting,
		remaining: int(expiry / time.Second),
		expiresAt: time.Now().Add(expiry),
		tick:      time.Second,
		stop:      make(chan struct{}),
		onExpired: onExpired,
	}
}

// Start launches the countdown goroutine
func (p *PaymentSession) Start() {
	go p.countdown()
}

// Cancel stops the countdown without firing the expiry callback
func (p *PaymentSession) Cancel() {
	p.stopOnce.Do(func() { close(p.stop) })
}

func (p *PaymentSession) countdown() {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			if expired := p.tickDown(); expired {
				p.Cancel()
				if p.onExpired != nil {
					p.onExpired()
				}
				return
			}
			if p.doneTicking() {
				p.Cancel()
				return
			}
		}
	}
}

// tickDown decrements the timer and reports whether the session just
// expired. Hitting zero while a submission is processing only marks the
// deadline as passed - the outcome of that submission decides the rest.
func (p *PaymentSession) tickDown() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.remaining > 0 {
		p.remaining--
	}
	if p.remaining > 0 || p.status.IsTerminal() {
		return false
	}

	p.deadlinePassed = true
	if p.status == models.PaymentProcessing {
		return false
	}

	p.status = models.PaymentExpired
	p.data = models.PaymentData{}
	return true
}

func (p *PaymentSession) doneTicking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status.IsTerminal()
}

// Remaining returns the seconds left on the payment deadline
func (p *PaymentSession) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remaining
}

// Status returns the current payment sub-state
func (p *PaymentSession) Status() models.PaymentStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// SelectMethod records the chosen payment method and moves the session
// into details entry
func (p *PaymentSession) SelectMethod(method models.PaymentMethod) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status.IsTerminal() {
		return models.NewConflictError("payment session is closed")
	}
	if p.status == models.PaymentProcessing {
		return models.NewConflictError("a payment is already being processed")
	}

	p.method = method
	p.status = models.PaymentDetailsEntry
	return nil
}

// BeginSubmit validates the entered details and moves the session into
// processing. It fails if the deadline already passed, no method was
// selected, or another submission is in flight.
func (p *PaymentSession) BeginSubmit(data models.PaymentData) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.status == models.PaymentExpired:
		return models.NewConflictError("payment time expired")
	case p.status.IsTerminal():
		return models.NewConflictError("payment session is closed")
	case p.status == models.PaymentProcessing:
		return models.NewConflictError("a payment is already being processed")
	case p.method == "":
		return models.NewValidationError("please select a payment method")
	}

	if err := models.ValidatePaymentData(p.method, data); err != nil {
		return models.NewValidationError(err.Error())
	}

	p.data = data
	p.status = models.PaymentProcessing
	return nil
}

// CompleteSubmit records the outcome of an in-flight submission. A success
// stands even if the deadline passed while processing. A failure after the
// deadline becomes an expiry; expired reports whether that happened. On
// plain failure the session returns to method selection with the method
// kept so the user can retry.
func (p *PaymentSession) CompleteSubmit(result *models.PaymentResult, submitErr error) (expired bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != models.PaymentProcessing {
		return false
	}

	if submitErr == nil && result.Succeeded() {
		p.status = models.PaymentSucceeded
		p.transactionID = result.TransactionID
		return false
	}

	if p.deadlinePassed {
		p.status = models.PaymentExpired
		p.data = models.PaymentData{}
		return true
	}

	p.status = models.PaymentSelecting
	p.data = models.PaymentData{}
	return false
}

// Snapshot returns the externally visible view of the payment attempt
func (p *PaymentSession) Snapshot() *models.PaymentSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	return &models.PaymentSnapshot{
		BookingID:        p.bookingID,
		Status:           p.status,
		Method:           p.method,
		RemainingSeconds: p.remaining,
		ExpiresAt:        p.expiresAt,
		TransactionID:    p.transactionID,
	}
}

// Method returns the selected payment method, if any
func (p *PaymentSession) Method() models.PaymentMethod {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.method
}

// Data returns the entered payment details
func (p *PaymentSession) Data() models.PaymentData {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data
}
