package services

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tesvanthan/ticketbooking/internal/models"
)

// fastSession builds a payment session whose countdown ticks every
// millisecond, so a "second" of wall time passes almost instantly
func fastSession(t *testing.T, seconds int, onExpired func()) *PaymentSession {
	t.Helper()
	p := NewPaymentSession("booking-1", time.Duration(seconds)*time.Second, onExpired)
	p.tick = time.Millisecond
	return p
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestPaymentSession_CountdownExpires(t *testing.T) {
	var expirations int32
	p := fastSession(t, 3, func() { atomic.AddInt32(&expirations, 1) })

	assert.Equal(t, 3, p.Remaining())
	p.Start()

	waitFor(t, time.Second, func() bool { return p.Status() == models.PaymentExpired })
	assert.Equal(t, 0, p.Remaining())

	// The callback fires exactly once even though the ticker keeps a
	// moment to shut down
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&expirations))
}

func TestPaymentSession_CancelStopsCountdown(t *testing.T) {
	var expirations int32
	p := fastSession(t, 2, func() { atomic.AddInt32(&expirations, 1) })
	p.Start()
	p.Cancel()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&expirations))
	assert.NotEqual(t, models.PaymentExpired, p.Status())
}

func TestPaymentSession_SelectMethodAndSubmit(t *testing.T) {
	p := fastSession(t, 300, nil)

	// Submitting before a method is selected is rejected
	err := p.BeginSubmit(models.PaymentData{})
	require.Error(t, err)

	require.NoError(t, p.SelectMethod(models.MethodCreditCard))
	assert.Equal(t, models.PaymentDetailsEntry, p.Status())

	// Card details are validated client-side
	err = p.BeginSubmit(models.PaymentData{CardNumber: "4111111111111111"})
	require.Error(t, err)
	assert.Equal(t, models.ErrKindValidation, models.KindOf(err))

	data := models.PaymentData{
		CardNumber:     "4111111111111111",
		ExpiryDate:     "12/27",
		CVV:            "123",
		CardHolderName: "SOK DARA",
	}
	require.NoError(t, p.BeginSubmit(data))
	assert.Equal(t, models.PaymentProcessing, p.Status())

	// A second submission while one is in flight is rejected
	err = p.BeginSubmit(data)
	require.Error(t, err)
	assert.Equal(t, models.ErrKindConflict, models.KindOf(err))

	expired := p.CompleteSubmit(&models.PaymentResult{Status: "success", TransactionID: "tx-1"}, nil)
	assert.False(t, expired)
	assert.Equal(t, models.PaymentSucceeded, p.Status())
	assert.Equal(t, "tx-1", p.Snapshot().TransactionID)
}

func TestPaymentSession_FailureKeepsMethod(t *testing.T) {
	p := fastSession(t, 300, nil)
	require.NoError(t, p.SelectMethod(models.MethodPayPal))
	require.NoError(t, p.BeginSubmit(models.PaymentData{}))

	expired := p.CompleteSubmit(nil, models.NewPaymentDeclinedError("declined"))
	assert.False(t, expired)

	// Back to method selection with the method preserved for a retry
	assert.Equal(t, models.PaymentSelecting, p.Status())
	assert.Equal(t, models.MethodPayPal, p.Method())
}

func TestPaymentSession_ExpirySuppressedWhileProcessing(t *testing.T) {
	var expirations int32
	p := fastSession(t, 2, func() { atomic.AddInt32(&expirations, 1) })
	require.NoError(t, p.SelectMethod(models.MethodCreditCard))
	require.NoError(t, p.BeginSubmit(models.PaymentData{
		CardNumber:     "4111111111111111",
		ExpiryDate:     "12/27",
		CVV:            "123",
		CardHolderName: "SOK DARA",
	}))

	p.Start()
	waitFor(t, time.Second, func() bool { return p.Remaining() == 0 })

	// Deadline passed but the in-flight submission suppresses expiry
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, models.PaymentProcessing, p.Status())
	assert.Equal(t, int32(0), atomic.LoadInt32(&expirations))

	// A success landing after the deadline still stands
	expired := p.CompleteSubmit(&models.PaymentResult{Status: "success", TransactionID: "tx-9"}, nil)
	assert.False(t, expired)
	assert.Equal(t, models.PaymentSucceeded, p.Status())
}

func TestPaymentSession_FailureAfterDeadlineExpires(t *testing.T) {
	p := fastSession(t, 2, nil)
	require.NoError(t, p.SelectMethod(models.MethodCreditCard))
	require.NoError(t, p.BeginSubmit(models.PaymentData{
		CardNumber:     "4111111111111111",
		ExpiryDate:     "12/27",
		CVV:            "123",
		CardHolderName: "SOK DARA",
	}))

	p.Start()
	waitFor(t, time.Second, func() bool { return p.Remaining() == 0 })

	expired := p.CompleteSubmit(nil, models.NewPaymentDeclinedError("declined"))
	assert.True(t, expired)
	assert.Equal(t, models.PaymentExpired, p.Status())

	// Submissions against an expired session are refused
	err := p.BeginSubmit(models.PaymentData{})
	require.Error(t, err)
}
