package service

import (
	"context"
	"errors"
	"testing"

	"carrental-backend/internal/domain"

	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCapturingEmailService(sendErr error) (*emailService, *[]*mail.SGMailV3) {
	var sent []*mail.SGMailV3
	svc := &emailService{
		fromEmail: "bookings@example.com",
		fromName:  "Car Rental",
		send: func(msg *mail.SGMailV3) error {
			sent = append(sent, msg)
			return sendErr
		},
	}
	return svc, &sent
}

func TestEmailService_Messages(t *testing.T) {
	ctx := context.Background()
	req := pendingRequest()

	t.Run("Rejection carries the reason", func(t *testing.T) {
		svc, sent := newCapturingEmailService(nil)
		require.NoError(t, svc.SendRequestRejected(ctx, req, "car in <repair>"))

		require.Len(t, *sent, 1)
		msg := (*sent)[0]
		assert.Equal(t, "Update on your booking request #11", msg.Subject)
		assert.Equal(t, "bookings@example.com", msg.From.Address)
		assert.Equal(t, "jane@example.com", msg.Personalizations[0].To[0].Address)
		assert.Contains(t, msg.Content[0].Value, "Reason: car in <repair>")
		// HTML part is escaped
		assert.Contains(t, msg.Content[1].Value, "car in &lt;repair&gt;")
	})

	t.Run("Acceptance", func(t *testing.T) {
		svc, sent := newCapturingEmailService(nil)
		rental := &domain.Rental{StartDate: "2025-06-10", StartTime: "10:00", EndDate: "2025-06-13", EndTime: "10:00", TotalAmount: 3000}
		require.NoError(t, svc.SendRequestAccepted(ctx, req, rental))
		assert.Contains(t, (*sent)[0].Content[0].Value, "Total: 3000.00")
	})

	t.Run("Send errors surface", func(t *testing.T) {
		svc, _ := newCapturingEmailService(errors.New("sendgrid error: status 401"))
		assert.Error(t, svc.SendRentalCancelled(ctx, req))
	})

	t.Run("Cancelled context skips sending", func(t *testing.T) {
		svc, sent := newCapturingEmailService(nil)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, svc.SendRequestReceived(cctx, req, testCar()), context.Canceled)
		assert.Empty(t, *sent)
	})
}

func TestNoopEmailService(t *testing.T) {
	svc := NewNoopEmailService()
	assert.NoError(t, svc.SendRequestReceived(context.Background(), pendingRequest(), nil))
	assert.NoError(t, svc.SendRentalCancelled(context.Background(), pendingRequest()))
}
