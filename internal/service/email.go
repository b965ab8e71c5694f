package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailService struct {
	fromEmail string
	fromName  string
	send      func(*mail.SGMailV3) error
}

// NewEmailService sends customer notifications through SendGrid.
func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	client := sendgrid.NewSendClient(apiKey)
	return &emailService{
		fromEmail: fromEmail,
		fromName:  fromName,
		send: func(msg *mail.SGMailV3) error {
			response, err := client.Send(msg)
			if err != nil {
				return fmt.Errorf("failed to send email: %w", err)
			}
			if response.StatusCode >= 400 {
				return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
			}
			return nil
		},
	}
}

func (s *emailService) deliver(ctx context.Context, to, toName, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	htmlBody := "<p>" + strings.ReplaceAll(html.EscapeString(body), "\n", "<br>") + "</p>"
	message := mail.NewSingleEmail(from, subject, recipient, body, htmlBody)

	logger.ExternalServiceCall("SendGrid", "Send", "to", to, "subject", subject)
	err := s.send(message)
	logger.ExternalServiceResult("SendGrid", "Send", err)
	return err
}

func (s *emailService) SendRequestReceived(ctx context.Context, req *domain.BorrowRequest, car *domain.Car) error {
	carName := "your car"
	if car != nil {
		carName = car.DisplayName()
	}
	subject := fmt.Sprintf("We received your booking request #%d", req.ID)
	body := fmt.Sprintf("Hello %s,\n\nThank you for your request for %s from %s %s to %s %s.\nEstimated total: %.2f\n\nWe will confirm availability shortly.\n\n%s",
		req.CustomerFirstName, carName, req.StartDate, req.StartTime, req.EndDate, req.EndTime, req.TotalAmount, s.fromName)
	return s.deliver(ctx, req.CustomerEmail, req.CustomerName(), subject, body)
}

func (s *emailService) SendRequestAccepted(ctx context.Context, req *domain.BorrowRequest, rental *domain.Rental) error {
	subject := fmt.Sprintf("Your booking #%d is confirmed", req.ID)
	body := fmt.Sprintf("Hello %s,\n\nYour booking is confirmed. Pickup: %s %s. Return: %s %s.\nTotal: %.2f\n\n%s",
		req.CustomerFirstName, rental.StartDate, rental.StartTime, rental.EndDate, rental.EndTime, rental.TotalAmount, s.fromName)
	return s.deliver(ctx, req.CustomerEmail, req.CustomerName(), subject, body)
}

func (s *emailService) SendRequestRejected(ctx context.Context, req *domain.BorrowRequest, reason string) error {
	subject := fmt.Sprintf("Update on your booking request #%d", req.ID)
	body := fmt.Sprintf("Hello %s,\n\nUnfortunately we cannot accept your request for %s to %s.", req.CustomerFirstName, req.StartDate, req.EndDate)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\n" + s.fromName
	return s.deliver(ctx, req.CustomerEmail, req.CustomerName(), subject, body)
}

func (s *emailService) SendRentalCancelled(ctx context.Context, req *domain.BorrowRequest) error {
	subject := fmt.Sprintf("Your booking #%d was cancelled", req.ID)
	body := fmt.Sprintf("Hello %s,\n\nYour confirmed booking from %s to %s has been cancelled and your request is back under review.\n\n%s",
		req.CustomerFirstName, req.StartDate, req.EndDate, s.fromName)
	return s.deliver(ctx, req.CustomerEmail, req.CustomerName(), subject, body)
}

type noopEmailService struct{}

// NewNoopEmailService is used when no SendGrid key is configured.
func NewNoopEmailService() EmailService {
	return noopEmailService{}
}

func (noopEmailService) SendRequestReceived(ctx context.Context, req *domain.BorrowRequest, car *domain.Car) error {
	logger.Debug("Email disabled, skipping request confirmation", "request_id", req.ID)
	return nil
}

func (noopEmailService) SendRequestAccepted(ctx context.Context, req *domain.BorrowRequest, rental *domain.Rental) error {
	logger.Debug("Email disabled, skipping acceptance", "request_id", req.ID)
	return nil
}

func (noopEmailService) SendRequestRejected(ctx context.Context, req *domain.BorrowRequest, reason string) error {
	logger.Debug("Email disabled, skipping rejection", "request_id", req.ID)
	return nil
}

func (noopEmailService) SendRentalCancelled(ctx context.Context, req *domain.BorrowRequest) error {
	logger.Debug("Email disabled, skipping cancellation", "request_id", req.ID)
	return nil
}
