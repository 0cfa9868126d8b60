package services

import (
	"fmt"
	"os"

	"pillpall/internal/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	fromEmail := os.Getenv("SENDGRID_NOTIFICATIONS_FROM_EMAIL")
	fromName := os.Getenv("SENDGRID_FROM_NAME")

	client := sendgrid.NewSendClient(apiKey)

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// SendRefillAlertToCaregivers emails every caregiver with notifications
// enabled that the user's medicine supply has reached its refill threshold
func (s *EmailService) SendRefillAlertToCaregivers(user models.User, medicine models.Medicine, caregivers []models.Caregiver) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	subject := fmt.Sprintf("Refill needed: %s", medicine.Name)

	userName := user.FirstName
	if userName == "" {
		userName = user.Email
	}

	for _, caregiver := range caregivers {
		if !caregiver.CanReceiveEmail() {
			continue
		}

		to := mail.NewEmail(caregiver.Name, caregiver.Email)

		plainContent := fmt.Sprintf("Hello %s, %s has only %d doses of %s (%s) left. Time to arrange a refill.",
			caregiver.Name, userName, medicine.RemainingCount, medicine.Name, medicine.Dosage)

		htmlContent := fmt.Sprintf("<p>Hello %s,</p><p>%s has only <strong>%d</strong> doses of <strong>%s</strong> (%s) left.</p><p>Time to arrange a refill.</p>",
			caregiver.Name, userName, medicine.RemainingCount, medicine.Name, medicine.Dosage)

		message := mail.NewSingleEmail(from, subject, to, plainContent, htmlContent)

		response, err := s.client.Send(message)
		if err != nil {
			return err
		}

		if response.StatusCode >= 400 {
			return fmt.Errorf("failed to send email to %s: %d", caregiver.Email, response.StatusCode)
		}
	}

	return nil
}
