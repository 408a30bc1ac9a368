package mailer

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendLifecycleNotice(toEmail, eventType string, payload map[string]interface{}) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	frontendURL string // Added to construct links
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	// Get Frontend URL from ENV or default to a safe placeholder
	frontendURL := os.Getenv("CLIENT_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		frontendURL: frontendURL,
	}
}

// lifecycleTemplate holds the subject and the body lead for one notice type.
type lifecycleTemplate struct {
	subject string
	lead    string
	cta     string
}

var lifecycleTemplates = map[string]lifecycleTemplate{
	"SUBSCRIPTION_CREATED": {
		subject: "Welcome to Rentora!",
		lead:    "Your subscription is now active. You can start listing properties right away.",
		cta:     "Go to Dashboard",
	},
	"SUBSCRIPTION_RENEWED": {
		subject: "Your subscription has been renewed",
		lead:    "Your payment went through and your subscription has been extended.",
		cta:     "View Subscription",
	},
	"TRIAL_ENDING_SOON": {
		subject: "Your trial is ending soon",
		lead:    "Your free trial ends in a few days. Add a payment method to keep your listings live.",
		cta:     "Choose a Plan",
	},
	"SUBSCRIPTION_EXPIRING_SOON": {
		subject: "Your subscription expires soon",
		lead:    "Your current period ends in a few days and will not renew automatically.",
		cta:     "Renew Now",
	},
	"RENEWAL_REMINDER": {
		subject: "Renewal reminder",
		lead:    "Your subscription period is about to end. Renew to keep full access.",
		cta:     "Renew Now",
	},
	"SUBSCRIPTION_EXPIRED": {
		subject: "Your subscription has expired",
		lead:    "Your subscription period has ended. Your account has moved to the free plan.",
		cta:     "Reactivate",
	},
	"PAYMENT_FAILED": {
		subject: "Payment failed",
		lead:    "We could not process your renewal payment. Please update your payment method. We'll retry for a few days before the subscription is cancelled.",
		cta:     "Update Payment Method",
	},
	"SUBSCRIPTION_CANCELLED": {
		subject: "Your subscription has been cancelled",
		lead:    "Your subscription is now cancelled. We're sorry to see you go.",
		cta:     "Resubscribe",
	},
}

// SendLifecycleNotice sends the templated email for a lifecycle event.
// Unknown event types are silently skipped; not every bus event has an
// email counterpart.
func (s *emailService) SendLifecycleNotice(toEmail, eventType string, payload map[string]interface{}) error {
	tmpl, ok := lifecycleTemplates[eventType]
	if !ok {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", tmpl.subject)

	link := fmt.Sprintf("%s/account/subscription", s.frontendURL)
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s</h2>
			<p>%s</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">%s</a>
			<p>If you have any questions, just reply to this email.</p>
		</div>
	`, tmpl.subject, tmpl.lead, link, tmpl.cta)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send %s to %s: %v\n", eventType, toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] %s sent to %s\n", eventType, toEmail)
	return nil
}
