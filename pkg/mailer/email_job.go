package mailer

// Template names understood by the email worker.
const (
	TemplateConfirmEmail  = "confirm_email"
	TemplateResetPassword = "reset_password"
	TemplateChangeEmail   = "change_email"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// HTML is optional; Text is recommended as fallback. Token delivery jobs set
// Template and Data instead of raw bodies.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}
