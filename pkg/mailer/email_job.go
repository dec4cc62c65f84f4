package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// A job either carries a rendered message or names a template to render
// with Data in the worker.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "reset_password"
	Data     map[string]any `json:"data,omitempty"`
}

// Message converts a rendered job back into a Message.
func (j EmailJob) Message() Message {
	return Message{To: j.To, Subject: j.Subject, Text: j.Text, HTML: j.HTML}
}

// JobFrom wraps an already rendered message.
func JobFrom(m Message) EmailJob {
	return EmailJob{To: m.To, Subject: m.Subject, Text: m.Text, HTML: m.HTML}
}
