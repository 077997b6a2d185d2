package queue

// MailQueueName is the durable queue carrying outbound mail messages.
const MailQueueName = "email.outbound"

// MailMessage is the payload published for every outbound email. The
// consumer delivers it over SMTP (or logs it when SMTP is not
// configured).
type MailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
