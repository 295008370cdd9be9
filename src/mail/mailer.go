package mail

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Sender delivers community mail. Delivery is best effort: callers log
// failures and decide whether the surrounding flow can continue.
type Sender interface {
	SendRecoveryCode(to, code string) error
	SendNewPassword(to, password string) error
}

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, user, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (m *Mailer) SendRecoveryCode(to, code string) error {
	return m.send(to, "8th Wonderland - password recovery",
		fmt.Sprintf("<p>Your password recovery code: <b>%s</b></p>"+
			"<p>The code expires in 15 minutes.</p>", code))
}

func (m *Mailer) SendNewPassword(to, password string) error {
	return m.send(to, "8th Wonderland - new password",
		fmt.Sprintf("<p>Your new password: <b>%s</b></p>"+
			"<p>Change it from your profile after logging in.</p>", password))
}

func (m *Mailer) send(to, subject, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)
	return m.dialer.DialAndSend(msg)
}
