package notification

import (
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/raykavin/candleline/pkg/logger"
)

const mailSubject = "candleline trend lines"

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mail sends trend line notices over SMTP to a single recipient
type Mail struct {
	addr string
	auth smtp.Auth
	from string
	to   string
	log  logger.Logger
	send sendMailFunc
}

// MailParams contains all parameters needed to initialize a Mail instance
type MailParams struct {
	SMTPServerPort    int
	SMTPServerAddress string
	To                string
	From              string
	Password          string
}

func NewMail(params MailParams, log logger.Logger) Mail {
	return Mail{
		addr: net.JoinHostPort(params.SMTPServerAddress, strconv.Itoa(params.SMTPServerPort)),
		auth: smtp.PlainAuth("", params.From, params.Password, params.SMTPServerAddress),
		from: params.From,
		to:   params.To,
		log:  log.WithField("notifier", "mail"),
		send: smtp.SendMail,
	}
}

func (m Mail) message(subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "To: <%s>\r\n", m.to)
	fmt.Fprintf(&b, "From: candleline <%s>\r\n", m.from)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

func (m Mail) deliver(subject, body string) {
	if err := m.send(m.addr, m.auth, m.from, []string{m.to}, m.message(subject, body)); err != nil {
		m.log.WithError(err).Error("failed to send email")
	}
}

func (m Mail) Notify(text string) {
	m.deliver(mailSubject, text)
}

// OnError mails a failed trend line write
func (m Mail) OnError(err error) {
	m.deliver(mailSubject+": write failed", err.Error())
}
