package mail

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

func NewSMTPSender(host string, port int, user, password, from, fromName string) *SMTPSender {
	return &SMTPSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		FromName: fromName,
	}
}

// Send monta a mensagem com o HTML já renderizado e entrega via SMTP.
func (s *SMTPSender) Send(ctx context.Context, email entity.EmailTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.From, s.FromName)
	if email.ToName != "" {
		m.SetAddressHeader("To", email.To, email.ToName)
	} else {
		m.SetHeader("To", email.To)
	}
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/html", email.HTML)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	log.WithFields(log.Fields{"to": email.To, "template": email.Template}).Debug("📨 e-mail entregue via SMTP")
	return nil
}
