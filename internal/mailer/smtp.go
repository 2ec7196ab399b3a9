package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/GlebRadaev/tokenwallet/internal/config"
)

const implicitTLSPort = 465

type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPass,
		from:     cfg.FromEmail,
	}
}

func (s *SMTPSender) message(c Credentials) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(c.Email); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(Subject)
	m.SetBodyString(mail.TypeTextPlain, Body(c))
	return m, nil
}

func (s *SMTPSender) options() []mail.Option {
	var opts []mail.Option
	if s.port == implicitTLSPort {
		opts = append(opts, mail.WithSSLPort(false))
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}
	// the TLS options reset the port, so the explicit one goes last
	opts = append(opts, mail.WithPort(s.port))
	if s.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.username),
			mail.WithPassword(s.password),
		)
	}
	return opts
}

func (s *SMTPSender) Send(ctx context.Context, c Credentials) error {
	m, err := s.message(c)
	if err != nil {
		return err
	}
	client, err := mail.NewClient(s.host, s.options()...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
