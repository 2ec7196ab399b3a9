package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/GlebRadaev/tokenwallet/internal/config"
)

func TestSMTPSender_Message(t *testing.T) {
	s := NewSMTPSender(&config.Config{FromEmail: "noreply@example.com", SMTPHost: "smtp.example.com", SMTPPort: 587})

	m, err := s.message(creds)
	require.NoError(t, err)
	assert.Equal(t, []string{"<alice@example.com>"}, m.GetToString())
	assert.Equal(t, []string{Subject}, m.GetGenHeader(mail.HeaderSubject))

	_, err = s.message(Credentials{Email: "not an address", Username: "bob"})
	assert.Error(t, err)

	bad := NewSMTPSender(&config.Config{FromEmail: "", SMTPHost: "smtp.example.com"})
	_, err = bad.message(creds)
	assert.Error(t, err)
}

func TestSMTPSender_Options(t *testing.T) {
	implicit := NewSMTPSender(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 465})
	assert.Len(t, implicit.options(), 2)

	authed := NewSMTPSender(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPUser: "u", SMTPPass: "p"})
	assert.Len(t, authed.options(), 5)

	for _, s := range []*SMTPSender{implicit, authed} {
		_, err := mail.NewClient(s.host, s.options()...)
		assert.NoError(t, err)
	}
}
