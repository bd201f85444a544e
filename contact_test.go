package trailblog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypergopher/trailblog"
)

type fakeMailer struct {
	sent    []sentMail
	sendErr error
}

type sentMail struct {
	replyTo string
	subject string
	body    string
}

func (m *fakeMailer) Send(ctx context.Context, replyTo, subject, body string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMail{replyTo: replyTo, subject: subject, body: body})
	return nil
}

func TestContactMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     trailblog.ContactMessage
		wantErr bool
	}{
		{
			name: "valid",
			msg:  trailblog.ContactMessage{Author: "Jane Doe", Email: "jane@example.com", Message: "Hello from the trail"},
		},
		{
			name: "valid without email",
			msg:  trailblog.ContactMessage{Author: "Jane Doe", Message: "Hello"},
		},
		{
			name: "valid with hyphen and underscore",
			msg:  trailblog.ContactMessage{Author: "Mary-Jane_S", Message: "Hello"},
		},
		{
			name:    "name too short",
			msg:     trailblog.ContactMessage{Author: "J", Message: "Hello"},
			wantErr: true,
		},
		{
			name:    "name too long",
			msg:     trailblog.ContactMessage{Author: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Message: "Hello"},
			wantErr: true,
		},
		{
			name:    "name with digits",
			msg:     trailblog.ContactMessage{Author: "Jane99", Message: "Hello"},
			wantErr: true,
		},
		{
			name:    "empty message",
			msg:     trailblog.ContactMessage{Author: "Jane Doe", Email: "jane@example.com"},
			wantErr: true,
		},
		{
			name:    "malformed email",
			msg:     trailblog.ContactMessage{Author: "Jane Doe", Email: "not-an-email", Message: "Hello"},
			wantErr: true,
		},
		{
			name:    "email missing domain dot",
			msg:     trailblog.ContactMessage{Author: "Jane Doe", Email: "jane@example", Message: "Hello"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, trailblog.ErrInvalidContact)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRelayContact(t *testing.T) {
	ctx := context.Background()
	mailer := &fakeMailer{}

	msg := trailblog.ContactMessage{
		Author:  "Jane Doe",
		Email:   "jane@example.com",
		Message: "Saw you at Harpers Ferry!",
	}
	require.NoError(t, trailblog.RelayContact(ctx, mailer, msg))

	require.Len(t, mailer.sent, 1)
	sent := mailer.sent[0]
	assert.Equal(t, "Jane Doe <jane@example.com>", sent.replyTo)
	assert.Contains(t, sent.subject, "Jane Doe")
	assert.Contains(t, sent.body, "Saw you at Harpers Ferry!")
}

func TestRelayContact_InvalidNeverSends(t *testing.T) {
	ctx := context.Background()
	mailer := &fakeMailer{}

	msg := trailblog.ContactMessage{Author: "J", Message: "too short a name"}
	err := trailblog.RelayContact(ctx, mailer, msg)
	assert.ErrorIs(t, err, trailblog.ErrInvalidContact)
	assert.Empty(t, mailer.sent)
}

func TestRelayContact_MailerFailure(t *testing.T) {
	ctx := context.Background()
	mailer := &fakeMailer{sendErr: errors.New("smtp refused")}

	msg := trailblog.ContactMessage{Author: "Jane Doe", Message: "Hello"}
	err := trailblog.RelayContact(ctx, mailer, msg)
	require.Error(t, err)
	assert.NotErrorIs(t, err, trailblog.ErrInvalidContact)
}
