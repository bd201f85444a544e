package trailblog

import (
	"context"
	"fmt"
	"regexp"

	"github.com/wneessen/go-mail"
)

var (
	contactNameRE  = regexp.MustCompile(`^[ a-zA-Z_-]{2,30}$`)
	contactEmailRE = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

// ContactMessage is one visitor message relayed to the blog owner.
type ContactMessage struct {
	Author  string
	Email   string
	Message string
}

// Validate checks the message before it is relayed. The email may be empty;
// when given it only needs an @ and a dot.
func (m ContactMessage) Validate() error {
	if !contactNameRE.MatchString(m.Author) {
		return fmt.Errorf("%w: author name", ErrInvalidContact)
	}
	if m.Email != "" && !contactEmailRE.MatchString(m.Email) {
		return fmt.Errorf("%w: email address", ErrInvalidContact)
	}
	if m.Message == "" {
		return fmt.Errorf("%w: empty message", ErrInvalidContact)
	}
	return nil
}

// Mailer delivers a plain-text message. The contact form is its only caller.
type Mailer interface {
	Send(ctx context.Context, replyTo, subject, body string) error
}

// RelayContact validates a visitor message and hands it to the mailer.
// Invalid messages are rejected before anything is sent.
func RelayContact(ctx context.Context, mailer Mailer, msg ContactMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	replyTo := msg.Author
	if msg.Email != "" {
		replyTo = fmt.Sprintf("%s <%s>", msg.Author, msg.Email)
	}

	subject := fmt.Sprintf("New trail message from: %s", msg.Author)
	return mailer.Send(ctx, replyTo, subject, msg.Message)
}

// SMTPMailer implements Mailer over SMTP.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       string
}

// SMTPOptions configures an SMTPMailer.
type SMTPOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // From is the envelope sender; contact replies go to the visitor via Reply-To.
	To       string // To is the blog owner's address.
}

// NewSMTPMailer creates a Mailer that delivers via the given SMTP server.
func NewSMTPMailer(opts SMTPOptions) *SMTPMailer {
	return &SMTPMailer{
		host:     opts.Host,
		port:     opts.Port,
		username: opts.Username,
		password: opts.Password,
		from:     opts.From,
		to:       opts.To,
	}
}

// Send delivers one plain-text message.
func (s *SMTPMailer) Send(ctx context.Context, replyTo, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(s.to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	if err := msg.ReplyTo(replyTo); err != nil {
		// The visitor gave no usable address; deliver without a Reply-To
		// rather than dropping the message.
		msg.SetGenHeader(mail.HeaderReplyTo, replyTo)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(s.host,
		mail.WithPort(s.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.username),
		mail.WithPassword(s.password),
	)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, msg)
}
