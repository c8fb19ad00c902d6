package dbbackup

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// Notifier tells the operator that a backup attempt failed. Delivery is
// fire-and-forget from the runner's perspective: a transport error is
// logged by the caller, never escalated.
type Notifier interface {
	NotifyFailure(ctx context.Context, failure error) error
}

// EmailCredentials identifies the operator mailbox. The notification is
// sent from and to the same address.
type EmailCredentials struct {
	Address  string
	Username string
	Password string
}

// SMTPNotifier delivers failure notifications over SMTP with STARTTLS.
// It is constructed only when notification is configured; nothing here is
// ambient or global.
type SMTPNotifier struct {
	creds   EmailCredentials
	host    string
	port    int
	timeout time.Duration
}

// NewSMTPNotifier creates a notifier for the given SMTP submission endpoint.
func NewSMTPNotifier(creds EmailCredentials, host string, port int) *SMTPNotifier {
	return &SMTPNotifier{
		creds:   creds,
		host:    host,
		port:    port,
		timeout: 30 * time.Second,
	}
}

// NotifyFailure sends a plain-text message describing the failed backup.
func (n *SMTPNotifier) NotifyFailure(ctx context.Context, failure error) error {
	addr := net.JoinHostPort(n.host, strconv.Itoa(n.port))

	dialer := &net.Dialer{Timeout: n.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, n.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	if ok, _ := client.Extension("STARTTLS"); !ok {
		return fmt.Errorf("SMTP server %s does not support STARTTLS", n.host)
	}
	tlsConfig := &tls.Config{
		ServerName: n.host,
		MinVersion: tls.VersionTLS12,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("STARTTLS failed: %w", err)
	}

	auth := smtp.PlainAuth("", n.creds.Username, n.creds.Password, n.host)
	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err = client.Mail(n.creds.Address); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	if err = client.Rcpt(n.creds.Address); err != nil {
		return fmt.Errorf("RCPT TO failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA failed: %w", err)
	}
	if _, err = w.Write([]byte(n.buildMessage(failure))); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	return client.Quit()
}

// buildMessage constructs the notification message with headers.
func (n *SMTPNotifier) buildMessage(failure error) string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("From: %s\r\n", n.creds.Address))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", n.creds.Address))
	msg.WriteString("Subject: Database backup error\r\n")
	msg.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(fmt.Sprintf("The database backup encountered an error: %v\r\n", failure))

	return msg.String()
}
