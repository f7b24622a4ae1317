package provider

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/neomnia/content-mania-sub004/internal/config"
	"github.com/neomnia/content-mania-sub004/internal/model"
)

// SMTPProvider delivers over SMTP with optional STARTTLS or implicit TLS.
type SMTPProvider struct {
	host       string
	port       int
	username   string
	password   string
	encryption string
}

func NewSMTPProvider(cfg config.SMTPProviderConfig) *SMTPProvider {
	enc := strings.ToUpper(strings.TrimSpace(cfg.Encryption))
	if enc != "NONE" && enc != "STARTTLS" && enc != "SSL/TLS" {
		enc = "STARTTLS"
	}
	return &SMTPProvider{
		host:       cfg.Host,
		port:       cfg.Port,
		username:   cfg.Username,
		password:   cfg.Password,
		encryption: enc,
	}
}

func (p *SMTPProvider) Name() string { return "smtp" }

// Send delivers the message and returns the generated Message-ID.
func (p *SMTPProvider) Send(ctx context.Context, msg *model.Message) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("%w: no recipients", ErrRejected)
	}

	messageID := generateMessageID(p.host)
	body := buildMIME(msg, messageID)

	dialer := net.Dialer{Timeout: 15 * time.Second}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 {
			dialer.Timeout = remaining
		}
	}

	addr := fmt.Sprintf("%s:%d", p.host, p.port)

	client, err := p.dial(&dialer, addr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer client.Quit()

	if p.username != "" {
		auth := smtp.PlainAuth("", p.username, p.password, p.host)
		if err := client.Auth(auth); err != nil {
			return "", fmt.Errorf("%w: auth: %v", ErrRejected, err)
		}
	}

	if err := client.Mail(msg.From); err != nil {
		return "", fmt.Errorf("%w: MAIL FROM: %v", ErrRejected, err)
	}
	for _, rcpt := range msg.AllRecipients() {
		if err := client.Rcpt(strings.TrimSpace(rcpt)); err != nil {
			return "", fmt.Errorf("%w: RCPT TO %s: %v", ErrRejected, rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return "", fmt.Errorf("%w: DATA: %v", ErrRejected, err)
	}
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("%w: write body: %v", ErrTransport, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: close data: %v", ErrRejected, err)
	}

	return messageID, nil
}

func (p *SMTPProvider) dial(dialer *net.Dialer, addr string) (*smtp.Client, error) {
	if p.encryption == "SSL/TLS" {
		conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: p.host})
		if err != nil {
			return nil, err
		}
		return smtp.NewClient(conn, p.host)
	}

	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	client, err := smtp.NewClient(conn, p.host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if p.encryption == "STARTTLS" {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: p.host}); err != nil {
				client.Close()
				return nil, err
			}
		}
	}
	return client, nil
}

func generateMessageID(host string) string {
	b := make([]byte, 16)
	rand.Read(b)
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("<%s@%s>", hex.EncodeToString(b), host)
}

// buildMIME assembles a minimal HTML email with optional text alternative.
func buildMIME(msg *model.Message, messageID string) []byte {
	var buf bytes.Buffer

	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", msg.FromName, msg.From)
	}

	writeHeader := func(k, v string) {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(v)
		buf.WriteString("\r\n")
	}

	writeHeader("From", from)
	writeHeader("To", strings.Join(msg.To, ", "))
	if len(msg.Cc) > 0 {
		writeHeader("Cc", strings.Join(msg.Cc, ", "))
	}
	writeHeader("Subject", msg.Subject)
	writeHeader("Message-ID", messageID)
	writeHeader("MIME-Version", "1.0")

	if msg.Text != "" {
		boundary := strings.Trim(generateMessageID(""), "<>@localhost")
		writeHeader("Content-Type", fmt.Sprintf(`multipart/alternative; boundary="%s"`, boundary))
		buf.WriteString("\r\n")

		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		buf.WriteString(msg.Text)
		buf.WriteString("\r\n")

		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		buf.WriteString(msg.HTML)
		buf.WriteString("\r\n")

		fmt.Fprintf(&buf, "--%s--\r\n", boundary)
		return buf.Bytes()
	}

	writeHeader("Content-Type", "text/html; charset=UTF-8")
	buf.WriteString("\r\n")
	buf.WriteString(msg.HTML)
	buf.WriteString("\r\n")
	return buf.Bytes()
}
