package report

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultSMTPHost = "smtp.qq.com"
	DefaultSMTPPort = 465
	implicitTLSPort = 465
)

var (
	ErrMissingCredentials = errors.New("MAIL_USER and MAIL_PASS are required")
	ErrNoRecipients       = errors.New("no mail recipients configured")
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       []string
	Timeout  time.Duration
}

// LoadSMTPEnv reads SMTP settings. The sender and the default recipient are MAIL_USER.
func LoadSMTPEnv() (*SMTPConfig, error) {
	cfg := &SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     DefaultSMTPPort,
		User:     os.Getenv("MAIL_USER"),
		Password: os.Getenv("MAIL_PASS"),
		Timeout:  30 * time.Second,
	}
	if cfg.Host == "" {
		cfg.Host = DefaultSMTPHost
	}
	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 {
			return nil, fmt.Errorf("invalid SMTP_PORT %q", raw)
		}
		cfg.Port = port
	}
	if cfg.User == "" || cfg.Password == "" {
		return nil, ErrMissingCredentials
	}
	cfg.From = cfg.User

	for _, to := range strings.Split(os.Getenv("MAIL_TO"), ",") {
		if to = strings.TrimSpace(to); to != "" {
			cfg.To = append(cfg.To, to)
		}
	}
	if len(cfg.To) == 0 {
		cfg.To = []string{cfg.User}
	}
	return cfg, nil
}

func (c SMTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type sendFunc func(ctx context.Context, cfg SMTPConfig, msg []byte) error

// EmailReporter mails the digest as multipart plain text and HTML.
type EmailReporter struct {
	cfg  SMTPConfig
	send sendFunc
	now  func() time.Time
}

func NewEmailReporter(cfg SMTPConfig) *EmailReporter {
	return &EmailReporter{cfg: cfg, send: sendSMTP, now: time.Now}
}

func (r *EmailReporter) Name() string {
	return string(Email)
}

func (r *EmailReporter) Report(ctx context.Context, d Digest) error {
	if len(r.cfg.To) == 0 {
		return ErrNoRecipients
	}

	msg, err := BuildMessage(r.cfg.From, r.cfg.To, d, r.now())
	if err != nil {
		return err
	}

	if err := r.send(ctx, r.cfg, msg); err != nil {
		return fmt.Errorf("failed to send digest mail: %w", err)
	}

	slog.Info("Digest mail sent", "to", r.cfg.To, "subject", d.Subject(), "announcements", d.Count())
	return nil
}

// BuildMessage encodes the digest as an RFC 5322 message with a multipart/alternative body.
func BuildMessage(from string, to []string, d Digest, now time.Time) ([]byte, error) {
	htmlBody, err := d.HTML()
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := writePart(mw, "text/plain; charset=UTF-8", d.PlainText()); err != nil {
		return nil, err
	}
	if err := writePart(mw, "text/html; charset=UTF-8", htmlBody); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	var msg bytes.Buffer
	header := []struct{ key, value string }{
		{"From", from},
		{"To", strings.Join(to, ", ")},
		{"Subject", mime.BEncoding.Encode("UTF-8", d.Subject())},
		{"Date", now.Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", mw.Boundary())},
	}
	for _, h := range header {
		fmt.Fprintf(&msg, "%s: %s\r\n", h.key, h.value)
	}
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	return msg.Bytes(), nil
}

func writePart(mw *multipart.Writer, contentType, content string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	h.Set("Content-Transfer-Encoding", "quoted-printable")

	pw, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create mime part: %w", err)
	}

	qp := quotedprintable.NewWriter(pw)
	if _, err := qp.Write([]byte(content)); err != nil {
		return fmt.Errorf("failed to encode mime part: %w", err)
	}
	return qp.Close()
}

// sendSMTP uses implicit TLS on port 465 and STARTTLS elsewhere when offered.
func sendSMTP(ctx context.Context, cfg SMTPConfig, msg []byte) error {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	tlsCfg := &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}

	var conn net.Conn
	var err error
	if cfg.Port == implicitTLSPort {
		conn, err = (&tls.Dialer{Config: tlsCfg}).DialContext(ctx, "tcp", cfg.Addr())
	} else {
		conn, err = (&net.Dialer{}).DialContext(ctx, "tcp", cfg.Addr())
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", cfg.Addr(), err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if cfg.Port != implicitTLSPort {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsCfg); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if cfg.User != "" {
		if err := client.Auth(smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(cfg.From); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	for _, rcpt := range cfg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp RCPT TO %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish message: %w", err)
	}

	return client.Quit()
}
