// Package notify sends failure-notification emails over SMTP, mirroring the
// original pipeline's lettre-based mailer.
package notify

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	gomail "gopkg.in/gomail.v2"

	"github.com/tbielander/xtract/internal/precheck"
	"github.com/tbielander/xtract/internal/rewriteconfig"
)

// Send composes and delivers one plain-text notification email built from
// cfg.Settings.Email. When Mailer.Auth is set, credentials are read from the
// SMTP_USER/SMTP_PW environment variables; a missing or blank credential
// aborts the send with a logged error rather than attempting an
// unauthenticated connection.
func Send(cfg *rewriteconfig.Config, body string) {
	msg := cfg.Settings.Email.Message
	mailer := cfg.Settings.Email.Mailer

	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	if len(msg.ReplyTo) > 0 {
		m.SetHeader("Reply-To", msg.ReplyTo...)
	}
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", body)

	dialer := gomail.NewDialer(mailer.SMTP, mailer.Port, "", "")
	if mailer.Auth {
		user := strings.TrimSpace(os.Getenv("SMTP_USER"))
		pw := strings.TrimSpace(os.Getenv("SMTP_PW"))
		if user == "" {
			logrus.Error("missing SMTP_USER environment variable")
			return
		}
		if pw == "" {
			logrus.Error("missing SMTP_PW environment variable")
			return
		}
		dialer.Username = user
		dialer.Password = pw
	}

	if err := dialer.DialAndSend(m); err != nil {
		logrus.WithError(err).Error("sending notification email failed")
		return
	}
	logrus.Info("notification email sent")
}

// formatWarning renders one inconsistency finding as a two-line block.
func formatWarning(xmlElement string, values []string) string {
	return fmt.Sprintf("  xml element: %s\n  values: %s", xmlElement, strings.Join(values, ", "))
}

// CompileWarnings joins a set of per-path findings into the body text used
// for a consistency-check notification.
func CompileWarnings(findings []precheck.Finding) string {
	blocks := make([]string, 0, len(findings))
	for _, f := range findings {
		blocks = append(blocks, formatWarning(f.Path, f.Values))
	}
	return strings.Join(blocks, "\n  ---\n")
}
