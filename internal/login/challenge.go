package login

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// ChallengeMailbox reads verification PINs out of the account's inbox so a
// sign-in checkpoint can be cleared without a human at the console.
type ChallengeMailbox struct {
	Host     string
	Port     int
	Username string
	Password string
	Mailbox  string
}

var pinPattern = regexp.MustCompile(`\b(\d{6})\b`)

// FetchPIN looks for a recent verification mail and extracts the 6-digit
// code. Only unseen messages from the last 15 minutes qualify; an older code
// is already expired.
func (c ChallengeMailbox) FetchPIN(ctx context.Context) (string, error) {
	addr := fmt.Sprintf("%s:%d", c.Host, c.Port)
	cl, err := imapclient.DialTLS(addr, &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12, ServerName: c.Host},
	})
	if err != nil {
		return "", fmt.Errorf("imap dial tls: %w", err)
	}
	defer cl.Close()

	go func() {
		<-ctx.Done()
		_ = cl.Close()
	}()

	if err := cl.Login(c.Username, c.Password).Wait(); err != nil {
		return "", fmt.Errorf("imap login: %w", err)
	}

	mailbox := c.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if _, err := cl.Select(mailbox, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return "", fmt.Errorf("imap select %s: %w", mailbox, err)
	}

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   time.Now().Add(-15 * time.Minute),
	}
	searchData, err := cl.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return "", fmt.Errorf("imap uid search: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return "", errors.New("no recent unseen messages")
	}
	// Newest first.
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchCmd := cl.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	for {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return "", fmt.Errorf("imap fetch collect: %w", err)
		}

		subject := ""
		if buf.Envelope != nil {
			subject = buf.Envelope.Subject
		}
		if !looksLikeVerification(subject) {
			continue
		}
		if pin := pinPattern.FindString(subject); pin != "" {
			return pin, nil
		}
		if body := buf.FindBodySection(bodyAll); body != nil {
			if pin := pinPattern.FindString(string(body)); pin != "" {
				return pin, nil
			}
		}
	}

	return "", errors.New("no verification code found")
}

func looksLikeVerification(subject string) bool {
	s := strings.ToLower(subject)
	return strings.Contains(s, "verification") || strings.Contains(s, "security code") || strings.Contains(s, "pin")
}
