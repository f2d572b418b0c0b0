// Package notify sends invitation e-mails through Postmark.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mrz1836/postmark"

	"github.com/pkordes/wayfarer/internal/config"
	"github.com/pkordes/wayfarer/internal/domain"
)

// ErrSendFailed wraps any failure to hand a message to Postmark.
var ErrSendFailed = errors.New("notify: failed to send email")

// Sender is the part of the Postmark client the notifier uses.
type Sender interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// Mailer e-mails invitees. It satisfies service.InvitationNotifier.
type Mailer struct {
	client  Sender
	from    string
	stream  string
	baseURL string
}

// NewMailer builds a Mailer backed by a real Postmark client.
func NewMailer(cfg config.PostmarkConfig, appBaseURL string) *Mailer {
	return NewMailerWithSender(postmark.NewClient(cfg.ServerToken, ""), cfg.From, cfg.Stream, appBaseURL)
}

// NewMailerWithSender builds a Mailer around any Sender.
func NewMailerWithSender(client Sender, from, stream, appBaseURL string) *Mailer {
	return &Mailer{
		client:  client,
		from:    from,
		stream:  stream,
		baseURL: strings.TrimSuffix(appBaseURL, "/"),
	}
}

// InvitationCreated tells invitee that inviter asked them onto list.
func (m *Mailer) InvitationCreated(ctx context.Context, inv domain.ListInvitation, list domain.TravelList, inviter, invitee domain.User) error {
	resp, err := m.client.SendEmail(ctx, postmark.Email{
		From:          m.from,
		To:            invitee.Email,
		Subject:       invitationSubject(inviter, list),
		TextBody:      m.invitationBody(inv, list, inviter),
		Tag:           "invitation",
		MessageStream: m.stream,
		Metadata: map[string]string{
			"invitation_id": inv.ID.String(),
			"list_id":       list.ID.String(),
		},
	})
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrSendFailed, fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}

func invitationSubject(inviter domain.User, list domain.TravelList) string {
	return fmt.Sprintf("%s invited you to %q", displayName(inviter), list.Title)
}

func (m *Mailer) invitationBody(inv domain.ListInvitation, list domain.TravelList, inviter domain.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s invited you to collaborate on the travel list %q with %s access.\n\n",
		displayName(inviter), list.Title, inv.Level)
	fmt.Fprintf(&b, "Open the invitation: %s/invitations/%s\n\n", m.baseURL, url.PathEscape(inv.ID.String()))
	fmt.Fprintf(&b, "This invitation expires on %s.\n", inv.ExpiresAt.UTC().Format("Jan 2, 2006 15:04 MST"))
	return b.String()
}

func displayName(u domain.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
