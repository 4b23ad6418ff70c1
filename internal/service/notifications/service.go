package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	dg "github.com/Voridan/giveaway-platform/internal/domain/giveaway"
	du "github.com/Voridan/giveaway-platform/internal/domain/user"
)

const subjectModeration = "Moderation"

// Email is one outgoing message handed to the mail collaborator
type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
}

func (e Email) values() map[string]interface{} {
	return map[string]interface{}{
		"from":    e.From,
		"to":      e.To,
		"subject": e.Subject,
		"html":    e.HTML,
	}
}

// Publisher appends an entry to a named stream
type Publisher interface {
	Publish(ctx context.Context, stream string, values map[string]interface{}) (string, error)
}

// Service formats moderation outcomes and hands them to the mail outbox.
// Delivery is fire-and-forget: failures are logged, never returned.
type Service struct {
	pub    Publisher
	users  du.Reader
	stream string
	from   string
	log    zerolog.Logger
}

func NewService(pub Publisher, users du.Reader, stream, from string, log zerolog.Logger) *Service {
	return &Service{pub: pub, users: users, stream: stream, from: from, log: log.With().Str("component", "notifications").Logger()}
}

// NotifyApproved tells the owner their giveaway passed moderation.
func (s *Service) NotifyApproved(ctx context.Context, g *dg.Giveaway) {
	s.notify(ctx, g, buildApprovedMessage)
}

// NotifyRejected tells the owner their giveaway was declined and removed.
func (s *Service) NotifyRejected(ctx context.Context, g *dg.Giveaway) {
	s.notify(ctx, g, buildRejectedMessage)
}

func (s *Service) notify(ctx context.Context, g *dg.Giveaway, build func(userName, title string) string) {
	if s == nil || s.pub == nil || g == nil {
		return
	}
	owner, err := s.users.GetByID(ctx, g.OwnerID)
	if err != nil || owner == nil {
		s.log.Warn().Err(err).Int64("giveaway_id", g.ID).Int64("owner_id", g.OwnerID).Msg("owner not resolvable, notification dropped")
		return
	}
	mail := Email{
		From:    s.from,
		To:      owner.Email,
		Subject: subjectModeration,
		HTML:    build(owner.UserName, g.Title),
	}
	if _, err := s.pub.Publish(ctx, s.stream, mail.values()); err != nil {
		s.log.Error().Err(err).Int64("giveaway_id", g.ID).Str("to", mail.To).Msg("failed to enqueue notification")
		return
	}
	s.log.Debug().Int64("giveaway_id", g.ID).Str("to", mail.To).Msg("notification enqueued")
}

func buildApprovedMessage(userName, title string) string {
	var b strings.Builder
	b.WriteString("<h1>Giveaway Approved</h1>")
	fmt.Fprintf(&b, "<h3>Hello, %s</h3>", escapeHTML(userName))
	fmt.Fprintf(&b, "<p>We approved your giveaway \"%s\". You can find it now in your cabinet.</p>", escapeHTML(title))
	b.WriteString(signature)
	return b.String()
}

func buildRejectedMessage(userName, title string) string {
	var b strings.Builder
	b.WriteString("<h1>Giveaway Declined</h1>")
	fmt.Fprintf(&b, "<h3>Hello, %s</h3>", escapeHTML(userName))
	fmt.Fprintf(&b, "<p>Unfortunately we declined your giveaway \"%s\" and removed it.</p>", escapeHTML(title))
	b.WriteString(signature)
	return b.String()
}

const signature = "<p>All the best,<br>Giveaway - EasyWay</p>"

func escapeHTML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(s)
}
