package resend

import (
	"fmt"
	"strings"

	"github.com/brk3/habitpanda/internal/remind"
	"github.com/resend/resend-go/v2"
)

// Notifier emails a digest of the freshly scheduled reminder occurrences.
// It complements the notification backend for setups where OS notifications
// aren't available (e.g. headless server deployments).
type Notifier struct {
	APIKey string
	From   string
	Email  string
}

var weekdayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func (n *Notifier) SendScheduleDigest(requests []remind.ScheduleRequest) error {
	if len(requests) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("<p>Your reminder schedule for the next 7 days:</p><ul>")
	for _, req := range requests {
		fmt.Fprintf(&b, "<li>%s %02d:%02d %s</li>",
			weekdayNames[req.WeekdayOffset], req.Hour, req.Minute, req.Body)
	}
	b.WriteString("</ul>")

	client := resend.NewClient(n.APIKey)
	params := &resend.SendEmailRequest{
		From:    n.From,
		To:      []string{n.Email},
		Subject: fmt.Sprintf("Habit reminders scheduled (%d upcoming)", len(requests)),
		Html:    b.String(),
	}
	if _, err := client.Emails.Send(params); err != nil {
		return fmt.Errorf("send schedule digest: %w", err)
	}
	return nil
}
