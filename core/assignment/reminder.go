package assignment

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
)

// The reminder goes out when an assignment is due in reminderLead, give or
// take one scan period. Each scan covers the half-open window
// [now+reminderLead-scanPeriod, now+reminderLead) so back-to-back scans never
// pick the same deadline twice.
const (
	reminderLead = time.Hour
	scanPeriod   = time.Minute
)

// RemindDueSoon runs one reminder scan: every pending student assignment due
// in the coming window gets a mail. Scans keep no state between runs; delivery
// failures are absorbed by the mail service and never abort the batch.
func (svc *service) RemindDueSoon(ctx context.Context) error {
	now := NowFunc().UTC()
	from := now.Add(reminderLead - scanPeriod)
	to := now.Add(reminderLead)

	items, err := svc.repo.QueryDueSoonPending(ctx, from, to)
	if err != nil {
		return errors.Wrap(err, "querying pending assignments due soon")
	}
	if len(items) == 0 {
		return nil
	}

	msgs := make([]*core.EmailMessage, 0, len(items))
	for _, item := range items {
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{{Name: item.StudentName, Address: item.StudentEmail}},
			Subject:      fmt.Sprintf("Assignment due soon: %s", item.Title),
			TemplateName: "deadline-reminder",
			TemplateData: struct {
				Name    string
				Title   string
				DueDate time.Time
			}{item.StudentName, item.Title, item.DueDate},
		})
	}
	svc.logger.Info(fmt.Sprintf("sending %d deadline reminder(s)", len(msgs)))
	svc.mailSvc.SendMessages(msgs...)
	return nil
}
