package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/jobs"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/mailer"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeAppointmentReminder is the task type for appointment reminders.
	TaskTypeAppointmentReminder = "appointment:reminder"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// AppointmentReminderPayload identifies the appointment to remind about.
type AppointmentReminderPayload struct {
	AppointmentID int64  `json:"appointmentId"`
	To            string `json:"to"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewAppointmentReminderTask constructs an Asynq task for a reminder.
func NewAppointmentReminderTask(payload AppointmentReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAppointmentReminder, data), nil
}

// MailProcessor executes mail tasks against an SMTP sender.
type MailProcessor struct {
	sender  mailer.Sender
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewMailProcessor constructs a MailProcessor. Metrics may be nil.
func NewMailProcessor(sender mailer.Sender, logger *slog.Logger, metrics *jobmetrics.Metrics) *MailProcessor {
	return &MailProcessor{sender: sender, logger: logger, metrics: metrics}
}

// HandleSendEmail processes TaskTypeSendEmail tasks.
func (p *MailProcessor) HandleSendEmail(ctx context.Context, t *asynq.Task) error {
	tracker := p.metrics.Track(TaskTypeSendEmail)
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if err := p.sender.Send(ctx, mailer.Message{To: payload.To, Subject: payload.Subject, Body: payload.Body}); err != nil {
		p.logger.Error("send email", slog.String("to", payload.To), slog.Any("error", err))
		return tracker.End(err)
	}
	p.logger.Info("email sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	return tracker.End(nil)
}

// HandleAppointmentReminder processes TaskTypeAppointmentReminder tasks.
func (p *MailProcessor) HandleAppointmentReminder(ctx context.Context, t *asynq.Task) error {
	tracker := p.metrics.Track(TaskTypeAppointmentReminder)
	var payload AppointmentReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	err := p.sender.Send(ctx, mailer.Message{To: payload.To, Subject: payload.Subject, Body: payload.Body})
	if err != nil {
		p.logger.Error("appointment reminder",
			slog.Int64("appointment_id", payload.AppointmentID), slog.Any("error", err))
	}
	return tracker.End(err)
}
