package email

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

type SMTPNotifier struct {
	host   string
	port   int
	from   string
	logger *zap.Logger
}

func NewSMTPNotifier(host string, port int, from string, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{host: host, port: port, from: from, logger: logger}
}

func (n *SMTPNotifier) NotifyFailure(_ context.Context, to, runID, videoKey, errorMsg string) error {
	addr := fmt.Sprintf("%s:%d", n.host, n.port)

	subject := fmt.Sprintf("Frame Sampler - Video Abandoned [Run %s]", runID)
	body := fmt.Sprintf(
		"Hello,\r\n\r\n"+
			"A video could not be fully processed during the last sampling run.\r\n\r\n"+
			"Run ID: %s\r\n"+
			"Video: %s\r\n"+
			"Error: %s\r\n\r\n"+
			"The video was left unmarked and will be retried on the next run.\r\n\r\n"+
			"-- Frame Sampler",
		runID, videoKey, errorMsg,
	)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		n.from, to, subject, body,
	)

	err := smtp.SendMail(addr, nil, n.from, []string{to}, []byte(msg))
	if err != nil {
		n.logger.Error("failed to send abandon notification email",
			zap.String("to", to),
			zap.String("run_id", runID),
			zap.Error(err),
		)
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("abandon notification email sent",
		zap.String("to", to),
		zap.String("run_id", runID),
	)
	return nil
}
