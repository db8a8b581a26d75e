// internal/intel/alerts.go
package intel

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"scam-analyzer/internal/common/errors"
	"scam-analyzer/internal/common/logger"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// Notifier delivers one alert over one channel.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
	Channel() string
}

// AlertSystem fans one alert out to every configured channel. Delivery is
// best effort per channel: one failing channel never suppresses the others.
type AlertSystem struct {
	notifiers []Notifier
	logger    logger.Logger
}

func NewAlertSystem(log logger.Logger, notifiers ...Notifier) *AlertSystem {
	return &AlertSystem{
		notifiers: notifiers,
		logger:    log.WithFields(map[string]interface{}{"component": "alerts"}),
	}
}

// FraudSpike sends the fraud-rate alert built from report.
func (a *AlertSystem) FraudSpike(ctx context.Context, report Report) {
	subject := fmt.Sprintf("Fraud rate alert: %.1f%% of analyzed messages judged Fake", report.FraudRate)
	body := fmt.Sprintf(
		"Observed fraud rate %.1f%% over %d analyzed messages since %s.\n\nFake: %d\nWarning: %d\nSafe: %d\n",
		report.FraudRate, report.Total, report.Window.Format(time.RFC3339),
		report.Fake, report.Warning, report.Safe,
	)

	for _, n := range a.notifiers {
		if err := n.Notify(ctx, subject, body); err != nil {
			derr := errors.NewAlertDeliveryFailedError(n.Channel(), err)
			a.logger.Error("alert delivery failed", map[string]interface{}{
				"channel": n.Channel(),
				"error":   derr.Error(),
			})
			continue
		}
		a.logger.Info("alert delivered", map[string]interface{}{"channel": n.Channel()})
	}
}

// SESNotifier delivers alerts by email.
type SESNotifier struct {
	client SESService
	from   string
	to     []string
}

func NewSESNotifier(client SESService, from string, to []string) *SESNotifier {
	return &SESNotifier{client: client, from: from, to: to}
}

func (n *SESNotifier) Channel() string { return "ses" }

func (n *SESNotifier) Notify(ctx context.Context, subject, body string) error {
	_, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: n.to,
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.from),
	})
	return err
}

// SNSNotifier delivers alerts to an SNS topic.
type SNSNotifier struct {
	client   SNSService
	topicARN string
}

func NewSNSNotifier(client SNSService, topicARN string) *SNSNotifier {
	return &SNSNotifier{client: client, topicARN: topicARN}
}

func (n *SNSNotifier) Channel() string { return "sns" }

func (n *SNSNotifier) Notify(ctx context.Context, subject, body string) error {
	_, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
	})
	return err
}
