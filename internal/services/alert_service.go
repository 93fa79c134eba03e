package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// AlertService notifies an operator when the pattern detector imposes a
// new hard block. Wire it to the detector via OnHardBlock.
type AlertService interface {
	NotifyHardBlock(endpoint, ip, deviceID, reason string, until time.Time)
}

// NoopAlertService is used when alerting is not configured
type NoopAlertService struct{}

func (NoopAlertService) NotifyHardBlock(string, string, string, string, time.Time) {}

// SESAlertService sends hard-block alerts through AWS SES
type SESAlertService struct {
	sesClient   *ses.Client
	fromAddress string
	toAddress   string
	logger      *slog.Logger
}

// NewSESAlertService creates a new SESAlertService
func NewSESAlertService(region, fromAddress, toAddress string, logger *slog.Logger) (*SESAlertService, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESAlertService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		toAddress:   toAddress,
		logger:      logger,
	}, nil
}

// NotifyHardBlock emails the operator about a new hard block. Runs in its
// own goroutine so a slow SES call never delays the rejection response;
// failures are logged and dropped.
func (s *SESAlertService) NotifyHardBlock(endpoint, ip, deviceID, reason string, until time.Time) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		subject := fmt.Sprintf("isitopen: hard block on %s", endpoint)
		body := fmt.Sprintf(
			"A PIN endpoint was hard-blocked by the guardrail layer.\n\n"+
				"Endpoint: %s\nIP: %s\nDevice: %s\nReason: %s\nBlocked until: %s\n",
			endpoint, ip, deviceID, reason, until.UTC().Format(time.RFC3339))

		input := &ses.SendEmailInput{
			Source: aws.String(s.fromAddress),
			Destination: &types.Destination{
				ToAddresses: []string{s.toAddress},
			},
			Message: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		}

		if _, err := s.sesClient.SendEmail(ctx, input); err != nil {
			s.logger.Error("failed to send hard-block alert",
				slog.String("ip", ip),
				slog.Any("error", err))
			return
		}

		s.logger.Info("hard-block alert sent", slog.String("ip", ip), slog.String("reason", reason))
	}()
}
