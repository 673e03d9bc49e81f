package sns

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/13x54n/thamelbar/internal/config"
)

// PushSender delivers a push notification to an opaque device target.
// Targets are SNS platform endpoint ARNs registered by the mobile app.
type PushSender interface {
	SendPush(ctx context.Context, target, title, body string) error
}

type sender struct {
	client *sns.Client
}

func NewSender(cfg *config.Config) (PushSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &sender{client: sns.NewFromConfig(awsCfg)}, nil
}

func (s *sender) SendPush(ctx context.Context, target, title, body string) error {
	msg := fmt.Sprintf("%s\n%s", title, body)
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		TargetArn: &target,
		Message:   &msg,
	})
	return err
}
