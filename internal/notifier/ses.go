package notifier

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the subset of the SES client used by SESSender.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESSender sends HTML email through Amazon SES.
type SESSender struct {
	renderer *Renderer
	client   SESAPI
	from     string
}

// NewSESSender loads the default AWS credential chain for region.
func NewSESSender(ctx context.Context, renderer *Renderer, region, from string) (*SESSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSESSenderWithClient(renderer, ses.NewFromConfig(awsCfg), from), nil
}

// NewSESSenderWithClient creates a sender on an existing client.
func NewSESSenderWithClient(renderer *Renderer, client SESAPI, from string) *SESSender {
	return &SESSender{renderer: renderer, client: client, from: from}
}

func (s *SESSender) Send(ctx context.Context, msg Message) error {
	subject, body, err := s.renderer.Render(msg)
	if err != nil {
		return err
	}

	_, err = s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(s.from),
	})
	if err != nil {
		return fmt.Errorf("ses send email: %w", err)
	}
	return nil
}
