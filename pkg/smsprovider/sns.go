package smsprovider

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type SNSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// SNSPublisher is the part of *sns.Client the provider needs.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSProvider struct {
	client SNSPublisher
}

func NewSNSClient(ctx context.Context, cfg SNSConfig) (*sns.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return sns.NewFromConfig(awsCfg), nil
}

func NewSNSProvider(client SNSPublisher) Provider {
	return &SNSProvider{client: client}
}

func (s *SNSProvider) Send(ctx context.Context, msg Message) (Response, error) {
	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(msg.To),
		Message:     aws.String(msg.Body),
	})
	if err != nil {
		return Response{}, snsError(err)
	}

	return Response{SID: aws.ToString(out.MessageId), Status: "sent"}, nil
}

func (s *SNSProvider) Lookup(ctx context.Context, number string) (LookupResult, error) {
	return LookupResult{}, NewError(ErrorCodeNotSupported)
}
