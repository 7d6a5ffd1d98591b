package dataset

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
)

// DefaultS3Region is used when no region is configured.
const DefaultS3Region = "us-east-1"

// ObjectGetter is the slice of the S3 client the catalog loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client builds a client from the default AWS credential chain. A
// non-empty endpoint targets an S3-compatible store such as MinIO.
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	if region == "" {
		region = DefaultS3Region
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, mark(errors.Wrap(err, "load aws config"))
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// LoadS3 fetches bucket/key and decodes it by the key's extension.
func LoadS3(ctx context.Context, client ObjectGetter, bucket, key string) ([]map[string]any, error) {
	if bucket == "" || key == "" {
		return nil, mark(errors.WithHint(errors.New("s3 location needs a bucket and a key"), "use s3://bucket/path/providers.json"))
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, mark(errors.Wrapf(err, "get s3://%s/%s", bucket, key))
	}
	defer func() { _ = out.Body.Close() }()

	records, err := Decode(out.Body, FormatFor(key))
	if err != nil {
		return nil, errors.Wrapf(err, "s3://%s/%s", bucket, key)
	}
	return records, nil
}
