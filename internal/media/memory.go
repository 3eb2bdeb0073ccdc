package media

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
)

// NewMemoryStorage runs gofakes3 on a loopback listener and returns a
// Storage against it. Objects do not survive a restart. The returned
// shutdown func stops the listener.
func NewMemoryStorage(bucket string) (*Storage, func(), error) {
	faker := gofakes3.New(s3mem.New())

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, nil, fmt.Errorf("media: listen for in-memory s3: %w", err)
	}
	srv := &http.Server{Handler: faker.Server()}
	go srv.Serve(lis)

	endpoint := "http://" + lis.Addr().String()
	shutdown := func() { srv.Close() }

	ctx := context.Background()
	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("memory-key", "memory-secret", ""),
		),
	)
	if err != nil {
		shutdown()
		return nil, nil, fmt.Errorf("media: load AWS config: %w", err)
	}

	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true // gofakes3 serves buckets by path
	})

	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		shutdown()
		return nil, nil, fmt.Errorf("media: create bucket: %w", err)
	}

	return NewStorageFromClient(client, bucket, endpoint+"/"+bucket), shutdown, nil
}
