package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/spf13/cobra"

	"github.com/tendant/simple-song-sync/pkg/songsync"
)

func NewLambdaCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Run as an AWS Lambda function triggered by S3 notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			handler, err := cfg.BuildHandler(cmd.Context(), logger, nil)
			if err != nil {
				return err
			}

			logger.Info("Starting Lambda handler", "storage", cfg.Storage.Type, "library", cfg.Library.Host)
			lambda.Start(lambdaHandler(handler))
			return nil
		},
	}
}

// lambdaHandler tags each invocation with the Lambda request id.
func lambdaHandler(handler *songsync.Handler) func(context.Context, events.S3Event) (string, error) {
	return func(ctx context.Context, event events.S3Event) (string, error) {
		if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
			ctx = songsync.WithInvocationID(ctx, lc.AwsRequestID)
		}
		return handler.HandleEvent(ctx, event)
	}
}
