// Command math serves the math entry point on AWS Lambda
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/bububa/teachassist/app"
	"github.com/bububa/teachassist/logger"
)

func main() {
	a, err := app.Bootstrap(context.Background(), true)
	if err != nil {
		logger.Error("failed to start", "entry", "math", "error", err)
		os.Exit(1)
	}
	defer a.Close()
	lambda.Start(a.Handlers.Math)
}
