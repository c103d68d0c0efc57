package awslambda

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/ideabosque/openai-funct-base/internal/config"
	"github.com/ideabosque/openai-funct-base/internal/limiter"
	"github.com/ideabosque/openai-funct-base/internal/logging"
)

// API is the subset of the Lambda service client used for invocations.
type API interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// NewAPI builds a Lambda service client. When region and key pair are all
// configured a static credentials provider is used, otherwise the default
// credential chain applies.
func NewAPI(ctx context.Context, s config.Settings) (API, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if s.HasCredentials() {
		opts = append(opts,
			awsconfig.WithRegion(s.RegionName),
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(s.AWSAccessKeyID, s.AWSSecretAccessKey, ""),
			),
		)
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		logging.Error("Failed to load AWS configuration", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return lambda.NewFromConfig(cfg), nil
}

// Client dispatches function calls through a single dispatcher Lambda which
// routes on endpoint id and function name.
type Client struct {
	api      API
	dispatch string
	limiter  *limiter.Limiter
}

// New returns a Client invoking dispatchFunction. l may be nil.
func New(api API, dispatchFunction string, l *limiter.Limiter) *Client {
	return &Client{api: api, dispatch: dispatchFunction, limiter: l}
}

type dispatchPayload struct {
	EndpointID string      `json:"endpoint_id"`
	Funct      string      `json:"funct"`
	Params     interface{} `json:"params"`
}

// Invoke calls funct on endpointID synchronously and returns the raw reply payload.
func (c *Client) Invoke(ctx context.Context, endpointID, funct string, params interface{}) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	body, err := json.Marshal(dispatchPayload{EndpointID: endpointID, Funct: funct, Params: params})
	if err != nil {
		return nil, fmt.Errorf("encode dispatch payload: %w", err)
	}

	out, err := c.api.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(c.dispatch),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        body,
	})
	if err != nil {
		logging.Error("Lambda invocation failed", map[string]interface{}{
			"dispatch":    c.dispatch,
			"endpoint_id": endpointID,
			"funct":       funct,
			"error":       err.Error(),
		})
		return nil, err
	}

	if out.FunctionError != nil {
		terr := newTransportError(funct, aws.ToString(out.FunctionError), out.Payload)
		logging.Error("Remote function raised an error", map[string]interface{}{
			"dispatch":    c.dispatch,
			"endpoint_id": endpointID,
			"funct":       funct,
			"error":       terr.Error(),
		})
		return nil, terr
	}

	logging.Debug("Lambda invocation succeeded", map[string]interface{}{
		"endpoint_id": endpointID,
		"funct":       funct,
		"status":      out.StatusCode,
		"bytes":       len(out.Payload),
	})
	return out.Payload, nil
}
