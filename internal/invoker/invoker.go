package invoker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ideabosque/openai-funct-base/internal/config"
	"github.com/ideabosque/openai-funct-base/internal/logging"
	"github.com/ideabosque/openai-funct-base/internal/metrics"
	"github.com/ideabosque/openai-funct-base/internal/schema"
)

// Transport performs one synchronous call of funct on endpointID and returns
// the raw reply payload.
type Transport interface {
	Invoke(ctx context.Context, endpointID, funct string, params interface{}) ([]byte, error)
}

// Options configures a RemoteQueryInvoker.
type Options struct {
	// EndpointID is used for every call unless PerCallEndpoint is set.
	EndpointID      string
	PerCallEndpoint bool
	// CacheSchema enables the schema cache and schema-backed operations.
	CacheSchema bool
	// ReplyCheck is config.ReplyCheckPresence or config.ReplyCheckTruthy.
	ReplyCheck string
}

// OptionsFromSettings maps loaded settings onto invoker options.
func OptionsFromSettings(s config.Settings) Options {
	return Options{
		EndpointID:      s.EndpointID,
		PerCallEndpoint: s.PerCallEndpoint,
		CacheSchema:     s.CacheSchema,
		ReplyCheck:      s.ReplyCheck,
	}
}

// RemoteQueryInvoker forwards GraphQL documents to remote functions and
// normalizes their replies. It holds no per-call state; concurrent use is
// safe as long as the Transport is.
type RemoteQueryInvoker struct {
	transport Transport
	opts      Options
	cache     *schema.Cache
}

func New(transport Transport, opts Options) *RemoteQueryInvoker {
	if opts.ReplyCheck == "" {
		opts.ReplyCheck = config.ReplyCheckPresence
	}
	r := &RemoteQueryInvoker{transport: transport, opts: opts}
	if opts.CacheSchema {
		r.cache = schema.NewCache(r)
	}
	return r
}

// Endpoint resolves the endpoint id used for a call.
func (r *RemoteQueryInvoker) Endpoint(endpointID string) string {
	if r.opts.PerCallEndpoint {
		return endpointID
	}
	return r.opts.EndpointID
}

// ExecuteQuery sends query and variables to functionName and returns the
// data of the reply. Replies carrying errors, a message, or nothing
// recognizable fail with *RemoteQueryError.
func (r *RemoteQueryInvoker) ExecuteQuery(ctx context.Context, endpointID, functionName, query string, variables map[string]interface{}) (interface{}, error) {
	if variables == nil {
		variables = map[string]interface{}{}
	}
	endpointID = r.Endpoint(endpointID)

	params := map[string]interface{}{
		"query":     query,
		"variables": variables,
	}

	start := time.Now()
	payload, err := r.transport.Invoke(ctx, endpointID, functionName, params)
	if err != nil {
		metrics.ObserveInvocation(functionName, metrics.OutcomeTransportError, time.Since(start))
		logging.Error("Error executing GraphQL query", map[string]interface{}{
			"endpoint_id": endpointID,
			"function":    functionName,
			"error":       err.Error(),
		})
		return nil, err
	}

	reply, err := DecodeReply(payload)
	if err != nil {
		metrics.ObserveInvocation(functionName, metrics.OutcomeDecodeError, time.Since(start))
		logging.Error("Error decoding GraphQL reply", map[string]interface{}{
			"endpoint_id": endpointID,
			"function":    functionName,
			"error":       err.Error(),
			"payload":     string(payload),
		})
		return nil, err
	}

	data, outcome, err := classify(functionName, reply, r.opts.ReplyCheck)
	metrics.ObserveInvocation(functionName, outcome, time.Since(start))
	if err != nil {
		logging.Error("Error executing GraphQL query", map[string]interface{}{
			"endpoint_id": endpointID,
			"function":    functionName,
			"outcome":     outcome,
			"error":       err.Error(),
		})
		return nil, err
	}
	return data, nil
}

// GetSchema returns the cached schema of functionName, fetching it on first use.
func (r *RemoteQueryInvoker) GetSchema(ctx context.Context, endpointID, functionName string) (*schema.Schema, error) {
	if r.cache == nil {
		return nil, ErrSchemaCacheDisabled
	}
	return r.cache.GetSchema(ctx, r.Endpoint(endpointID), functionName)
}

// FetchSchema runs the introspection query against functionName. It
// bypasses the cache.
func (r *RemoteQueryInvoker) FetchSchema(ctx context.Context, endpointID, functionName string) (*schema.Schema, error) {
	data, err := r.ExecuteQuery(ctx, endpointID, functionName, schema.IntrospectionQuery, nil)
	if err != nil {
		return nil, err
	}
	s, err := schema.DecodeIntrospection(data)
	if err != nil {
		return nil, fmt.Errorf("schema of %s: %w", functionName, err)
	}
	return s, nil
}

// ExecuteOperation builds the document for operationName from the cached
// schema of functionName and executes it.
func (r *RemoteQueryInvoker) ExecuteOperation(ctx context.Context, endpointID, functionName, operationName, operationType string, variables map[string]interface{}) (interface{}, error) {
	s, err := r.GetSchema(ctx, endpointID, functionName)
	if err != nil {
		return nil, err
	}

	query, err := schema.GenerateOperation(operationName, operationType, s)
	if err != nil {
		logging.Error("Error generating GraphQL operation", map[string]interface{}{
			"function":       functionName,
			"operation_name": operationName,
			"operation_type": operationType,
			"error":          err.Error(),
		})
		return nil, err
	}
	logging.Debug("Generated GraphQL operation", map[string]interface{}{
		"function": functionName,
		"query":    query,
	})
	return r.ExecuteQuery(ctx, endpointID, functionName, query, variables)
}

// IsRemoteQueryError reports whether err is a classified reply failure.
func IsRemoteQueryError(err error) bool {
	var rqe *RemoteQueryError
	return errors.As(err, &rqe)
}
