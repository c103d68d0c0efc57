package batch

import (
	"context"
	"fmt"
	"os"

	"github.com/gammazero/workerpool"
	"gopkg.in/yaml.v3"

	"github.com/ideabosque/openai-funct-base/internal/inquiry"
	"github.com/ideabosque/openai-funct-base/internal/logging"
	"github.com/ideabosque/openai-funct-base/internal/metrics"
	"github.com/ideabosque/openai-funct-base/internal/models"
)

// Invoker runs the three kinds of batch items.
type Invoker interface {
	ExecuteQuery(ctx context.Context, endpointID, functionName, query string, variables map[string]interface{}) (interface{}, error)
	ExecuteOperation(ctx context.Context, endpointID, functionName, operationName, operationType string, variables map[string]interface{}) (interface{}, error)
}

// LoadFile reads a YAML batch file.
func LoadFile(path string) (*models.BatchFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	var f models.BatchFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse batch file %s: %w", path, err)
	}
	for i, item := range f.Items {
		if err := validate(item); err != nil {
			return nil, fmt.Errorf("item %d (%s): %w", i, item.ID, err)
		}
	}
	return &f, nil
}

func validate(item models.BatchItem) error {
	if item.FunctionName == "" {
		return fmt.Errorf("functionName is required")
	}
	n := 0
	if item.Query != nil {
		n++
	}
	if item.Operation != nil {
		n++
	}
	if item.Inquiry != nil {
		n++
	}
	if n != 1 {
		return fmt.Errorf("exactly one of query, operation or inquiry is required")
	}
	return nil
}

// Runner executes batch items on a bounded worker pool.
type Runner struct {
	invoker Invoker
	target  inquiry.Target
	workers int
}

func NewRunner(inv Invoker, target inquiry.Target, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{invoker: inv, target: target, workers: workers}
}

// Run executes every item and returns results in input order. A failing item
// records its error and does not stop the others.
func (r *Runner) Run(ctx context.Context, items []models.BatchItem) []models.BatchResult {
	results := make([]models.BatchResult, len(items))

	pool := workerpool.New(r.workers)
	for i, item := range items {
		i, item := i, item
		pool.Submit(func() {
			data, err := r.runItem(ctx, item)

			res := models.BatchResult{ID: item.ID, Data: data}
			if err != nil {
				res.Error = err.Error()
				logging.Warn("Batch item failed", map[string]interface{}{
					"id":       item.ID,
					"function": item.FunctionName,
					"error":    err.Error(),
				})
			}
			metrics.ObserveBatchItem(err == nil)

			results[i] = res
		})
	}
	pool.StopWait()
	return results
}

func (r *Runner) runItem(ctx context.Context, item models.BatchItem) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case item.Query != nil:
		return r.invoker.ExecuteQuery(ctx, item.EndpointID, item.FunctionName, item.Query.Query, item.Query.Variables)
	case item.Operation != nil:
		return r.invoker.ExecuteOperation(ctx, item.EndpointID, item.FunctionName,
			item.Operation.OperationName, item.Operation.OperationType, item.Operation.Variables)
	case item.Inquiry != nil:
		return inquiry.Inquire(ctx, r.invoker, r.target, item.EndpointID, item.FunctionName, item.Inquiry.UserQuery)
	default:
		return nil, validate(item)
	}
}
