package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ideabosque/openai-funct-base/internal/awslambda"
	"github.com/ideabosque/openai-funct-base/internal/batch"
	"github.com/ideabosque/openai-funct-base/internal/client"
	"github.com/ideabosque/openai-funct-base/internal/config"
	"github.com/ideabosque/openai-funct-base/internal/handlers"
	"github.com/ideabosque/openai-funct-base/internal/inquiry"
	"github.com/ideabosque/openai-funct-base/internal/invoker"
	"github.com/ideabosque/openai-funct-base/internal/limiter"
	"github.com/ideabosque/openai-funct-base/internal/logging"
	"github.com/ideabosque/openai-funct-base/internal/routes"
	"github.com/ideabosque/openai-funct-base/internal/schema"
)

// newTransport builds the invocation transport; replaced in tests.
var newTransport = func(ctx context.Context, s config.Settings) (invoker.Transport, error) {
	api, err := awslambda.NewAPI(ctx, s)
	if err != nil {
		return nil, err
	}
	return awslambda.New(api, s.DispatchFunction, limiter.New(s.RateLimit, s.RateBurst)), nil
}

// setup loads the configuration, points the logger at logOut and builds the invoker.
func setup(ctx context.Context, logOut io.Writer) (*invoker.RemoteQueryInvoker, config.Settings, error) {
	s, err := config.Load()
	if err != nil {
		return nil, s, err
	}
	logging.InitializeLogger(s.LogLevel)
	logging.SetOutput(logOut)

	tr, err := newTransport(ctx, s)
	if err != nil {
		return nil, s, err
	}
	return invoker.New(tr, invoker.OptionsFromSettings(s)), s, nil
}

type callFlags struct {
	function  string
	endpoint  string
	variables string
}

func (f *callFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.function, "function", "", "remote function name")
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "endpoint id of the call")
	cmd.Flags().StringVar(&f.variables, "variables", "", "variables as a JSON object")
	_ = cmd.MarkFlagRequired("function")
}

func (f *callFlags) vars() (map[string]interface{}, error) {
	if f.variables == "" {
		return nil, nil
	}
	var v map[string]interface{}
	if err := json.Unmarshal([]byte(f.variables), &v); err != nil {
		return nil, fmt.Errorf("invalid --variables: %w", err)
	}
	return v, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP proxy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			inv, s, err := setup(cmd.Context(), os.Stdout)
			if err != nil {
				return err
			}
			return routes.RunServer(s, handlers.NewProxy(inv, inquiry.TargetFromSettings(s)))
		},
	}

	flags := cmd.Flags()

	flags.String("listen", ":8080", "listen on addr:port ( default :8080), omit addr to listen on all interfaces")
	viper.BindEnv("listen")

	flags.String("metrics_path", "/metrics", "path for metrics, default /metrics")
	viper.BindEnv("metrics_path")

	flags.String("metrics_denylist", "", "metrics to not expose, comma delimited list")
	viper.BindEnv("metrics_denylist")

	viper.BindPFlags(flags)
	return cmd
}

func newQueryCommand() *cobra.Command {
	var (
		call      callFlags
		query     string
		queryFile string
		server    string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Execute a GraphQL document on a remote function",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if queryFile != "" {
				raw, err := os.ReadFile(queryFile)
				if err != nil {
					return err
				}
				query = string(raw)
			}
			if query == "" {
				return fmt.Errorf("one of --query or --query-file is required")
			}
			vars, err := call.vars()
			if err != nil {
				return err
			}

			if server != "" {
				c, err := client.NewGraphQLClient(server, call.function, call.endpoint, client.NewRetryableClient(3, time.Second))
				if err != nil {
					return err
				}
				var data interface{}
				if err := c.Query(cmd.Context(), query, vars, &data); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), data)
			}

			inv, _, err := setup(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			data, err := inv.ExecuteQuery(cmd.Context(), call.endpoint, call.function, query, vars)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	call.register(cmd)
	cmd.Flags().StringVar(&query, "query", "", "GraphQL document")
	cmd.Flags().StringVar(&queryFile, "query-file", "", "file holding the GraphQL document")
	cmd.Flags().StringVar(&server, "server", "", "send through a running proxy at this URL instead of invoking directly")
	return cmd
}

func newOperationCommand() *cobra.Command {
	var (
		call          callFlags
		operationName string
		operationType string
	)
	cmd := &cobra.Command{
		Use:   "operation",
		Short: "Execute an operation generated from the function's schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			vars, err := call.vars()
			if err != nil {
				return err
			}
			inv, _, err := setup(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			data, err := inv.ExecuteOperation(cmd.Context(), call.endpoint, call.function, operationName, operationType, vars)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	call.register(cmd)
	cmd.Flags().StringVar(&operationName, "name", "", "root field to call")
	cmd.Flags().StringVar(&operationType, "type", "query", "query, mutation or subscription")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newInquiryCommand() *cobra.Command {
	var (
		call      callFlags
		userQuery string
	)
	cmd := &cobra.Command{
		Use:   "inquiry",
		Short: "Run a vector document search",
		RunE: func(cmd *cobra.Command, _ []string) error {
			inv, s, err := setup(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			docs, err := inquiry.Inquire(cmd.Context(), inv, inquiry.TargetFromSettings(s), call.endpoint, call.function, userQuery)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), docs)
		},
	}
	call.register(cmd)
	cmd.Flags().StringVar(&userQuery, "user-query", "", "search text")
	_ = cmd.MarkFlagRequired("user-query")
	return cmd
}

func newSchemaCommand() *cobra.Command {
	var (
		call          callFlags
		operationName string
		operationType string
	)
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the operation document generated for a root field",
		RunE: func(cmd *cobra.Command, _ []string) error {
			inv, s, err := setup(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			fetch := inv.GetSchema
			if !s.CacheSchema {
				fetch = inv.FetchSchema
			}
			sch, err := fetch(cmd.Context(), call.endpoint, call.function)
			if err != nil {
				return err
			}
			doc, err := schema.GenerateOperation(operationName, operationType, sch)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), doc)
			return err
		},
	}
	call.register(cmd)
	cmd.Flags().StringVar(&operationName, "name", "", "root field to generate")
	cmd.Flags().StringVar(&operationType, "type", "query", "query, mutation or subscription")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newBatchCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run the requests of a YAML batch file concurrently",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := batch.LoadFile(file)
			if err != nil {
				return err
			}
			inv, s, err := setup(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			results := batch.NewRunner(inv, inquiry.TargetFromSettings(s), s.Workers).Run(cmd.Context(), f.Items)
			return printJSON(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "batch file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
