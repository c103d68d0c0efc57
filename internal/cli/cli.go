package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ideabosque/openai-funct-base/internal/config"
)

// Execute initializes and runs the Cobra CLI
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree with every configuration flag bound to viper.
func NewRootCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:           "funct-gateway",
		Short:         "Forward GraphQL queries to remote Lambda functions",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	viper.AutomaticEnv()
	config.SetDefaults()

	flags := cmd.PersistentFlags()

	flags.String("region_name", "", "AWS region, used with aws_access_key_id and aws_secret_access_key")
	viper.BindEnv("region_name")

	flags.String("aws_access_key_id", "", "AWS access key id")
	viper.BindEnv("aws_access_key_id")

	flags.String("aws_secret_access_key", "", "AWS secret access key")
	viper.BindEnv("aws_secret_access_key")

	flags.String("endpoint_id", "", "endpoint id used for every call when per_call_endpoint is false")
	viper.BindEnv("endpoint_id")

	flags.Bool("per_call_endpoint", true, "take the endpoint id from each call instead of endpoint_id")
	viper.BindEnv("per_call_endpoint")

	flags.Bool("cache_schema", true, "cache function schemas and enable schema-backed operations")
	viper.BindEnv("cache_schema")

	flags.String("reply_check", config.ReplyCheckPresence, "reply key test: presence or truthy")
	viper.BindEnv("reply_check")

	flags.String("dispatch_function", "silvaengine_agenttask", "Lambda function that dispatches endpoint calls")
	viper.BindEnv("dispatch_function")

	flags.Float64("rate_limit", 0, "max invocations per second, 0 disables throttling")
	viper.BindEnv("rate_limit")

	flags.Int("rate_burst", 1, "invocation burst size")
	viper.BindEnv("rate_burst")

	flags.Int("workers", 10, "concurrent workers for batch runs")
	viper.BindEnv("workers")

	flags.String("log_level", "info", "log level (debug, info, warn, error)")
	viper.BindEnv("log_level")

	flags.String("inquiry_index_name", "documents", "index searched by inquiry")
	viper.BindEnv("inquiry_index_name")

	flags.String("inquiry_vector_field", "embedding", "vector field searched by inquiry")
	viper.BindEnv("inquiry_vector_field")

	flags.String("inquiry_return_fields", "document_id,title,content,source", "fields returned by inquiry, comma delimited list")
	viper.BindEnv("inquiry_return_fields")

	viper.BindPFlags(flags)

	cmd.AddCommand(
		newServeCommand(),
		newQueryCommand(),
		newOperationCommand(),
		newInquiryCommand(),
		newSchemaCommand(),
		newBatchCommand(),
	)
	return cmd
}
