package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Reply check modes.
const (
	ReplyCheckPresence = "presence"
	ReplyCheckTruthy   = "truthy"
)

// Settings is a snapshot of the viper configuration.
type Settings struct {
	RegionName         string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	EndpointID         string
	PerCallEndpoint    bool
	CacheSchema        bool
	ReplyCheck         string
	DispatchFunction   string
	RateLimit          float64
	RateBurst          int
	Workers            int

	Listen          string
	MetricsPath     string
	MetricsDenylist []string
	LogLevel        string

	InquiryIndexName    string
	InquiryVectorField  string
	InquiryReturnFields []string
}

// HasCredentials reports whether an explicit region and key pair are configured.
func (s Settings) HasCredentials() bool {
	return s.RegionName != "" && s.AWSAccessKeyID != "" && s.AWSSecretAccessKey != ""
}

// SetDefaults registers the default values of every recognized key.
func SetDefaults() {
	viper.SetDefault("per_call_endpoint", true)
	viper.SetDefault("cache_schema", true)
	viper.SetDefault("reply_check", ReplyCheckPresence)
	viper.SetDefault("dispatch_function", "silvaengine_agenttask")
	viper.SetDefault("rate_limit", 0)
	viper.SetDefault("rate_burst", 1)
	viper.SetDefault("workers", 10)
	viper.SetDefault("listen", ":8080")
	viper.SetDefault("metrics_path", "/metrics")
	viper.SetDefault("metrics_denylist", "")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("inquiry_index_name", "documents")
	viper.SetDefault("inquiry_vector_field", "embedding")
	viper.SetDefault("inquiry_return_fields", "document_id,title,content,source")
}

// Load reads the current viper state into Settings.
func Load() (Settings, error) {
	s := Settings{
		RegionName:          viper.GetString("region_name"),
		AWSAccessKeyID:      viper.GetString("aws_access_key_id"),
		AWSSecretAccessKey:  viper.GetString("aws_secret_access_key"),
		EndpointID:          viper.GetString("endpoint_id"),
		PerCallEndpoint:     viper.GetBool("per_call_endpoint"),
		CacheSchema:         viper.GetBool("cache_schema"),
		ReplyCheck:          strings.ToLower(viper.GetString("reply_check")),
		DispatchFunction:    viper.GetString("dispatch_function"),
		RateLimit:           viper.GetFloat64("rate_limit"),
		RateBurst:           viper.GetInt("rate_burst"),
		Workers:             viper.GetInt("workers"),
		Listen:              viper.GetString("listen"),
		MetricsPath:         viper.GetString("metrics_path"),
		MetricsDenylist:     splitList(viper.GetString("metrics_denylist")),
		LogLevel:            viper.GetString("log_level"),
		InquiryIndexName:    viper.GetString("inquiry_index_name"),
		InquiryVectorField:  viper.GetString("inquiry_vector_field"),
		InquiryReturnFields: splitList(viper.GetString("inquiry_return_fields")),
	}

	if s.ReplyCheck != ReplyCheckPresence && s.ReplyCheck != ReplyCheckTruthy {
		return Settings{}, fmt.Errorf("reply_check must be %q or %q, got %q", ReplyCheckPresence, ReplyCheckTruthy, s.ReplyCheck)
	}
	if s.DispatchFunction == "" {
		return Settings{}, fmt.Errorf("dispatch_function must not be empty")
	}
	if !s.PerCallEndpoint && s.EndpointID == "" {
		return Settings{}, fmt.Errorf("endpoint_id is required when per_call_endpoint is disabled")
	}
	if s.Workers < 1 {
		return Settings{}, fmt.Errorf("workers must be at least 1")
	}
	return s, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
