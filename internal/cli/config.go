package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/drblury/catalogflow"
)

// EnvPrefix prefixes every environment variable read by catalogctl, for
// example CATALOG_URL or CATALOG_EVENT_SINK.
const EnvPrefix = "CATALOG"

// configFileName is looked up in the home directory when --config is unset.
const configFileName = ".catalogflow"

// fileConfig mirrors the keys accepted in ~/.catalogflow.yaml.
type fileConfig struct {
	URL               string        `mapstructure:"url"`
	User              string        `mapstructure:"user"`
	UserHeader        string        `mapstructure:"user_header"`
	Timeout           time.Duration `mapstructure:"timeout"`
	ModelIDMode       string        `mapstructure:"model_id_mode"`
	LineageIDStrategy string        `mapstructure:"lineage_id_strategy"`
	ETLLanguage       string        `mapstructure:"etl_language"`

	EventSink      string   `mapstructure:"event_sink"`
	EventTopic     string   `mapstructure:"event_topic"`
	EventEncoding  string   `mapstructure:"event_encoding"`
	KafkaBrokers   []string `mapstructure:"kafka_brokers"`
	RabbitMQURL    string   `mapstructure:"rabbitmq_url"`
	NATSURL        string   `mapstructure:"nats_url"`
	NATSStreamName string   `mapstructure:"nats_stream"`
	HTTPWebhookURL string   `mapstructure:"webhook_url"`
	IOFile         string   `mapstructure:"io_file"`
	AWSRegion      string   `mapstructure:"aws_region"`
	AWSAccountID   string   `mapstructure:"aws_account_id"`
	AWSAccessKeyID string   `mapstructure:"aws_access_key_id"`
	AWSSecretKey   string   `mapstructure:"aws_secret_access_key"`
	AWSEndpoint    string   `mapstructure:"aws_endpoint"`
}

var configKeys = []string{
	"url", "user", "user_header", "timeout", "model_id_mode", "lineage_id_strategy", "etl_language",
	"event_sink", "event_topic", "event_encoding", "kafka_brokers", "rabbitmq_url", "nats_url",
	"nats_stream", "webhook_url", "io_file", "aws_region", "aws_account_id", "aws_access_key_id",
	"aws_secret_access_key", "aws_endpoint",
}

// loadConfig merges defaults, the config file, CATALOG_* variables and the
// persistent flags of cmd, in increasing order of precedence.
func loadConfig(configFile string, cmd *cobra.Command) (*catalogflow.Config, error) {
	defaults := catalogflow.DefaultConfig()

	v := viper.New()
	v.SetDefault("url", defaults.URL)
	v.SetDefault("user", defaults.User)
	v.SetDefault("user_header", defaults.UserHeader)
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("model_id_mode", string(defaults.ModelIDMode))
	v.SetDefault("lineage_id_strategy", string(defaults.LineageIDStrategy))
	v.SetDefault("etl_language", defaults.ETLLanguage)
	v.SetDefault("event_topic", defaults.EventTopic)
	v.SetDefault("event_encoding", string(defaults.EventEncoding))

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees keys viper knows about.
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if cmd != nil {
		for _, name := range []string{"url", "user", "timeout"} {
			if f := cmd.Flag(name); f != nil {
				if err := v.BindPFlag(name, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	conf := &catalogflow.Config{
		URL:                fc.URL,
		User:               fc.User,
		UserHeader:         fc.UserHeader,
		Timeout:            fc.Timeout,
		ModelIDMode:        catalogflow.ModelIDMode(fc.ModelIDMode),
		LineageIDStrategy:  catalogflow.LineageIDStrategy(fc.LineageIDStrategy),
		ETLLanguage:        fc.ETLLanguage,
		EventSinkSystem:    fc.EventSink,
		EventTopic:         fc.EventTopic,
		EventEncoding:      catalogflow.EventEncoding(fc.EventEncoding),
		KafkaBrokers:       fc.KafkaBrokers,
		RabbitMQURL:        fc.RabbitMQURL,
		NATSURL:            fc.NATSURL,
		NATSStreamName:     fc.NATSStreamName,
		HTTPWebhookURL:     fc.HTTPWebhookURL,
		IOFile:             fc.IOFile,
		AWSRegion:          fc.AWSRegion,
		AWSAccountID:       fc.AWSAccountID,
		AWSAccessKeyID:     fc.AWSAccessKeyID,
		AWSSecretAccessKey: fc.AWSSecretKey,
		AWSEndpoint:        fc.AWSEndpoint,
	}
	if err := catalogflow.ValidateConfig(conf); err != nil {
		return nil, err
	}
	return conf, nil
}

// defaultConfigPath is shown in the --config help text.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/" + configFileName + ".yaml"
	}
	return filepath.Join(home, configFileName+".yaml")
}
