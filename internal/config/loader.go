package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".sortscope"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for sortscope settings.
const envPrefix = "SORTSCOPE"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or env var is set.
func Default() Config {
	return Config{
		Generate: GenerateConfig{
			Count: DefaultGenerateCount,
			Min:   DefaultGenerateMin,
			Max:   DefaultGenerateMax,
			Seed:  DefaultGenerateSeed,
		},
		Sort: SortConfig{
			ResetOnSort:     DefaultSortResetOnSort,
			MaxHistoryBytes: DefaultSortMaxHistoryBytes,
		},
		Render: RenderConfig{
			Theme:       DefaultRenderTheme,
			YMax:        DefaultRenderYMax,
			BaseColor:   DefaultRenderBaseColor,
			ActiveColor: DefaultRenderActiveColor,
			MaxFrames:   DefaultRenderMaxFrames,
			Delay:       DefaultRenderDelay,
		},
		Output: OutputConfig{
			Format:  DefaultOutputFormat,
			Path:    DefaultOutputPath,
			Compact: DefaultOutputCompact,
		},
		Logging: LoggingConfig{
			Level: DefaultLoggingLevel,
			JSON:  DefaultLoggingJSON,
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: DefaultTelemetryEndpoint,
			OTLPInsecure: DefaultTelemetryInsecure,
			SampleRatio:  DefaultTelemetrySampleRatio,
		},
	}
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("generate.count", DefaultGenerateCount)
	viperCfg.SetDefault("generate.min", DefaultGenerateMin)
	viperCfg.SetDefault("generate.max", DefaultGenerateMax)
	viperCfg.SetDefault("generate.seed", DefaultGenerateSeed)

	viperCfg.SetDefault("sort.reset_on_sort", DefaultSortResetOnSort)
	viperCfg.SetDefault("sort.max_history_bytes", DefaultSortMaxHistoryBytes)

	viperCfg.SetDefault("render.theme", DefaultRenderTheme)
	viperCfg.SetDefault("render.y_max", DefaultRenderYMax)
	viperCfg.SetDefault("render.base_color", DefaultRenderBaseColor)
	viperCfg.SetDefault("render.active_color", DefaultRenderActiveColor)
	viperCfg.SetDefault("render.max_frames", DefaultRenderMaxFrames)
	viperCfg.SetDefault("render.delay", DefaultRenderDelay)

	viperCfg.SetDefault("output.format", DefaultOutputFormat)
	viperCfg.SetDefault("output.path", DefaultOutputPath)
	viperCfg.SetDefault("output.compact", DefaultOutputCompact)

	viperCfg.SetDefault("logging.level", DefaultLoggingLevel)
	viperCfg.SetDefault("logging.json", DefaultLoggingJSON)

	viperCfg.SetDefault("telemetry.otlp_endpoint", DefaultTelemetryEndpoint)
	viperCfg.SetDefault("telemetry.otlp_insecure", DefaultTelemetryInsecure)
	viperCfg.SetDefault("telemetry.sample_ratio", DefaultTelemetrySampleRatio)
}
