package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Census   CensusConfig   `yaml:"census" mapstructure:"census"`
	TigerWeb TigerWebConfig `yaml:"tigerweb" mapstructure:"tigerweb"`
	Basemap  BasemapConfig  `yaml:"basemap" mapstructure:"basemap"`
	Render   RenderConfig   `yaml:"render" mapstructure:"render"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// CensusConfig configures the Census data API client and the geography
// selection for the income query.
type CensusConfig struct {
	APIKey   string   `yaml:"api_key" mapstructure:"api_key"`
	BaseURL  string   `yaml:"base_url" mapstructure:"base_url"`
	Year     int      `yaml:"year" mapstructure:"year"`
	Dataset  string   `yaml:"dataset" mapstructure:"dataset"`
	Group    string   `yaml:"group" mapstructure:"group"`
	GeoLevel string   `yaml:"geo_level" mapstructure:"geo_level"`
	States   []string `yaml:"states" mapstructure:"states"`
	Counties []string `yaml:"counties" mapstructure:"counties"`
}

// TigerWebConfig configures the TIGERweb boundary service client.
type TigerWebConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Service     string `yaml:"service" mapstructure:"service"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// BasemapConfig configures the raster basemap tile provider.
type BasemapConfig struct {
	URLTemplate string  `yaml:"url_template" mapstructure:"url_template"`
	Zoom        int     `yaml:"zoom" mapstructure:"zoom"`
	Alpha       float64 `yaml:"alpha" mapstructure:"alpha"`
	CacheSize   int     `yaml:"cache_size" mapstructure:"cache_size"`
}

// RenderConfig configures the map renderer.
type RenderConfig struct {
	Width     int    `yaml:"width" mapstructure:"width"`
	Height    int    `yaml:"height" mapstructure:"height"`
	Output    string `yaml:"output" mapstructure:"output"`
	Title     string `yaml:"title" mapstructure:"title"`
	MinDecile int    `yaml:"min_decile" mapstructure:"min_decile"`
}

// ServerConfig configures the map server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CENSUSMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("census.base_url", "https://api.census.gov/data")
	v.SetDefault("census.year", 2023)
	v.SetDefault("census.dataset", "acs/acs5")
	v.SetDefault("census.group", "B19013")
	v.SetDefault("census.geo_level", "150")
	v.SetDefault("census.states", []string{"08"})
	v.SetDefault("census.counties", []string{"069", "123", "013"})
	v.SetDefault("tigerweb.base_url", "https://tigerweb.geo.census.gov/arcgis/rest/services")
	v.SetDefault("tigerweb.service", "TIGERweb/tigerWMS_Current")
	v.SetDefault("tigerweb.timeout_secs", 60)
	v.SetDefault("basemap.url_template", "https://basemaps.cartocdn.com/light_nolabels/{z}/{x}/{y}.png")
	v.SetDefault("basemap.zoom", 10)
	v.SetDefault("basemap.alpha", 1.0)
	v.SetDefault("basemap.cache_size", 512)
	v.SetDefault("render.width", 3000)
	v.SetDefault("render.height", 1800)
	v.SetDefault("render.output", "map.png")
	v.SetDefault("render.title", "Larimer, Weld, and Boulder County Med. HH Income by block group")
	v.SetDefault("render.min_decile", 19)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	// CENSUS_API_KEY is the variable Census tooling conventionally reads;
	// honor it when the prefixed form is absent.
	if cfg.Census.APIKey == "" {
		cfg.Census.APIKey = os.Getenv("CENSUS_API_KEY")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
