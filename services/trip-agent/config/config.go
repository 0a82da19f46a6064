package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Reasoner  ReasonerConfig  `mapstructure:"reasoner"`
	Loop      LoopConfig      `mapstructure:"loop"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Export    ExportConfig    `mapstructure:"export"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ReasonerConfig selects the language-model provider used for reasoning.
type ReasonerConfig struct {
	Provider string        `mapstructure:"provider"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LoopConfig bounds the reasoning loop.
type LoopConfig struct {
	MaxIterations int           `mapstructure:"max_iterations"`
	ToolTimeout   time.Duration `mapstructure:"tool_timeout"`
}

// ProvidersConfig lists the backend priority order per capability plus the
// endpoints and credentials of each backend.
type ProvidersConfig struct {
	Weather  WeatherProviders  `mapstructure:"weather"`
	Places   PlacesProviders   `mapstructure:"places"`
	Currency CurrencyProviders `mapstructure:"currency"`
}

type WeatherProviders struct {
	Order                []string      `mapstructure:"order"`
	OpenMeteoGeocodeURL  string        `mapstructure:"open_meteo_geocode_url"`
	OpenMeteoForecastURL string        `mapstructure:"open_meteo_forecast_url"`
	WttrURL              string        `mapstructure:"wttr_url"`
	Timeout              time.Duration `mapstructure:"timeout"`
}

type PlacesProviders struct {
	Order             []string      `mapstructure:"order"`
	OpenTripMapURL    string        `mapstructure:"opentripmap_url"`
	OpenTripMapAPIKey string        `mapstructure:"opentripmap_api_key"`
	NominatimURL      string        `mapstructure:"nominatim_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type CurrencyProviders struct {
	Order          []string      `mapstructure:"order"`
	ERAPIURL       string        `mapstructure:"erapi_url"`
	FrankfurterURL string        `mapstructure:"frankfurter_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// ExportConfig controls the markdown document sink.
type ExportConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// 全局配置实例
var AppConfig *Config

// InitConfig 初始化配置
func InitConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	// 设置默认值
	setDefaults()

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Error reading config file: %v", err)
		log.Println("Using default configuration")
	} else {
		log.Printf("Using config file: %s", viper.ConfigFileUsed())
	}

	// 解析配置到结构体
	AppConfig = &Config{}
	if err := viper.Unmarshal(AppConfig); err != nil {
		log.Fatalf("Unable to decode into struct: %v", err)
	}

	log.Printf("Configuration loaded successfully")
}

// setDefaults 设置默认配置值
func setDefaults() {
	viper.SetDefault("server.port", "8082")
	viper.SetDefault("server.host", "localhost")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	viper.SetDefault("log.output", "stdout")

	viper.SetDefault("reasoner.provider", "deepseek")
	viper.SetDefault("reasoner.model", "deepseek-chat")
	viper.SetDefault("reasoner.base_url", "https://api.deepseek.com")
	viper.SetDefault("reasoner.api_key", "")
	viper.SetDefault("reasoner.timeout", "120s")

	viper.SetDefault("loop.max_iterations", 8)
	viper.SetDefault("loop.tool_timeout", "15s")

	viper.SetDefault("providers.weather.order", []string{"open-meteo", "wttr"})
	viper.SetDefault("providers.weather.open_meteo_geocode_url", "https://geocoding-api.open-meteo.com")
	viper.SetDefault("providers.weather.open_meteo_forecast_url", "https://api.open-meteo.com")
	viper.SetDefault("providers.weather.wttr_url", "https://wttr.in")
	viper.SetDefault("providers.weather.timeout", "10s")

	viper.SetDefault("providers.places.order", []string{"opentripmap", "nominatim"})
	viper.SetDefault("providers.places.opentripmap_url", "https://api.opentripmap.com")
	viper.SetDefault("providers.places.opentripmap_api_key", "")
	viper.SetDefault("providers.places.nominatim_url", "https://nominatim.openstreetmap.org")
	viper.SetDefault("providers.places.timeout", "10s")

	viper.SetDefault("providers.currency.order", []string{"er-api", "frankfurter"})
	viper.SetDefault("providers.currency.erapi_url", "https://open.er-api.com")
	viper.SetDefault("providers.currency.frankfurter_url", "https://api.frankfurter.app")
	viper.SetDefault("providers.currency.timeout", "10s")

	viper.SetDefault("export.enabled", true)
	viper.SetDefault("export.dir", "./plans")
}

// GetServerAddr 获取服务器地址
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// GetReasonerAPIKey prefers the environment over the config file, matching
// how credentials are usually injected in deployment.
func (c *Config) GetReasonerAPIKey() string {
	if key := strings.TrimSpace(os.Getenv("REASONER_API_KEY")); key != "" {
		return key
	}
	return c.Reasoner.APIKey
}

// GetOpenTripMapAPIKey prefers the environment over the config file.
func (c *Config) GetOpenTripMapAPIKey() string {
	if key := strings.TrimSpace(os.Getenv("OPENTRIPMAP_API_KEY")); key != "" {
		return key
	}
	return c.Providers.Places.OpenTripMapAPIKey
}
