package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. HELLOFRIEND_LOADER_MODULE_PATH.
const EnvPrefix = "HELLOFRIEND"

// Config is the configuration shared by all commands.
type Config struct {
	LogLevel string       `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Wasm     WasmConfig   `mapstructure:"wasm"`
	Loader   LoaderConfig `mapstructure:"loader"`
	Page     PageConfig   `mapstructure:"page"`
	Blog     BlogConfig   `mapstructure:"blog"`
}

// WasmConfig holds Wasm runtime configuration.
type WasmConfig struct {
	// Memory limit per module (in pages, 64KB each).
	MemoryPages uint32 `mapstructure:"memory_pages" validate:"min=1,max=65536"`
	// Enable debug info in compiled modules.
	Debug bool `mapstructure:"debug"`
	// Compilation cache directory. Empty keeps the cache in memory.
	CacheDir string `mapstructure:"cache_dir"`
}

// LoaderConfig configures the one-shot module loader.
type LoaderConfig struct {
	ModulePath string `mapstructure:"module_path" validate:"required"`
	EntryPoint string `mapstructure:"entry_point" validate:"required"`
	// Offset of the shared string in linear memory.
	StartString uint32 `mapstructure:"start_string"`
	// Initial size of the shared memory, in pages.
	MemoryPages uint32 `mapstructure:"memory_pages" validate:"min=1,max=65536"`
	// Execution timeout in seconds; 0 disables it.
	ExecutionTimeout int `mapstructure:"execution_timeout" validate:"min=0"`
}

// PageConfig configures the template handler driver.
type PageConfig struct {
	// URL of the page; the post is fetched relative to it.
	URL      string `mapstructure:"url" validate:"required,url"`
	PostPath string `mapstructure:"post_path" validate:"required"`
	// Fetch timeout in seconds; 0 disables it.
	FetchTimeout int `mapstructure:"fetch_timeout" validate:"min=0"`
}

// BlogConfig configures the blog server.
type BlogConfig struct {
	Addr      string `mapstructure:"addr" validate:"required,hostname_port"`
	PostsDir  string `mapstructure:"posts_dir" validate:"required"`
	AssetsDir string `mapstructure:"assets_dir"`
	Minify    bool   `mapstructure:"minify"`
}

// Timeout returns the loader execution timeout as a duration.
func (c LoaderConfig) Timeout() time.Duration {
	return time.Duration(c.ExecutionTimeout) * time.Second
}

// Timeout returns the fetch timeout as a duration.
func (c PageConfig) Timeout() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	// Wasm defaults
	v.SetDefault("wasm.memory_pages", 256) // 16MB
	v.SetDefault("wasm.debug", false)
	v.SetDefault("wasm.cache_dir", "")

	v.SetDefault("loader.module_path", "hello_friend.wasm")
	v.SetDefault("loader.entry_point", "hellofriend")
	v.SetDefault("loader.start_string", 100)
	v.SetDefault("loader.memory_pages", 1)
	v.SetDefault("loader.execution_timeout", 0)

	v.SetDefault("page.url", "http://127.0.0.1:8080/blog/post1")
	v.SetDefault("page.post_path", "post1.json")
	v.SetDefault("page.fetch_timeout", 0)

	v.SetDefault("blog.addr", "127.0.0.1:8080")
	v.SetDefault("blog.posts_dir", "./posts")
	v.SetDefault("blog.assets_dir", "")
	v.SetDefault("blog.minify", true)
}

// LoadConfig reads configuration from defaults, an optional file and
// HELLOFRIEND_* environment variables, then validates it.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
