package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/haukened/rr-callblock/internal/callblock/domain"
	"github.com/haukened/rr-callblock/internal/callblock/gateways/locale"
)

const (
	envPrefix  = "CALLBLOCK_"
	envConfig  = envPrefix + "CONFIG"
	nestingSep = "__"
)

// AppConfig holds the application configuration.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	Log      LogConfig      `koanf:"log"`
	Store    StoreConfig    `koanf:"store"`
	Locale   LocaleConfig   `koanf:"locale"`
	Contacts ContactsConfig `koanf:"contacts"`
	Policy   PolicyConfig   `koanf:"policy"`
}

type LogConfig struct {
	// Level controls log verbosity: "debug", "info", "warn", or "error".
	Level string `koanf:"level" validate:"required,oneof=debug info warn error"`
}

// StoreConfig configures the rule database and its read path.
type StoreConfig struct {
	Path        string  `koanf:"path" validate:"required"`
	CacheSize   int     `koanf:"cache_size" validate:"gte=0"`
	BloomFPRate float64 `koanf:"bloom_fp_rate" validate:"gt=0,lt=1"`
}

// LocaleConfig selects the region used for E.164 formatting. Both are optional;
// an empty Tag falls back to LC_ALL, LC_MESSAGES, LANG.
type LocaleConfig struct {
	NetworkCountry string `koanf:"network_country" validate:"omitempty,iso_region"`
	Tag            string `koanf:"tag"`
}

type ContactsConfig struct {
	File string `koanf:"file"`
}

// PolicyConfig seeds the settings store. The modes are calls=1, messages=2.
type PolicyConfig struct {
	Enabled           bool `koanf:"enabled"`
	Notify            bool `koanf:"notify"`
	PrivateNumberMode int  `koanf:"private_number_mode" validate:"mode_mask"`
	UnknownNumberMode int  `koanf:"unknown_number_mode" validate:"mode_mask"`
	RegexEnabled      bool `koanf:"regex_enabled"`
}

// DEFAULT_APP_CONFIG defines the default application configuration.
var DEFAULT_APP_CONFIG = AppConfig{
	Env: "prod",
	Log: LogConfig{Level: "info"},
	Store: StoreConfig{
		Path:        "/var/lib/rr-callblock/rules.db",
		CacheSize:   1000,
		BloomFPRate: 0.001,
	},
	Policy: PolicyConfig{
		Enabled: true,
		Notify:  true,
	},
}

// validISORegion validates an ISO 3166-1 alpha-2 country code.
func validISORegion(fl validator.FieldLevel) bool {
	_, err := locale.CanonicalRegion(fl.Field().String())
	return err == nil
}

// validModeMask accepts any combination of the calls and messages bits.
func validModeMask(fl validator.FieldLevel) bool {
	v := fl.Field().Int()
	return v >= 0 && v <= int64(domain.MaskAll)
}

// defaultLoader loads DEFAULT_APP_CONFIG into k.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// fileLoader loads the optional config file named by CALLBLOCK_CONFIG.
var fileLoader = func(k *koanf.Koanf) error {
	path := strings.TrimSpace(os.Getenv(envConfig))
	if path == "" {
		return nil
	}
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported config file type %q", filepath.Ext(path))
	}
	return k.Load(file.Provider(path), parser)
}

// envLoader loads CALLBLOCK_* variables. A double underscore separates nested
// keys, so CALLBLOCK_STORE__CACHE_SIZE sets store.cache_size.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			if key == envConfig {
				return "", nil
			}
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			key = strings.ReplaceAll(key, nestingSep, ".")
			return key, strings.TrimSpace(value)
		},
	}), nil)
}

// registerValidation registers the iso_region and mode_mask tags.
var registerValidation = func(v *validator.Validate) error {
	if err := v.RegisterValidation("iso_region", validISORegion); err != nil {
		return err
	}
	return v.RegisterValidation("mode_mask", validModeMask)
}

// Load builds the AppConfig from defaults, the optional config file and the
// environment, in that order, then validates it.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}
	if err := fileLoader(k); err != nil {
		return nil, fmt.Errorf("error loading config file: %w", err)
	}
	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &cfg, nil
}
