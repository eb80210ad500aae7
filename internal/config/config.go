// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"pwned-range/internal/util"
	"pwned-range/pkg/hibp"
	"reflect"
	"strings"
	"time"
)

const envPrefix = "PWNED"

type Config struct {
	APIURL       string        `mapstructure:"API_URL" validate:"required,url"`
	Timeout      time.Duration `mapstructure:"TIMEOUT" validate:"gt=0"`
	Padding      bool          `mapstructure:"PADDING"`
	CacheEnabled bool          `mapstructure:"CACHE_ENABLED"`
	CacheTTL     time.Duration `mapstructure:"CACHE_TTL" validate:"required_if=CacheEnabled true,gte=0"`
	RedisURL     string        `mapstructure:"REDIS_URL" validate:"omitempty,url"`
	Debug        bool          `mapstructure:"DEBUG"`
}

// Flags maps command line flags to configuration keys. Flags that were set win over the environment.
var Flags = map[string]string{
	"API_URL":       "api-url",
	"TIMEOUT":       "timeout",
	"PADDING":       "padding",
	"CACHE_ENABLED": "cache",
	"CACHE_TTL":     "cache-ttl",
	"REDIS_URL":     "redis-url",
	"DEBUG":         "verbose",
}

// bindEnvs registers every Config key with viper. Unmarshal only sees environment variables for bound keys.
func bindEnvs(v *viper.Viper) {
	for _, f := range reflect.VisibleFields(reflect.TypeOf(Config{})) {
		if key := f.Tag.Get("mapstructure"); key != "" {
			_ = v.BindEnv(key)
		}
	}
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "required_if":
		return fmt.Sprintf("This field is required if %s", util.ToScreamingSnakeCase(fe.Param()))
	case "url":
		return "This field must be a valid URL"
	case "gt", "gte":
		return fmt.Sprintf("This field must be greater than %s", fe.Param())
	}
	return fe.Error() // default error
}

// Load reads the configuration from PWNED_ prefixed environment variables and the given flags.
func Load(flags *pflag.FlagSet) (config Config, err error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("API_URL", hibp.DefaultBaseURL)
	v.SetDefault("TIMEOUT", hibp.DefaultTimeout)
	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_TTL", hibp.DefaultCacheTTL)

	// https://github.com/spf13/viper/issues/188
	bindEnvs(v)

	if flags != nil {
		for key, name := range Flags {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err = v.BindPFlag(key, f); err != nil {
					return config, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("reading configuration: %w", err)
	}

	if err = validateConfig(config); err != nil {
		return config, err
	}

	return config, nil
}

func validateConfig(config Config) error {
	validate := validator.New()
	// Report the environment variable name instead of the Go field name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("mapstructure")
	})

	err := validate.Struct(&config)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("%s_%s: %s", envPrefix, fe.Field(), msgForTag(fe)))
		}
		return errors.New(strings.Join(msgs, ". "))
	}

	return fmt.Errorf("validating configuration: %w", err)
}

func (c Config) ClientOptions() hibp.ClientOptions {
	return hibp.ClientOptions{BaseURL: c.APIURL, Timeout: c.Timeout, Padding: c.Padding}
}
