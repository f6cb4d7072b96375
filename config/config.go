// Package config loads typed configuration from the environment, optionally
// seeded from a .env file. Each subsystem declares its own struct with
// envconfig tags and loads it under a prefix, so deployments can configure
// only the subsystems they use.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// Options configures loading behavior.
type Options struct {
	// EnvFile is an explicit .env file to export into the process
	// environment before parsing. When empty, a ./.env file is loaded if
	// it exists.
	EnvFile string
}

// MustNew is New but panics on error. Intended for main() wiring where a
// bad configuration should stop the process immediately.
func MustNew[T any](prefix string, optFns ...func(o *Options)) *T {
	conf, err := New[T](prefix, optFns...)
	if err != nil {
		panic(err)
	}
	return conf
}

// New populates a T from environment variables under the given prefix,
// applying struct tag defaults for anything unset.
func New[T any](prefix string, optFns ...func(o *Options)) (*T, error) {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.EnvFile != "" {
		if err := exportEnvironment(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else if err := exportEnvironmentIfExists(".env"); err != nil {
		return nil, fmt.Errorf("load default env file: %w", err)
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, err
	}

	return &conf, nil
}

func exportEnvironmentIfExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportEnvironment(path)
}

// exportEnvironment reads a .env style file and exports its keys, without
// overriding variables already present in the environment.
func exportEnvironment(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for key, val := range v.AllSettings() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); exists {
			continue
		}
		if err := os.Setenv(name, fmt.Sprint(val)); err != nil {
			return err
		}
	}

	return nil
}
