package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ScheduleConfig tunes the milestone scheduler and the assignment mutators.
type ScheduleConfig struct {
	InstallmentCadenceDays int `mapstructure:"installmentCadenceDays"`
	DefaultDeliveryDays    int `mapstructure:"defaultDeliveryDays"`
	MaxConflictRetries     int `mapstructure:"maxConflictRetries"`
}

func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		InstallmentCadenceDays: 30,
		DefaultDeliveryDays:    30,
		MaxConflictRetries:     3,
	}
}

type ScheduleConfigHolder struct {
	current atomic.Value // holds ScheduleConfig
}

// NewStaticScheduleConfigHolder wraps a fixed config, mostly for tests.
func NewStaticScheduleConfigHolder(cfg ScheduleConfig) *ScheduleConfigHolder {
	holder := &ScheduleConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewScheduleConfigHolder() (*ScheduleConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("schedule")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/quotation")
	v.AddConfigPath(".")

	v.SetEnvPrefix("QUOTATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultScheduleConfig()
	v.SetDefault("schedule.installmentCadenceDays", defaults.InstallmentCadenceDays)
	v.SetDefault("schedule.defaultDeliveryDays", defaults.DefaultDeliveryDays)
	v.SetDefault("schedule.maxConflictRetries", defaults.MaxConflictRetries)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg ScheduleConfig
	if err := v.UnmarshalKey("schedule", &cfg); err != nil {
		return nil, err
	}
	if err := validateScheduleConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticScheduleConfigHolder(cfg)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ScheduleConfig
		if err := v.UnmarshalKey("schedule", &updated); err != nil {
			log.Printf("[schedule-config] reload failed: %v", err)
			return
		}
		if err := validateScheduleConfig(updated); err != nil {
			log.Printf("[schedule-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[schedule-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *ScheduleConfigHolder) Get() ScheduleConfig {
	if h == nil {
		return DefaultScheduleConfig()
	}
	cfg, ok := h.current.Load().(ScheduleConfig)
	if !ok {
		return DefaultScheduleConfig()
	}
	return cfg
}

func validateScheduleConfig(cfg ScheduleConfig) error {
	if cfg.InstallmentCadenceDays <= 0 {
		return errors.New("schedule.installmentCadenceDays must be positive")
	}
	if cfg.DefaultDeliveryDays <= 0 {
		return errors.New("schedule.defaultDeliveryDays must be positive")
	}
	if cfg.MaxConflictRetries < 0 {
		return errors.New("schedule.maxConflictRetries cannot be negative")
	}
	return nil
}
