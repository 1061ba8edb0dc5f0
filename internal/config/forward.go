package config

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ForwardConfig controls which events are forwarded to the scoring API.
type ForwardConfig struct {
	Events []string `mapstructure:"events"`
}

func DefaultForwardConfig() ForwardConfig {
	return ForwardConfig{
		Events: []string{
			"$login",
			"$logout",
			"$create_account",
			"$update_account",
			"$add_item_to_cart",
			"$remove_item_from_cart",
		},
	}
}

// ForwardConfigHolder exposes the current forward filter. The file is watched
// so operators can mute an event without a restart.
type ForwardConfigHolder struct {
	current atomic.Value // holds ForwardConfig
}

func NewForwardConfigHolder() (*ForwardConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("siftbridge")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/siftbridge")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SIFTBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultForwardConfig()
		v.SetDefault("forward.events", defaults.Events)
	}

	var cfg ForwardConfig
	if err := v.UnmarshalKey("forward", &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Events) == 0 {
		cfg = DefaultForwardConfig()
	}

	holder := &ForwardConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ForwardConfig
		if err := v.UnmarshalKey("forward", &updated); err != nil {
			log.Printf("[forward-config] reload failed: %v", err)
			return
		}
		if len(updated.Events) == 0 {
			log.Printf("[forward-config] empty event list ignored")
			return
		}
		holder.current.Store(updated)
		log.Printf("[forward-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// StaticForwardConfigHolder wraps a fixed config with no file watching.
func StaticForwardConfigHolder(cfg ForwardConfig) *ForwardConfigHolder {
	holder := &ForwardConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *ForwardConfigHolder) Get() ForwardConfig {
	return h.current.Load().(ForwardConfig)
}

// Enabled reports whether the named event should be forwarded.
func (h *ForwardConfigHolder) Enabled(event string) bool {
	for _, name := range h.Get().Events {
		if name == event {
			return true
		}
	}
	return false
}
