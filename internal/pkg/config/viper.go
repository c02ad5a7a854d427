package config

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override file values.
// The key "mail.password" is overridden by DASHBOARD_MAIL_PASSWORD.
const EnvPrefix = "DASHBOARD"

var defaults = map[string]any{
	"app.name":                             "gocount-dashboard",
	"app.session.cookie_name":              "session",
	"app.server.http.address":              ":8080",
	"app.connect_timeout_seconds":          30,
	"hash.bcrypt.cost":                     12,
	"jwt.issuer":                           "gocount",
	"jwt.session_ttl_minutes":              720,
	"jwt.pending_ttl_minutes":              10,
	"mail.tls":                             "auto",
	"storage.driver":                       "none",
	"storage.presign_seconds":              300,
	"modules.identity.otp_ttl_minutes":     10,
	"modules.identity.otp_length":          6,
	"modules.document.stats_cache_seconds": 60,
	"modules.document.recent_limit":        20,
}

// Viper implements Config.
type Viper struct {
	v *viper.Viper
}

// NewViper reads the file at pathFile, its type taken from the extension, and
// watches it for changes.
func NewViper(pathFile string) (*Viper, error) {
	v := newViper()
	v.SetConfigFile(pathFile)
	v.SetConfigType(strings.TrimPrefix(filepath.Ext(pathFile), "."))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("config reloaded", "path", e.Name, "op", e.Op.String())
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewViperFromBytes reads configuration of configType ("yaml", "json", ...)
// from memory. Used by tests and tools.
func NewViperFromBytes(configType string, data []byte) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, errors.New("config type is required")
	}

	v := newViper()
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

func (vc *Viper) GetBool(key string) bool       { return vc.v.GetBool(key) }
func (vc *Viper) GetString(key string) string   { return vc.v.GetString(key) }
func (vc *Viper) GetInt(key string) int         { return vc.v.GetInt(key) }
func (vc *Viper) GetInt32(key string) int32     { return vc.v.GetInt32(key) }
func (vc *Viper) GetInt64(key string) int64     { return vc.v.GetInt64(key) }
func (vc *Viper) GetFloat64(key string) float64 { return vc.v.GetFloat64(key) }

func (vc *Viper) GetSecond(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Second
}

func (vc *Viper) GetMinute(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Minute
}

func (vc *Viper) GetArray(key string) []string {
	var items []string
	switch raw := vc.v.Get(key).(type) {
	case nil:
		return nil
	case string:
		items = strings.Split(raw, ",")
	default:
		items = vc.v.GetStringSlice(key)
	}

	out := items[:0]
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Close is a no-op. The file watcher lives as long as the process.
func (vc *Viper) Close() error {
	return nil
}
