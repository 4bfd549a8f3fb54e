package config

import (
	"reflect"
	"testing"
	"time"
)

func TestGetStringSliceEnvSplitsOnComma(t *testing.T) {
	t.Setenv("CORS_TEST_ORIGINS", "http://a.example, http://b.example,,")

	got := getStringSliceEnv("CORS_TEST_ORIGINS", []string{"*"})
	want := []string{"http://a.example", "http://b.example"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if got := getStringSliceEnv("CORS_TEST_MISSING", []string{"*"}); !reflect.DeepEqual(got, []string{"*"}) {
		t.Fatalf("expected default, got %v", got)
	}
}

func TestEnvHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("TEST_DURATION", "soon")
	t.Setenv("TEST_INT", "many")

	if got := getDurationEnv("TEST_DURATION", 3*time.Second); got != 3*time.Second {
		t.Fatalf("expected default duration, got %v", got)
	}
	if got := getIntEnv("TEST_INT", 7); got != 7 {
		t.Fatalf("expected default int, got %d", got)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Store:    StoreConfig{Driver: "memory"},
			JWT:      JWTConfig{Secret: "s"},
			Realtime: RealtimeConfig{QueueSize: 1, ClientBuffer: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "memory driver ok", mutate: func(c *Config) {}},
		{name: "postgres needs password", mutate: func(c *Config) { c.Store.Driver = "postgres" }, wantErr: true},
		{name: "postgres with password", mutate: func(c *Config) {
			c.Store.Driver = "postgres"
			c.Database.Password = "pw"
		}},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "mongo" }, wantErr: true},
		{name: "empty secret", mutate: func(c *Config) { c.JWT.Secret = "" }, wantErr: true},
		{name: "zero queue", mutate: func(c *Config) { c.Realtime.QueueSize = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
