package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.BaseURL() != "http://localhost:8080" {
			t.Errorf("expected base URL http://localhost:8080, got %s", config.BaseURL())
		}

		if config.Relay.GeneratePath != "/generate" {
			t.Errorf("expected relay path /generate, got %s", config.Relay.GeneratePath)
		}

		if config.Database.Path != "./playlistinator.db" {
			t.Errorf("expected database path ./playlistinator.db, got %s", config.Database.Path)
		}

		if config.Server.Addr() != "127.0.0.1:3000" {
			t.Errorf("expected server addr 127.0.0.1:3000, got %s", config.Server.Addr())
		}

		if config.UI.ToastDuration() != 4*time.Second {
			t.Errorf("expected toast duration 4s, got %s", config.UI.ToastDuration())
		}
	})

	t.Run("BaseURL falls back when unset", func(t *testing.T) {
		config := &Config{}
		if config.BaseURL() != DefaultBaseURL {
			t.Errorf("expected %s, got %s", DefaultBaseURL, config.BaseURL())
		}
		if config.UpstreamURL() != DefaultBaseURL {
			t.Errorf("expected %s, got %s", DefaultBaseURL, config.UpstreamURL())
		}
	})

	t.Run("BaseURL trims trailing slash", func(t *testing.T) {
		config := &Config{API: APIConfig{BaseURL: "https://gen.example.com/"}}
		if config.BaseURL() != "https://gen.example.com" {
			t.Errorf("got %s", config.BaseURL())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[api]
base_url = "https://gen.example.com"

[server]
port = 8081
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.BaseURL() != "https://gen.example.com" {
			t.Errorf("expected base URL https://gen.example.com, got %s", config.BaseURL())
		}
		if config.Server.Port != 8081 {
			t.Errorf("expected server port 8081, got %d", config.Server.Port)
		}
		if config.Server.Host != "127.0.0.1" {
			t.Errorf("expected unset host to keep default, got %s", config.Server.Host)
		}
	})

	t.Run("LoadConfig with invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[api\nbase_url ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestApplyEnv(t *testing.T) {
	lookup := func(env map[string]string) func(string) (string, bool) {
		return func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		}
	}

	tc := []struct {
		name         string
		env          map[string]string
		wantBase     string
		wantUpstream string
	}{
		{
			name:         "no overrides",
			env:          map[string]string{},
			wantBase:     "http://localhost:8080",
			wantUpstream: "http://localhost:8080",
		},
		{
			name:         "api override",
			env:          map[string]string{EnvAPIURL: "https://api.example.com"},
			wantBase:     "https://api.example.com",
			wantUpstream: "http://localhost:8080",
		},
		{
			name:         "upstream override",
			env:          map[string]string{EnvUpstreamURL: "http://10.0.0.2:9000"},
			wantBase:     "http://localhost:8080",
			wantUpstream: "http://10.0.0.2:9000",
		},
		{
			name:         "blank values are ignored",
			env:          map[string]string{EnvAPIURL: "   "},
			wantBase:     "http://localhost:8080",
			wantUpstream: "http://localhost:8080",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.ApplyEnv(lookup(tt.env))

			if config.BaseURL() != tt.wantBase {
				t.Errorf("BaseURL() = %s, want %s", config.BaseURL(), tt.wantBase)
			}
			if config.UpstreamURL() != tt.wantUpstream {
				t.Errorf("UpstreamURL() = %s, want %s", config.UpstreamURL(), tt.wantUpstream)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tc := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "https base", mutate: func(c *Config) { c.API.BaseURL = "https://x.example.com" }},
		{name: "no scheme", mutate: func(c *Config) { c.API.BaseURL = "localhost:8080" }, wantErr: true},
		{name: "ftp upstream", mutate: func(c *Config) { c.Relay.UpstreamURL = "ftp://x" }, wantErr: true},
		{name: "relative path", mutate: func(c *Config) { c.Relay.GeneratePath = "generate" }, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		if err := LoadEnvFile(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("LoadEnvFile() error = %v", err)
		}
	})

	t.Run("loads variables without overriding", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		content := "PLAYLISTINATOR_TEST_FRESH=from-file\nPLAYLISTINATOR_TEST_SET=from-file\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}

		t.Setenv("PLAYLISTINATOR_TEST_SET", "from-env")
		t.Setenv("PLAYLISTINATOR_TEST_FRESH", "")
		os.Unsetenv("PLAYLISTINATOR_TEST_FRESH")

		if err := LoadEnvFile(path); err != nil {
			t.Fatalf("LoadEnvFile() error = %v", err)
		}

		if got := os.Getenv("PLAYLISTINATOR_TEST_FRESH"); got != "from-file" {
			t.Errorf("expected from-file, got %q", got)
		}
		if got := os.Getenv("PLAYLISTINATOR_TEST_SET"); got != "from-env" {
			t.Errorf("expected existing value to win, got %q", got)
		}
	})
}
