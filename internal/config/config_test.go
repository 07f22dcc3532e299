package config

import "testing"

func TestValidateDrivers(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"sqlite ok", func(c *Config) {}, false},
		{"sqlite missing path", func(c *Config) { c.SQLitePath = "" }, true},
		{"postgres ok", func(c *Config) { c.DBDriver = "postgres"; c.PostgresDSN = "postgres://x" }, false},
		{"postgres missing dsn", func(c *Config) { c.DBDriver = "postgres" }, true},
		{"unknown driver", func(c *Config) { c.DBDriver = "spanner" }, true},
		{"bad buffer", func(c *Config) { c.EventBuffer = 0 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewForTesting()
			tc.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err=%v wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func TestNewForTesting(t *testing.T) {
	cfg := NewForTesting()
	if !cfg.IsTesting() {
		t.Fatal("expected testing environment")
	}
	if !cfg.Accelerated {
		t.Fatal("testing config should run accelerated")
	}
	if cfg.GetHTTPAddr() != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.GetHTTPAddr())
	}
}
