package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuildDefaults(t *testing.T) {
	cfg, err := Build("", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cfg.APIHost != "api.coinbase.com" {
		t.Errorf("APIHost = %q", cfg.APIHost)
	}
	if cfg.APIVersion != "v2" {
		t.Errorf("APIVersion = %q", cfg.APIVersion)
	}
	if cfg.AuthScheme != "jwt" {
		t.Errorf("AuthScheme = %q", cfg.AuthScheme)
	}
	if cfg.DataFolder != "." {
		t.Errorf("DataFolder = %q", cfg.DataFolder)
	}
}

func TestBuildFromEnv(t *testing.T) {
	t.Setenv("COINBASE_API_KEY_NAME", "key-from-env")
	t.Setenv("COINBASE_API_KEY_SECRET", "secret-from-env")
	t.Setenv("COINBASE_AUTH_SCHEME", "hmac")

	cfg, err := Build("", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cfg.KeyName != "key-from-env" {
		t.Errorf("KeyName = %q", cfg.KeyName)
	}
	if cfg.KeySecret != "secret-from-env" {
		t.Errorf("KeySecret = %q", cfg.KeySecret)
	}
	if cfg.AuthScheme != "hmac" {
		t.Errorf("AuthScheme = %q", cfg.AuthScheme)
	}
}

func TestBuildFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `api_key_name: key-from-file
data_folder: /tmp/snapshots
oauth_client_id: client-1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Build(path, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cfg.KeyName != "key-from-file" {
		t.Errorf("KeyName = %q", cfg.KeyName)
	}
	if cfg.DataFolder != "/tmp/snapshots" {
		t.Errorf("DataFolder = %q", cfg.DataFolder)
	}
	if cfg.OAuth.ClientID != "client-1" {
		t.Errorf("OAuth.ClientID = %q", cfg.OAuth.ClientID)
	}
}

func TestBuildMissingExplicitFile(t *testing.T) {
	if _, err := Build(filepath.Join(t.TempDir(), "nope.yaml"), nil); err == nil {
		t.Error("expected error for explicitly named missing config file")
	}
}

func TestValidateFetch(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"jwt with keys", Config{AuthScheme: "jwt", KeyName: "k", KeySecret: "s"}, false},
		{"jwt without keys", Config{AuthScheme: "jwt"}, true},
		{"hmac without secret", Config{AuthScheme: "hmac", KeyName: "k"}, true},
		{"oauth complete", Config{AuthScheme: "oauth", OAuth: OAuth{
			ClientID: "c", ClientSecret: "s", RedirectURI: "https://localhost/cb",
		}}, false},
		{"oauth incomplete", Config{AuthScheme: "oauth", OAuth: OAuth{ClientID: "c"}}, true},
		{"unknown scheme", Config{AuthScheme: "basic"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.ValidateFetch(); (err != nil) != tt.wantErr {
				t.Errorf("ValidateFetch() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
