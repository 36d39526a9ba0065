package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name: "Development with defaults",
			config: Config{
				Env:       "development",
				Port:      "5000",
				JWTSecret: "your-secret-key-change-in-production",
			},
			expectError: false,
		},
		{
			name: "Missing port",
			config: Config{
				Env:       "development",
				JWTSecret: "secret",
			},
			expectError: true,
		},
		{
			name: "Missing JWT secret",
			config: Config{
				Env:  "development",
				Port: "5000",
			},
			expectError: true,
		},
		{
			name: "Production with default JWT secret",
			config: Config{
				Env:        "production",
				Port:       "5000",
				JWTSecret:  "your-secret-key-change-in-production",
				DBPassword: "strong-password",
			},
			expectError: true,
		},
		{
			name: "Production with short JWT secret",
			config: Config{
				Env:        "production",
				Port:       "5000",
				JWTSecret:  "short",
				DBPassword: "strong-password",
			},
			expectError: true,
		},
		{
			name: "Production with default DB password",
			config: Config{
				Env:        "production",
				Port:       "5000",
				JWTSecret:  "secure-secret-at-least-32-chars-long",
				DBPassword: "password",
			},
			expectError: true,
		},
		{
			name: "Production fully configured",
			config: Config{
				Env:        "production",
				Port:       "5000",
				JWTSecret:  "secure-secret-at-least-32-chars-long",
				DBPassword: "strong-password",
				DBSSLMode:  "require",
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer viper.Reset()

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5000", c.Port)
	assert.Equal(t, "development", c.Env)
	assert.Equal(t, "uploads", c.UploadDir)
	assert.Equal(t, "no-reply@reclaimit.local", c.MailFrom)
	assert.False(t, c.TracingEnabled)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	defer os.Unsetenv("PORT")
	defer viper.Reset()

	os.Setenv("PORT", "9000")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9000", c.Port)
}
