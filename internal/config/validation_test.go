package config

import (
	"strings"
	"testing"
)

func TestValidateAuthConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AuthConfig
		wantErr bool
	}{
		{
			name:    "valid secret",
			cfg:     AuthConfig{JWTSecret: strings.Repeat("a", MinJWTSecretLength)},
			wantErr: false,
		},
		{
			name:    "empty secret",
			cfg:     AuthConfig{JWTSecret: ""},
			wantErr: true,
		},
		{
			name:    "too short",
			cfg:     AuthConfig{JWTSecret: "short"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAuthConfig(tt.cfg)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateAuthConfig() = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateAuthConfig() = %v, want nil", err)
			}
		})
	}
}
