package auth

import (
	"errors"
	"testing"
)

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name        string
		authHeader  string
		wantToken   string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid bearer token",
			authHeader: "Bearer test-token-123",
			wantToken:  "test-token-123",
		},
		{
			name:        "missing authorization header",
			authHeader:  "",
			wantErr:     true,
			errContains: "missing Authorization header",
		},
		{
			name:        "invalid format - no bearer",
			authHeader:  "test-token-123",
			wantErr:     true,
			errContains: "invalid Authorization header format",
		},
		{
			name:        "wrong scheme - not bearer",
			authHeader:  "Basic dGVzdDp0ZXN0",
			wantErr:     true,
			errContains: "authorization header must use Bearer scheme",
		},
		{
			name:        "empty token",
			authHeader:  "Bearer  ",
			wantErr:     true,
			errContains: "empty bearer token",
		},
		{
			name:       "case insensitive bearer",
			authHeader: "bearer test-token-123",
			wantToken:  "test-token-123",
		},
		{
			name:       "uppercase bearer",
			authHeader: "BEARER test-token-123",
			wantToken:  "test-token-123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := ExtractToken(tt.authHeader)
			if (err != nil) != tt.wantErr {
				t.Errorf("ExtractToken() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil && tt.errContains != "" && err.Error() != tt.errContains {
				t.Errorf("ExtractToken() error = %v, want %v", err, tt.errContains)
			}
			if token != tt.wantToken {
				t.Errorf("ExtractToken() token = %v, want %v", token, tt.wantToken)
			}
		})
	}
}

func TestValidateToken(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		token    string
		wantErr  error
	}{
		{name: "match", expected: "secret", token: "secret"},
		{name: "mismatch", expected: "secret", token: "guess", wantErr: ErrInvalidToken},
		{name: "prefix only", expected: "secret", token: "sec", wantErr: ErrInvalidToken},
		{name: "not configured", expected: "", token: "", wantErr: ErrTokenNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateToken(tt.expected, tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateToken() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
