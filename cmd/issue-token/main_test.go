package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_Validation(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing secret", []string{"--user", "tech-1"}, "signing secret"},
		{"missing user", []string{"--secret", "s"}, "--user"},
		{"unknown role", []string{"--secret", "s", "-u", "x", "-r", "owner"}, "unknown role"},
		{"unknown flag", []string{"--nope"}, "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args)
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestRun_IssuesToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")

	assert.NoError(t, run([]string{"-u", "admin-1", "-r", "admin", "--ttl", "5m"}))
}
