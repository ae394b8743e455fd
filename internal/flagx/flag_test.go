package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "separate value",
			args:         []string{"-k", "0123456789abcdef", "-x", "1"},
			allowedFlags: []string{"-k"},
			want:         []string{"-k", "0123456789abcdef"},
		},
		{
			name:         "equals form",
			args:         []string{"-config=auth.json", "-a", ":8080"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-config=auth.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag without value at end",
			args:         []string{"-d"},
			allowedFlags: []string{"-d"},
			want:         []string{"-d"},
		},
		{
			name:         "next dash token is not a value",
			args:         []string{"-c", "-a", ":9090"},
			allowedFlags: []string{"-c", "-a"},
			want:         []string{"-c", "-a", ":9090"},
		},
		{
			name:         "order and repetition preserved",
			args:         []string{"-i", "one", "-u", "aud", "-i", "two"},
			allowedFlags: []string{"-i", "-u"},
			want:         []string{"-i", "one", "-u", "aud", "-i", "two"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	assert.Equal(t, "/etc/gophauth/short.json", ConfigFileFlag([]string{"-c", "/etc/gophauth/short.json"}))
	assert.Equal(t, "/etc/gophauth/long.json", ConfigFileFlag([]string{"-a", ":8080", "-config", "/etc/gophauth/long.json"}))
	assert.Equal(t, "/b.json", ConfigFileFlag([]string{"-c", "/a.json", "-config=/b.json"}))
	assert.Empty(t, ConfigFileFlag([]string{"-k", "key"}))
}
