package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "kebab case", input: "my-bot"},
		{name: "spaces", input: "My Bot"},
		{name: "nested element", input: "users/auth"},
		{name: "snake case", input: "my_bot"},
		{name: "empty", input: "", wantErr: true},
		{name: "blank", input: "   ", wantErr: true},
		{name: "command injection semicolon", input: "bot; rm -rf /", wantErr: true},
		{name: "command substitution", input: "bot$(id)", wantErr: true},
		{name: "backtick", input: "bot`whoami`", wantErr: true},
		{name: "quote", input: `bot"`, wantErr: true},
		{name: "newline", input: "bot\nother", wantErr: true},
		{name: "path traversal", input: "../../etc/passwd", wantErr: true},
		{name: "absolute", input: "/tmp/bot", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRelativePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{path: "middlewares"},
		{path: "./middlewares/auth"},
		{path: "a/../b"},
		{path: "..", wantErr: true},
		{path: "a/../../b", wantErr: true},
		{path: "/etc", wantErr: true},
		{path: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := ValidateRelativePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCommand(t *testing.T) {
	allowed := map[string]bool{"tsc": true, "webpack": true}

	tests := []struct {
		command string
		wantErr bool
	}{
		{command: "tsc"},
		{command: "/work/node_modules/.bin/tsc"},
		{command: "webpack.cmd"},
		{command: "webpack.exe"},
		{command: "", wantErr: true},
		{command: "node", wantErr: true},
		{command: "tsc; rm -rf /", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			err := ValidateCommand(tt.command, allowed)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "bot\tname\n", SanitizeInput("bot\x00\tname\n\x7f"))
	assert.Equal(t, "plain", SanitizeInput("plain"))
}
