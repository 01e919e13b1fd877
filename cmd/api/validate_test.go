package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipes.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateCommand(t *testing.T) {
	valid := `[{
		"title": "Pad Thai",
		"description": "Stir-fried rice noodles with tamarind",
		"ingredients": ["rice noodles", "tamarind paste"],
		"instructions": ["Soak the noodles", "Stir-fry everything together"],
		"region": "Asia",
		"cuisine": "Thai"
	}]`

	tests := []struct {
		name     string
		content  string
		wantErr  bool
		contains string
	}{
		{name: "valid file", content: valid, contains: "1 recipe(s) valid"},
		{name: "not an array", content: `{"title": "x"}`, wantErr: true, contains: "data [type_error]"},
		{name: "invalid item", content: `[{"title": "ab"}]`, wantErr: true, contains: "data[0].title [too_short]"},
		{name: "malformed json", content: `[{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			validateCmd.SetOut(&out)
			validateMaxRecipes = 1000

			err := runValidate(validateCmd, []string{writeFile(t, tt.content)})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.contains != "" {
				assert.Contains(t, out.String(), tt.contains)
			}
		})
	}
}

func TestValidateCommandMissingFile(t *testing.T) {
	err := runValidate(validateCmd, []string{filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)
}
