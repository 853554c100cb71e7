package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEnv(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		want     map[string]string
	}{
		{
			name: "creates file",
			want: map[string]string{refreshTokenEnv: "new-token"},
		},
		{
			name:     "keeps other keys and replaces token",
			existing: "SPOTIFY_CLIENT_ID=abc\nSPOTIFY_REFRESH_TOKEN=old-token\n",
			want:     map[string]string{"SPOTIFY_CLIENT_ID": "abc", refreshTokenEnv: "new-token"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".env")
			if tt.existing != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.existing), 0o600))
			}

			require.NoError(t, writeEnv(path, "new-token"))

			got, err := godotenv.Read(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
