package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	urls := Default()
	require.Len(t, urls, 18)
	assert.Equal(t, "https://langchain-ai.github.io/langgraph/", urls[0])
	assert.Equal(t, "https://langchain-ai.github.io/langgraph/concepts/faq/", urls[len(urls)-1])

	for _, u := range urls {
		assert.NoError(t, Validate(u))
	}

	// Callers get their own copy.
	urls[0] = "mutated"
	assert.Equal(t, "https://langchain-ai.github.io/langgraph/", Default()[0])
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr bool
	}{
		{
			name:    "valid list keeps order",
			content: "urls:\n  - https://b.example.com/\n  - http://a.example.com/x\n  - file:///tmp/doc.md\n",
			want:    []string{"https://b.example.com/", "http://a.example.com/x", "file:///tmp/doc.md"},
		},
		{
			name:    "entries are trimmed",
			content: "urls:\n  - '  https://example.com/  '\n",
			want:    []string{"https://example.com/"},
		},
		{
			name:    "empty list",
			content: "urls: []\n",
			wantErr: true,
		},
		{
			name:    "blank entry",
			content: "urls:\n  - ''\n",
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			content: "urls:\n  - ftp://example.com/file\n",
			wantErr: true,
		},
		{
			name:    "not yaml",
			content: "urls: [unterminated\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sources.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			got, err := LoadFile(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.Error(t, Validate("https://"))
	assert.Error(t, Validate("relative/path"))
	assert.NoError(t, Validate("file:///abs/path.md"))
}
