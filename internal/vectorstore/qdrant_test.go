package vectorstore

import (
	"context"
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestQdrantAddress(t *testing.T) {
	tests := []struct {
		name     string
		urlStr   string
		wantErr  bool
		wantHost string
		wantPort int
		wantTLS  bool
	}{
		{
			name:     "valid URL",
			urlStr:   "http://localhost:6333",
			wantHost: "localhost",
			wantPort: 6334, // gRPC port is HTTP port + 1
		},
		{
			name:     "URL with custom port",
			urlStr:   "http://localhost:9000",
			wantHost: "localhost",
			wantPort: 9001,
		},
		{
			name:    "invalid URL",
			urlStr:  "://invalid",
			wantErr: true,
		},
		{
			name:     "URL without port",
			urlStr:   "http://localhost",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:     "URL without hostname",
			urlStr:   "http://:6333",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:     "https enables TLS",
			urlStr:   "https://xyz.cloud.qdrant.io:6333",
			wantHost: "xyz.cloud.qdrant.io",
			wantPort: 6334,
			wantTLS:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, useTLS, err := qdrantAddress(tt.urlStr)
			if tt.wantErr {
				if err == nil {
					t.Error("qdrantAddress() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("qdrantAddress() unexpected error: %v", err)
			}
			if host != tt.wantHost {
				t.Errorf("host = %q, want %q", host, tt.wantHost)
			}
			if port != tt.wantPort {
				t.Errorf("port = %d, want %d", port, tt.wantPort)
			}
			if useTLS != tt.wantTLS {
				t.Errorf("useTLS = %v, want %v", useTLS, tt.wantTLS)
			}
		})
	}
}

func TestNewQdrantStore_RequiresEmbedder(t *testing.T) {
	_, err := NewQdrantStore(context.Background(), QdrantOptions{URL: "http://localhost:6333", VectorSize: 3}, nil)
	if err == nil {
		t.Error("NewQdrantStore() expected error without embedder")
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	record := Record{Content: "body", Source: "https://example.com", Title: "Example"}

	payload := qdrant.NewValueMap(recordPayload(record))
	got := payloadRecord(convertPayloadToMap(payload))

	if got != record {
		t.Errorf("payloadRecord() = %+v, want %+v", got, record)
	}
}

func TestConvertValue(t *testing.T) {
	payload := qdrant.NewValueMap(map[string]any{
		"flag":  true,
		"count": int64(3),
		"ratio": 0.5,
		"tags":  []any{"a", "b"},
	})

	got := convertPayloadToMap(payload)

	if got["flag"] != true {
		t.Errorf("flag = %v, want true", got["flag"])
	}
	if got["count"] != int64(3) {
		t.Errorf("count = %v, want 3", got["count"])
	}
	if got["ratio"] != 0.5 {
		t.Errorf("ratio = %v, want 0.5", got["ratio"])
	}
	tags, ok := got["tags"].([]any)
	if !ok || len(tags) != 2 || tags[0] != "a" {
		t.Errorf("tags = %v, want [a b]", got["tags"])
	}
}

func TestPayloadRecord_MissingFields(t *testing.T) {
	got := payloadRecord(map[string]any{FieldContent: "only content", FieldTitle: 42})
	if got.Content != "only content" || got.Source != "" || got.Title != "" {
		t.Errorf("payloadRecord() = %+v", got)
	}
}
