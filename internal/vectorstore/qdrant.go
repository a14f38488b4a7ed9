package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/tmc/langchaingo/embeddings"

	"docsrag/internal/contextutil"
)

// qdrantEmbedBatch is how many texts are embedded and upserted per request.
const qdrantEmbedBatch = 64

// QdrantStore implements Store using Qdrant. Vectors are computed client-side by the embedder.
type QdrantStore struct {
	client         *qdrant.Client
	embedder       embeddings.Embedder
	vectorSize     int
	embeddingModel string
}

// QdrantOptions configures NewQdrantStore.
type QdrantOptions struct {
	URL            string // HTTP URL, e.g. "http://localhost:6333"
	APIKey         string
	VectorSize     int
	EmbeddingModel string
}

// NewQdrantStore creates a Qdrant client and checks that the server answers.
// The gRPC port is derived from the HTTP port in opts.URL.
func NewQdrantStore(ctx context.Context, opts QdrantOptions, embedder embeddings.Embedder) (*QdrantStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("qdrant store requires an embedder")
	}
	if opts.VectorSize <= 0 {
		return nil, fmt.Errorf("vector size must be greater than 0")
	}

	host, port, useTLS, err := qdrantAddress(opts.URL)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: opts.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	if _, err := client.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, &ConnectError{
			Backend: "qdrant",
			Address: fmt.Sprintf("%s:%d", host, port),
			Err:     err,
			Hints: []string{
				"Make sure Qdrant is running (docker run -p 6333:6333 -p 6334:6334 qdrant/qdrant)",
				"Check QDRANT_URL; the gRPC port is the HTTP port + 1",
				"Set QDRANT_API_KEY when the cluster requires authentication",
			},
		}
	}

	return &QdrantStore{
		client:         client,
		embedder:       embedder,
		vectorSize:     opts.VectorSize,
		embeddingModel: opts.EmbeddingModel,
	}, nil
}

// qdrantAddress turns an HTTP URL into the gRPC host and port.
func qdrantAddress(urlStr string) (string, int, bool, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334 // Default gRPC port
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			port = httpPort + 1
		}
	}

	return host, port, parsedURL.Scheme == "https", nil
}

// CollectionExists checks if a collection exists.
func (s *QdrantStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// DeleteCollection removes a collection.
func (s *QdrantStore) DeleteCollection(ctx context.Context, name string) error {
	exists, err := s.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	if err := s.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

// CreateCollection creates a cosine collection and one full-text payload index per property.
func (s *QdrantStore) CreateCollection(ctx context.Context, schema CollectionSchema) error {
	logger := contextutil.LoggerFromContext(ctx)

	err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: schema.Name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	wait := true
	for _, prop := range schema.Properties {
		_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: schema.Name,
			Wait:           &wait,
			FieldName:      prop.Name,
			FieldType:      qdrant.FieldType_FieldTypeText.Enum(),
		})
		if err != nil {
			return fmt.Errorf("failed to index field %s: %w", prop.Name, err)
		}
	}

	logger.InfoContext(ctx, "collection created", "collection", schema.Name, "vector_size", s.vectorSize, "fields", len(schema.Properties))
	return nil
}

// Schema rebuilds the collection schema from its text payload indexes.
func (s *QdrantStore) Schema(ctx context.Context, name string) (*CollectionSchema, error) {
	info, err := s.client.GetCollectionInfo(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection info: %w", err)
	}

	names := make([]string, 0, len(info.GetPayloadSchema()))
	for field, fieldInfo := range info.GetPayloadSchema() {
		if fieldInfo.GetDataType() == qdrant.PayloadSchemaType_Text {
			names = append(names, field)
		}
	}
	sort.Strings(names)

	schema := &CollectionSchema{Name: name, EmbeddingModel: s.embeddingModel}
	for _, n := range names {
		schema.Properties = append(schema.Properties, Property{Name: n, DataType: DataTypeText})
	}
	return schema, nil
}

// Insert embeds and upserts records in batches, waiting for each batch to be applied.
func (s *QdrantStore) Insert(ctx context.Context, collection string, records []Record) error {
	logger := contextutil.LoggerFromContext(ctx)

	for start := 0; start < len(records); start += qdrantEmbedBatch {
		end := min(start+qdrantEmbedBatch, len(records))
		batch := records[start:end]

		texts := make([]string, len(batch))
		for i, r := range batch {
			texts[i] = r.Content
		}
		vectors, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed batch: %w", err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(batch))
		}

		points := make([]*qdrant.PointStruct, len(batch))
		for i, r := range batch {
			points[i] = &qdrant.PointStruct{
				Id:      qdrant.NewID(uuid.NewString()),
				Vectors: qdrant.NewVectors(vectors[i]...),
				Payload: qdrant.NewValueMap(recordPayload(r)),
			}
		}

		wait := true
		if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Wait:           &wait,
			Points:         points,
		}); err != nil {
			logger.ErrorContext(ctx, "failed to upsert points", "collection", collection, "count", len(points), "error", err)
			return fmt.Errorf("failed to upsert points: %w", err)
		}
		logger.DebugContext(ctx, "upserted points", "collection", collection, "count", len(points))
	}
	return nil
}

// Count returns the exact number of points in the collection.
func (s *QdrantStore) Count(ctx context.Context, collection string) (int, error) {
	exact := true
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return int(n), nil
}

// NearText embeds query and returns the closest points.
func (s *QdrantStore) NearText(ctx context.Context, collection string, query string, limit int) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	n := uint64(limit)
	scoredPoints, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &n,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", collection, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]SearchResult, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		results = append(results, SearchResult{
			Record: payloadRecord(convertPayloadToMap(point.GetPayload())),
			Score:  point.GetScore(),
		})
	}
	return results, nil
}

// Close closes the gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func recordPayload(r Record) map[string]any {
	return map[string]any{
		FieldContent: r.Content,
		FieldSource:  r.Source,
		FieldTitle:   r.Title,
	}
}

func payloadRecord(meta map[string]any) Record {
	str := func(key string) string {
		s, _ := meta[key].(string)
		return s
	}
	return Record{
		Content: str(FieldContent),
		Source:  str(FieldSource),
		Title:   str(FieldTitle),
	}
}

// convertPayloadToMap converts Qdrant payload to map[string]any.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

// convertValue converts a Qdrant Value to Go any type.
func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}
