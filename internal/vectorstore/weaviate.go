package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"unicode"
	"unicode/utf8"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"docsrag/internal/contextutil"
)

const (
	weaviateVectorizer = "text2vec-openai"
	weaviateGenerative = "generative-openai"

	// A batch is flushed when either limit is reached.
	weaviateBatchObjects = 100
	weaviateBatchBytes   = 1 << 20
)

// WeaviateStore implements Store and Generator on a Weaviate instance.
// Vectorization and generation run server-side through the OpenAI modules.
type WeaviateStore struct {
	client *weaviate.Client
}

// WeaviateOptions configures NewWeaviateStore.
type WeaviateOptions struct {
	URL          string
	APIKey       string // Required for cloud clusters, ignored when empty
	OpenAIAPIKey string // Forwarded to the server-side OpenAI modules
}

// NewWeaviateStore connects to Weaviate and waits for a ready answer.
func NewWeaviateStore(ctx context.Context, opts WeaviateOptions) (*WeaviateStore, error) {
	cfg, err := weaviateConfig(opts)
	if err != nil {
		return nil, err
	}

	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Weaviate client: %w", err)
	}

	ready, err := client.Misc().ReadyChecker().Do(ctx)
	if err == nil && !ready {
		err = errors.New("server is not ready")
	}
	if err != nil {
		hints := []string{
			"Make sure Weaviate is running (docker compose up -d)",
			"Check WEAVIATE_URL",
		}
		if opts.APIKey != "" {
			hints = append(hints, "Check that WEAVIATE_API_KEY belongs to this cluster")
		}
		return nil, &ConnectError{
			Backend: "weaviate",
			Address: cfg.Scheme + "://" + cfg.Host,
			Hints:   hints,
			Err:     err,
		}
	}

	return &WeaviateStore{client: client}, nil
}

func weaviateConfig(opts WeaviateOptions) (weaviate.Config, error) {
	u, err := url.Parse(opts.URL)
	if err != nil || u.Host == "" {
		return weaviate.Config{}, fmt.Errorf("invalid Weaviate URL %q", opts.URL)
	}

	cfg := weaviate.Config{
		Host:    u.Host,
		Scheme:  u.Scheme,
		Headers: map[string]string{},
	}
	if cfg.Scheme == "" {
		cfg.Scheme = "http"
	}
	if opts.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{Value: opts.APIKey}
	}
	if opts.OpenAIAPIKey != "" {
		cfg.Headers["X-OpenAI-Api-Key"] = opts.OpenAIAPIKey
	}
	return cfg, nil
}

// CollectionExists checks if a class exists.
func (s *WeaviateStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(className(name)).Do(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// DeleteCollection removes a class and its objects.
func (s *WeaviateStore) DeleteCollection(ctx context.Context, name string) error {
	if err := s.client.Schema().ClassDeleter().WithClassName(className(name)).Do(ctx); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

// CreateCollection creates a class with the OpenAI vectorizer and generative modules.
func (s *WeaviateStore) CreateCollection(ctx context.Context, schema CollectionSchema) error {
	if err := s.client.Schema().ClassCreator().WithClass(classFromSchema(schema)).Do(ctx); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "collection created", "collection", schema.Name, "vectorizer", weaviateVectorizer)
	return nil
}

// Schema reads a class definition back.
func (s *WeaviateStore) Schema(ctx context.Context, name string) (*CollectionSchema, error) {
	class, err := s.client.Schema().ClassGetter().WithClassName(className(name)).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection schema: %w", err)
	}
	schema := schemaFromClass(class)
	return &schema, nil
}

// className returns the class name Weaviate stores for name: the first letter upper-cased.
// GraphQL responses are keyed by this form, not by the name the class was created with.
func className(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

func classFromSchema(schema CollectionSchema) *models.Class {
	props := make([]*models.Property, len(schema.Properties))
	for i, p := range schema.Properties {
		props[i] = &models.Property{
			Name:        p.Name,
			DataType:    []string{p.DataType},
			Description: p.Description,
		}
	}

	vectorizerConfig := map[string]interface{}{"vectorizeClassName": false}
	if schema.EmbeddingModel != "" {
		vectorizerConfig["model"] = schema.EmbeddingModel
	}
	generativeConfig := map[string]interface{}{}
	if schema.GenerativeModel != "" {
		generativeConfig["model"] = schema.GenerativeModel
	}

	return &models.Class{
		Class:      className(schema.Name),
		Vectorizer: weaviateVectorizer,
		ModuleConfig: map[string]interface{}{
			weaviateVectorizer: vectorizerConfig,
			weaviateGenerative: generativeConfig,
		},
		Properties: props,
	}
}

func schemaFromClass(class *models.Class) CollectionSchema {
	schema := CollectionSchema{Name: class.Class}
	for _, p := range class.Properties {
		if p == nil {
			continue
		}
		dataType := ""
		if len(p.DataType) > 0 {
			dataType = p.DataType[0]
		}
		schema.Properties = append(schema.Properties, Property{Name: p.Name, DataType: dataType, Description: p.Description})
	}
	if modules, ok := class.ModuleConfig.(map[string]interface{}); ok {
		schema.EmbeddingModel = moduleModel(modules, weaviateVectorizer)
		schema.GenerativeModel = moduleModel(modules, weaviateGenerative)
	}
	return schema
}

func moduleModel(modules map[string]interface{}, module string) string {
	cfg, ok := modules[module].(map[string]interface{})
	if !ok {
		return ""
	}
	model, _ := cfg["model"].(string)
	return model
}

// Insert writes records through the batch endpoint.
func (s *WeaviateStore) Insert(ctx context.Context, collection string, records []Record) error {
	logger := contextutil.LoggerFromContext(ctx)
	class := className(collection)

	for _, batch := range batchRecords(records, weaviateBatchObjects, weaviateBatchBytes) {
		objects := make([]*models.Object, len(batch))
		for i, r := range batch {
			objects[i] = &models.Object{
				Class: class,
				Properties: map[string]interface{}{
					FieldContent: r.Content,
					FieldSource:  r.Source,
					FieldTitle:   r.Title,
				},
			}
		}

		resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to upload batch: %w", err)
		}
		if err := batchError(resp); err != nil {
			return err
		}
		logger.DebugContext(ctx, "uploaded batch", "collection", collection, "count", len(objects))
	}
	return nil
}

// batchRecords splits records so that no batch exceeds maxObjects or, unless it holds a
// single record, maxBytes of property text.
func batchRecords(records []Record, maxObjects, maxBytes int) [][]Record {
	var batches [][]Record
	start, size := 0, 0
	for i, r := range records {
		n := len(r.Content) + len(r.Source) + len(r.Title)
		if i > start && (i-start == maxObjects || size+n > maxBytes) {
			batches = append(batches, records[start:i])
			start, size = i, 0
		}
		size += n
	}
	if start < len(records) {
		batches = append(batches, records[start:])
	}
	return batches
}

func batchError(resp []models.ObjectsGetResponse) error {
	for _, obj := range resp {
		if obj.Result == nil || obj.Result.Errors == nil {
			continue
		}
		for _, e := range obj.Result.Errors.Error {
			if e != nil {
				return fmt.Errorf("batch object rejected: %s", e.Message)
			}
		}
	}
	return nil
}

// Count runs an Aggregate meta count.
func (s *WeaviateStore) Count(ctx context.Context, collection string) (int, error) {
	class := className(collection)
	resp, err := s.client.GraphQL().Aggregate().
		WithClassName(class).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count objects: %w", err)
	}
	return parseAggregateCount(resp, class)
}

func parseAggregateCount(resp *models.GraphQLResponse, collection string) (int, error) {
	if err := graphQLError(resp); err != nil {
		return 0, err
	}
	aggregate, _ := resp.Data["Aggregate"].(map[string]interface{})
	groups, _ := aggregate[collection].([]interface{})
	if len(groups) == 0 {
		return 0, fmt.Errorf("aggregate response has no result for %s", collection)
	}
	group, _ := groups[0].(map[string]interface{})
	meta, _ := group["meta"].(map[string]interface{})
	count, ok := meta["count"].(float64)
	if !ok {
		return 0, fmt.Errorf("aggregate response has no count for %s", collection)
	}
	return int(count), nil
}

// NearText runs a nearText Get query.
func (s *WeaviateStore) NearText(ctx context.Context, collection string, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	resp, err := s.getNearText(collection, query, limit).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	results, _, err := parseGetResponse(resp, className(collection))
	return results, err
}

// Generate runs a nearText query with a grouped generative task over the hits.
func (s *WeaviateStore) Generate(ctx context.Context, collection string, query string, task string, limit int) (*Generation, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	resp, err := s.getNearText(collection, query, limit).
		WithGenerativeSearch(graphql.NewGenerativeSearch().GroupedResult(task)).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run generative query: %w", err)
	}
	results, answer, err := parseGetResponse(resp, className(collection))
	if err != nil {
		return nil, err
	}
	return &Generation{Answer: answer, Sources: results}, nil
}

func (s *WeaviateStore) getNearText(collection, query string, limit int) *graphql.GetBuilder {
	nearText := s.client.GraphQL().NearTextArgBuilder().WithConcepts([]string{query})
	return s.client.GraphQL().Get().
		WithClassName(className(collection)).
		WithFields(
			graphql.Field{Name: FieldContent},
			graphql.Field{Name: FieldSource},
			graphql.Field{Name: FieldTitle},
			graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}, {Name: "distance"}}},
		).
		WithNearText(nearText).
		WithLimit(limit)
}

// parseGetResponse extracts the hits of a Get query and, when present, the grouped generative answer.
func parseGetResponse(resp *models.GraphQLResponse, collection string) ([]SearchResult, string, error) {
	if err := graphQLError(resp); err != nil {
		return nil, "", err
	}
	get, _ := resp.Data["Get"].(map[string]interface{})
	objects, _ := get[collection].([]interface{})

	var answer string
	results := make([]SearchResult, 0, len(objects))
	for _, o := range objects {
		obj, ok := o.(map[string]interface{})
		if !ok {
			continue
		}
		str := func(key string) string {
			s, _ := obj[key].(string)
			return s
		}
		additional, _ := obj["_additional"].(map[string]interface{})
		results = append(results, SearchResult{
			Record: Record{Content: str(FieldContent), Source: str(FieldSource), Title: str(FieldTitle)},
			Score:  additionalScore(additional),
		})
		if generate, ok := additional["generate"].(map[string]interface{}); ok {
			if grouped, ok := generate["groupedResult"].(string); ok && grouped != "" {
				answer = grouped
			}
			if msg, ok := generate["error"].(string); ok && msg != "" {
				return nil, "", fmt.Errorf("generative module failed: %s", msg)
			}
		}
	}
	return results, answer, nil
}

// additionalScore prefers certainty and falls back to 1 - distance.
func additionalScore(additional map[string]interface{}) float32 {
	if certainty, ok := additional["certainty"].(float64); ok {
		return float32(certainty)
	}
	if distance, ok := additional["distance"].(float64); ok {
		return float32(1 - distance)
	}
	return 0
}

func graphQLError(resp *models.GraphQLResponse) error {
	if resp == nil {
		return errors.New("empty GraphQL response")
	}
	if len(resp.Errors) > 0 && resp.Errors[0] != nil {
		return fmt.Errorf("graphql error: %s", resp.Errors[0].Message)
	}
	return nil
}

// Close is a no-op; the client holds no connection that needs releasing.
func (s *WeaviateStore) Close() error {
	return nil
}
