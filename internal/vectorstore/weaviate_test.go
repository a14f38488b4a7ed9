package vectorstore

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate/entities/models"
)

func TestWeaviateConfig(t *testing.T) {
	tests := []struct {
		name       string
		opts       WeaviateOptions
		wantErr    bool
		wantHost   string
		wantScheme string
		wantAuth   bool
	}{
		{
			name:       "local",
			opts:       WeaviateOptions{URL: "http://localhost:8080", OpenAIAPIKey: "sk"},
			wantHost:   "localhost:8080",
			wantScheme: "http",
		},
		{
			name:       "cloud with api key",
			opts:       WeaviateOptions{URL: "https://abc.weaviate.cloud", APIKey: "wv", OpenAIAPIKey: "sk"},
			wantHost:   "abc.weaviate.cloud",
			wantScheme: "https",
			wantAuth:   true,
		},
		{
			name:    "missing host",
			opts:    WeaviateOptions{URL: "localhost"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := weaviateConfig(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, cfg.Host)
			assert.Equal(t, tt.wantScheme, cfg.Scheme)
			assert.Equal(t, "sk", cfg.Headers["X-OpenAI-Api-Key"])
			if tt.wantAuth {
				assert.Equal(t, auth.ApiKey{Value: "wv"}, cfg.AuthConfig)
			} else {
				assert.Nil(t, cfg.AuthConfig)
			}
		})
	}
}

func TestClassFromSchema(t *testing.T) {
	schema := DefaultSchema("LangGraphDocs", "text-embedding-3-small", "gpt-4o-mini")

	class := classFromSchema(schema)

	assert.Equal(t, "LangGraphDocs", class.Class)
	assert.Equal(t, weaviateVectorizer, class.Vectorizer)
	require.Len(t, class.Properties, 3)
	for _, p := range class.Properties {
		assert.Equal(t, []string{DataTypeText}, p.DataType)
	}

	back := schemaFromClass(class)
	assert.Equal(t, schema.Name, back.Name)
	assert.Equal(t, schema.PropertyNames(), back.PropertyNames())
	assert.Equal(t, "text-embedding-3-small", back.EmbeddingModel)
	assert.Equal(t, "gpt-4o-mini", back.GenerativeModel)
}

func TestClassFromSchema_DefaultModels(t *testing.T) {
	class := classFromSchema(DefaultSchema("Docs", "", ""))
	modules, ok := class.ModuleConfig.(map[string]interface{})
	require.True(t, ok)

	vectorizer := modules[weaviateVectorizer].(map[string]interface{})
	_, hasModel := vectorizer["model"]
	assert.False(t, hasModel)
	assert.Contains(t, modules, weaviateGenerative)
}

func TestBatchRecords(t *testing.T) {
	records := make([]Record, 250)
	for i := range records {
		records[i] = Record{Content: "x"}
	}

	batches := batchRecords(records, 100, 1<<20)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 100)
	assert.Len(t, batches[1], 100)
	assert.Len(t, batches[2], 50)

	big := []Record{
		{Content: strings.Repeat("a", 600)},
		{Content: strings.Repeat("b", 600)},
		{Content: strings.Repeat("c", 2000)},
	}
	batches = batchRecords(big, 100, 1000)
	require.Len(t, batches, 3, "each record exceeds half the byte budget")
	assert.Equal(t, big[2:], batches[2], "an oversized record is sent alone")

	assert.Empty(t, batchRecords(nil, 100, 1000))
}

func TestBatchError(t *testing.T) {
	var ok []models.ObjectsGetResponse
	require.NoError(t, json.Unmarshal([]byte(`[{"class":"Docs","result":{}}]`), &ok))
	assert.NoError(t, batchError(ok))

	var failed []models.ObjectsGetResponse
	require.NoError(t, json.Unmarshal([]byte(`[{"class":"Docs","result":{"errors":{"error":[{"message":"no api key"}]}}}]`), &failed))
	err := batchError(failed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no api key")
}

func graphQLResponse(t *testing.T, body string) *models.GraphQLResponse {
	t.Helper()
	var resp models.GraphQLResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	return &resp
}

func TestParseAggregateCount(t *testing.T) {
	resp := graphQLResponse(t, `{"data":{"Aggregate":{"Docs":[{"meta":{"count":42}}]}}}`)
	count, err := parseAggregateCount(resp, "Docs")
	require.NoError(t, err)
	assert.Equal(t, 42, count)

	_, err = parseAggregateCount(graphQLResponse(t, `{"data":{"Aggregate":{"Docs":[]}}}`), "Docs")
	assert.Error(t, err)

	_, err = parseAggregateCount(graphQLResponse(t, `{"errors":[{"message":"class not found"}]}`), "Docs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class not found")
}

func TestParseGetResponse(t *testing.T) {
	resp := graphQLResponse(t, `{"data":{"Get":{"Docs":[
		{"content":"first","source":"https://a","title":"A","_additional":{"certainty":0.9,"distance":0.2}},
		{"content":"second","source":"https://b","title":"B","_additional":{"distance":0.4}},
		{"content":"third","source":"https://c","title":"C","_additional":{}}
	]}}}`)

	results, answer, err := parseGetResponse(resp, "Docs")
	require.NoError(t, err)
	assert.Empty(t, answer)
	require.Len(t, results, 3)

	assert.Equal(t, Record{Content: "first", Source: "https://a", Title: "A"}, results[0].Record)
	assert.InDelta(t, 0.9, results[0].Score, 1e-6, "certainty wins over distance")
	assert.InDelta(t, 0.6, results[1].Score, 1e-6, "1 - distance without certainty")
	assert.Zero(t, results[2].Score)
}

func TestParseGetResponse_Generative(t *testing.T) {
	resp := graphQLResponse(t, `{"data":{"Get":{"Docs":[
		{"content":"c","source":"s","title":"t","_additional":{"certainty":0.8,"generate":{"groupedResult":"An answer.","error":null}}},
		{"content":"d","source":"s","title":"t","_additional":{"certainty":0.7,"generate":null}}
	]}}}`)

	results, answer, err := parseGetResponse(resp, "Docs")
	require.NoError(t, err)
	assert.Equal(t, "An answer.", answer)
	assert.Len(t, results, 2)

	failed := graphQLResponse(t, `{"data":{"Get":{"Docs":[
		{"content":"c","_additional":{"generate":{"groupedResult":null,"error":"quota exceeded"}}}
	]}}}`)
	_, _, err = parseGetResponse(failed, "Docs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGraphQLError_NilResponse(t *testing.T) {
	assert.Error(t, graphQLError(nil))
}
