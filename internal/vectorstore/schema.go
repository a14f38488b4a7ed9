package vectorstore

// DataTypeText is the only property type the ingestion schema uses.
const DataTypeText = "text"

// Names of the stored fields.
const (
	FieldContent = "content"
	FieldSource  = "source"
	FieldTitle   = "title"
)

// Property is one field of a collection.
type Property struct {
	Name        string
	DataType    string
	Description string
}

// CollectionSchema is the remote-side definition of a collection.
type CollectionSchema struct {
	Name            string
	Properties      []Property
	EmbeddingModel  string // Model used to vectorize text fields
	GenerativeModel string // Empty means the backend default
}

// DefaultSchema returns the three-text-field layout used for documentation chunks.
func DefaultSchema(name, embeddingModel, generativeModel string) CollectionSchema {
	return CollectionSchema{
		Name: name,
		Properties: []Property{
			{Name: FieldContent, DataType: DataTypeText, Description: "The document content"},
			{Name: FieldSource, DataType: DataTypeText, Description: "The source URL of the document"},
			{Name: FieldTitle, DataType: DataTypeText, Description: "The title of the document"},
		},
		EmbeddingModel:  embeddingModel,
		GenerativeModel: generativeModel,
	}
}

// PropertyNames returns the field names in schema order.
func (s CollectionSchema) PropertyNames() []string {
	names := make([]string, len(s.Properties))
	for i, p := range s.Properties {
		names[i] = p.Name
	}
	return names
}
