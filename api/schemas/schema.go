// api/schemas/schema.go
package schemas

// FieldType is a JSON Schema primitive type name.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeBoolean FieldType = "boolean"
	TypeInteger FieldType = "integer"
	TypeNumber  FieldType = "number"
	TypeArray   FieldType = "array"
)

// Field declares one top-level property of a response schema.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	// Required fields must be present in the payload. Required strings must also
	// be non-blank unless AllowEmpty is set.
	Required   bool
	AllowEmpty bool
	// Nullable fields accept an explicit JSON null.
	Nullable  bool
	MaxLength int
	// Items is the element type of an array field.
	Items FieldType
	// Default is substituted when an optional field is absent.
	Default any
}

// Schema is the declarative description of a structured model response. It is
// both sent to the generation service and enforced locally by the extractor.
type Schema struct {
	Name        string
	Description string
	Fields      []Field
	// AdditionalProperties allows keys that are not declared in Fields.
	AdditionalProperties bool
}

// Field looks up a declared field by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// RequiredNames lists the required fields in declaration order.
func (s Schema) RequiredNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// Strict reports whether provider side strict mode may be requested. Strict
// structured outputs need every property required, no extra keys and no
// length keywords.
func (s Schema) Strict() bool {
	if s.AdditionalProperties {
		return false
	}
	for _, f := range s.Fields {
		if !f.Required || f.MaxLength > 0 {
			return false
		}
	}
	return true
}

// JSONSchema renders the outbound JSON Schema object.
func (s Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		props[f.Name] = f.jsonSchema()
	}
	out := map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             s.RequiredNames(),
		"additionalProperties": s.AdditionalProperties,
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	return out
}

func (f Field) jsonSchema() map[string]any {
	p := map[string]any{}
	if f.Nullable {
		p["type"] = []any{string(f.Type), "null"}
	} else {
		p["type"] = string(f.Type)
	}
	if f.Description != "" {
		p["description"] = f.Description
	}
	if f.MaxLength > 0 {
		p["maxLength"] = f.MaxLength
	}
	if f.Type == TypeArray {
		items := f.Items
		if items == "" {
			items = TypeString
		}
		p["items"] = map[string]any{"type": string(items)}
	}
	return p
}

// Declared response schemas.
var (
	PostSchema = Schema{
		Name:        "CreateLinkedInPostResponse",
		Description: "A LinkedIn thought-leadership post split into its sections.",
		Fields: []Field{
			{Name: "headline", Type: TypeString, Required: true, MaxLength: 120},
			{Name: "body", Type: TypeString, Required: true},
			{Name: "cta", Type: TypeString, Required: true},
			{Name: "hashtags", Type: TypeArray, Items: TypeString, Required: true, Default: []any{}},
		},
	}

	TweetSchema = Schema{
		Name: "ComposeTweetResponse",
		Fields: []Field{
			{Name: "tweet", Type: TypeString, Required: true, MaxLength: 280},
			{Name: "hashtags", Type: TypeArray, Items: TypeString, Required: true, Default: []any{}},
		},
	}

	VerdictSchema = Schema{
		Name: "JudgeTweetResponse",
		Fields: []Field{
			{Name: "should_publish", Type: TypeBoolean, Required: true},
			{Name: "feedback", Type: TypeString, Required: true, AllowEmpty: true},
		},
	}

	ResearchSchema = Schema{
		Name: "ReadWebsiteResult",
		Fields: []Field{
			{Name: "title", Type: TypeString, Required: true},
			{Name: "content_markdown", Type: TypeString, Required: true},
			{Name: "summary", Type: TypeString, Nullable: true, Description: "Optional short summary of at most three sentences."},
		},
	}
)
