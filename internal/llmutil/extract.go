// internal/llmutil/extract.go
package llmutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/xkilldash9x/quill-cli/api/schemas"
)

// Extract turns a raw model reply into a typed value conforming to schema.
//
// The payload is unwrapped from any markdown fence, decoded, checked field by
// field and normalized: strings are trimmed, blank entries are dropped from
// string lists and absent optional fields take their declared default. Extraction
// either fully succeeds or returns an EmptyResponse or SchemaViolation error;
// a partially populated T is never returned. Extract is pure, so feeding the
// same completion twice yields equal results.
func Extract[T any](raw schemas.RawCompletion, schema schemas.Schema) (T, error) {
	var zero T

	obj, err := ExtractObject(raw, schema)
	if err != nil {
		return zero, err
	}

	buf, err := json.Marshal(obj)
	if err != nil {
		return zero, schemas.NewSchemaViolation("", fmt.Sprintf("re-encoding normalized payload: %v", err))
	}
	var out T
	if err := json.Unmarshal(buf, &out); err != nil {
		return zero, schemas.NewSchemaViolation(fieldOf(err), fmt.Sprintf("payload does not fit %s: %v", schema.Name, err))
	}
	return out, nil
}

// ExtractObject performs the checks of Extract and returns the normalized
// payload as a generic JSON object.
func ExtractObject(raw schemas.RawCompletion, schema schemas.Schema) (map[string]any, error) {
	if raw == nil {
		return nil, schemas.NewEmptyResponse("no completion was returned")
	}
	text, ok := raw.Text()
	if !ok || strings.TrimSpace(text) == "" {
		msg := "completion carried no text content"
		if refusal := schemas.RefusalOf(raw); refusal != "" {
			msg = "model refused: " + refusal
		}
		return nil, schemas.NewEmptyResponse(msg)
	}

	payload := UnwrapJSON(text)
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, schemas.NewSchemaViolation("", fmt.Sprintf("malformed JSON: %v (payload: %s)", err, truncateString(payload, 200)))
	}
	if dec.More() {
		return nil, schemas.NewSchemaViolation("", "trailing data after JSON object")
	}
	obj, ok := root.(map[string]any)
	if !ok {
		return nil, schemas.NewSchemaViolation("", fmt.Sprintf("expected a JSON object, got %s", jsonTypeName(root)))
	}
	return normalize(obj, schema)
}

// ParseVerdict extracts a judge verdict and applies the feedback rules:
// accepted verdicts carry no feedback and rejected verdicts always carry some.
func ParseVerdict(raw schemas.RawCompletion) (schemas.JudgeVerdict, error) {
	v, err := Extract[schemas.JudgeVerdict](raw, schemas.VerdictSchema)
	if err != nil {
		return schemas.JudgeVerdict{}, err
	}
	return v.Normalize(), nil
}

func normalize(obj map[string]any, schema schemas.Schema) (map[string]any, error) {
	if !schema.AdditionalProperties {
		var extra []string
		for key := range obj {
			if _, declared := schema.Field(key); !declared {
				extra = append(extra, key)
			}
		}
		if len(extra) > 0 {
			sort.Strings(extra)
			return nil, schemas.NewSchemaViolation(extra[0], "additional property is not allowed")
		}
	}

	out := make(map[string]any, len(schema.Fields))
	for key, value := range obj {
		if _, declared := schema.Field(key); !declared {
			out[key] = value
		}
	}

	for _, f := range schema.Fields {
		value, present := obj[f.Name]
		if !present {
			if f.Required {
				return nil, schemas.NewSchemaViolation(f.Name, "required field is missing")
			}
			if f.Default != nil {
				out[f.Name] = f.Default
			}
			continue
		}
		if value == nil {
			if !f.Nullable {
				return nil, schemas.NewSchemaViolation(f.Name, "null is not allowed")
			}
			out[f.Name] = nil
			continue
		}
		v, err := checkField(f, value)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

func checkField(f schemas.Field, value any) (any, error) {
	switch f.Type {
	case schemas.TypeString:
		s, ok := value.(string)
		if !ok {
			return nil, typeMismatch(f.Name, f.Type, value)
		}
		s = strings.TrimSpace(s)
		if s == "" && f.Required && !f.AllowEmpty {
			return nil, schemas.NewSchemaViolation(f.Name, "must not be blank")
		}
		if f.MaxLength > 0 && utf8.RuneCountInString(s) > f.MaxLength {
			return nil, schemas.NewSchemaViolation(f.Name, fmt.Sprintf("exceeds maxLength %d (got %d characters)", f.MaxLength, utf8.RuneCountInString(s)))
		}
		return s, nil

	case schemas.TypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, typeMismatch(f.Name, f.Type, value)
		}
		return b, nil

	case schemas.TypeInteger, schemas.TypeNumber:
		return checkNumber(f.Name, f.Type, value)

	case schemas.TypeArray:
		items, ok := value.([]any)
		if !ok {
			return nil, typeMismatch(f.Name, f.Type, value)
		}
		return checkItems(f, items)
	}
	return nil, schemas.NewSchemaViolation(f.Name, fmt.Sprintf("unsupported schema type %q", f.Type))
}

func checkItems(f schemas.Field, items []any) ([]any, error) {
	itemType := f.Items
	if itemType == "" {
		itemType = schemas.TypeString
	}
	out := make([]any, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("%s[%d]", f.Name, i)
		switch itemType {
		case schemas.TypeString:
			s, ok := item.(string)
			if !ok {
				return nil, typeMismatch(path, itemType, item)
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		case schemas.TypeBoolean:
			b, ok := item.(bool)
			if !ok {
				return nil, typeMismatch(path, itemType, item)
			}
			out = append(out, b)
		case schemas.TypeInteger, schemas.TypeNumber:
			n, err := checkNumber(path, itemType, item)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		default:
			return nil, schemas.NewSchemaViolation(path, fmt.Sprintf("unsupported item type %q", itemType))
		}
	}
	return out, nil
}

func checkNumber(path string, t schemas.FieldType, value any) (any, error) {
	n, ok := value.(json.Number)
	if !ok {
		return nil, typeMismatch(path, t, value)
	}
	if t == schemas.TypeInteger {
		if _, err := n.Int64(); err != nil {
			return nil, typeMismatch(path, t, value)
		}
		return n, nil
	}
	if _, err := n.Float64(); err != nil {
		return nil, typeMismatch(path, t, value)
	}
	return n, nil
}

func typeMismatch(path string, want schemas.FieldType, got any) error {
	return schemas.NewSchemaViolation(path, fmt.Sprintf("expected %s, got %s", want, jsonTypeName(got)))
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func fieldOf(err error) string {
	if ute, ok := err.(*json.UnmarshalTypeError); ok {
		return ute.Field
	}
	return ""
}
