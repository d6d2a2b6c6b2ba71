package content

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// overridesSchema describes a JSON override document. Every property is
// optional; null stands for "not customised".
const overridesSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "tagline": {"type": ["string", "null"]},
    "profile": {"type": ["string", "null"]},
    "slogan": {"type": ["string", "null"]},
    "education": {"type": ["string", "null"]},
    "keyAchievements": {
      "type": ["array", "null"],
      "items": {"type": "string"}
    },
    "skillCategories": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["category", "skills"],
        "properties": {
          "category": {"type": "string", "minLength": 1},
          "skills": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "workExperience": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["company", "role"],
        "properties": {
          "company": {"type": "string", "minLength": 1},
          "role": {"type": "string", "minLength": 1},
          "period": {"type": "string"},
          "description": {"type": "string"},
          "achievements": {"type": ["array", "null"], "items": {"type": "string"}},
          "skills": {"type": ["array", "null"], "items": {"type": "string"}}
        }
      }
    },
    "motivationLetter": {
      "type": ["object", "null"],
      "properties": {
        "greeting": {"type": "string"},
        "body": {"type": "string"},
        "closing": {"type": "string"}
      }
    }
  }
}`

// ValidateOverridesJSON validates a JSON override document against the
// content schema.
func ValidateOverridesJSON(raw []byte) (err error) {
	schemaLoader := gojsonschema.NewStringLoader(overridesSchema)
	docLoader := gojsonschema.NewBytesLoader(raw)

	var res *gojsonschema.Result
	res, err = gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		err = errors.Wrap(err, "failed to run content schema validation")
		return err
	}

	if res.Valid() {
		return err
	}

	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	err = errors.Errorf("content schema validation failed: %s", strings.Join(msgs, "; "))
	return err
}
