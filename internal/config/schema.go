package config

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is the JSON schema of the config file. It checks shape and types;
// ranges and formats are checked by Validator.
const Schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "telegram": {
      "type": "object",
      "properties": {
        "bot_token": {"type": "string"},
        "update_timeout": {"type": "integer", "minimum": 0},
        "debug": {"type": "boolean"}
      },
      "additionalProperties": false
    },
    "paginator": {
      "type": "object",
      "properties": {
        "base_id": {"type": "string", "minLength": 1},
        "delete_after": {"type": "integer", "minimum": 1},
        "reap_interval": {"type": "integer", "minimum": 1},
        "base_color": {"type": "integer", "minimum": 0, "maximum": 16777215},
        "serialize_interactions": {"type": "boolean"}
      },
      "additionalProperties": false
    },
    "storage": {
      "type": "object",
      "properties": {
        "db_path": {"type": "string"}
      },
      "additionalProperties": false
    },
    "logging": {
      "type": "object",
      "properties": {
        "level": {"type": "string", "enum": ["debug", "info", "warn", "error"]},
        "file": {"type": "string"},
        "console": {"type": "boolean"},
        "max_size": {"type": "integer", "minimum": 0},
        "max_age": {"type": "integer", "minimum": 0},
        "max_backups": {"type": "integer", "minimum": 0},
        "compress": {"type": "boolean"},
        "redaction": {"type": "boolean"}
      },
      "additionalProperties": false
    },
    "metrics": {
      "type": "object",
      "properties": {
        "enabled": {"type": "boolean"},
        "addr": {"type": "string"}
      },
      "additionalProperties": false
    },
    "audit": {
      "type": "object",
      "properties": {
        "enabled": {"type": "boolean"},
        "file": {"type": "string"}
      },
      "additionalProperties": false
    },
    "tracing": {
      "type": "object",
      "properties": {
        "enabled": {"type": "boolean"},
        "service_name": {"type": "string", "minLength": 1},
        "endpoint": {"type": "string"},
        "sample_ratio": {"type": "number", "minimum": 0, "maximum": 1}
      },
      "additionalProperties": false
    },
    "data_dir": {"type": "string"}
  },
  "additionalProperties": false
}`

var schemaLoader = gojsonschema.NewStringLoader(Schema)

// ValidateSchema validates raw config file contents against Schema
func ValidateSchema(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("schema validation errors: %s", strings.Join(msgs, "; "))
	}

	return nil
}
