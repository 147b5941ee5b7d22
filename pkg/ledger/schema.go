package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// exportSchema constrains legal-record snapshots exchanged with external
// review systems. Validated on both export (tests) and import.
const exportSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["export_id", "version", "classification_id", "exported_at", "decisions", "audit_trail", "summary", "bundle_hash"],
  "properties": {
    "export_id": {"type": "string", "minLength": 1},
    "version": {"type": "string", "pattern": "^[0-9]+\\.[0-9]+\\.[0-9]+$"},
    "classification_id": {"type": "string", "minLength": 1},
    "exported_at": {"type": "string"},
    "integrity_ok": {"type": "boolean"},
    "bundle_hash": {"type": "string", "pattern": "^sha256:[0-9a-f]{64}$"},
    "decisions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["rule_id", "criterion_id", "answer", "reasoning", "confidence", "timestamp", "hash"],
        "properties": {
          "rule_id": {"type": "string", "minLength": 1},
          "criterion_id": {"type": "string", "minLength": 1},
          "reasoning": {"type": "string", "minLength": 1},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1},
          "hash": {"type": "string", "pattern": "^sha256:[0-9a-f]{64}$"}
        }
      }
    },
    "audit_trail": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "classification_id", "action", "actor", "timestamp", "hash"],
        "properties": {
          "action": {"type": "string", "minLength": 1},
          "hash": {"type": "string", "pattern": "^sha256:[0-9a-f]{64}$"}
        }
      }
    },
    "summary": {"type": "object"}
  }
}`

var compiledExportSchema = jsonschema.MustCompileString("legal_record_export.json", exportSchema)

// ValidateExport checks a serialized legal-record snapshot against the export
// schema and the supported version range.
func ValidateExport(data []byte) error {
	var generic interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return fmt.Errorf("ledger: export is not valid JSON: %w", err)
	}
	if err := compiledExportSchema.Validate(generic); err != nil {
		return fmt.Errorf("ledger: export schema violation: %w", err)
	}

	var versioned struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &versioned); err != nil {
		return err
	}
	return CheckExportVersion(versioned.Version)
}
