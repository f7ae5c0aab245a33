package textract

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// itemsSchemaJSON describes a saved text items file: a list of objects that
// each carry at least the text and its confidence. Extra fields (geometry,
// block ids) are tolerated; older sessions saved them inconsistently.
const itemsSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["text", "confidence"],
    "properties": {
      "text": {"type": "string"},
      "confidence": {"type": "number"}
    }
  }
}`

var (
	itemsSchemaOnce sync.Once
	itemsSchema     *jsonschema.Schema
	itemsSchemaErr  error
)

// compiledItemsSchema compiles the items schema once and caches it for all
// subsequent parses.
func compiledItemsSchema() (*jsonschema.Schema, error) {
	itemsSchemaOnce.Do(func() {
		// The jsonschema library expects a parsed JSON value, not raw bytes.
		var doc any
		if err := json.Unmarshal([]byte(itemsSchemaJSON), &doc); err != nil {
			itemsSchemaErr = fmt.Errorf("parse items schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const schemaURL = "schema://text-items.json"
		if err := c.AddResource(schemaURL, doc); err != nil {
			itemsSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		itemsSchema, itemsSchemaErr = c.Compile(schemaURL)
	})
	return itemsSchema, itemsSchemaErr
}
