package bootstrap

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/schema"
)

//go:embed tables.json
var tablesJSON []byte

// GetTableDefinitions returns the definitions of every table, in creation order.
// Loaded from embedded JSON so columns can be maintained without code changes.
func GetTableDefinitions() ([]schema.TableDefinition, error) {
	var definitions []schema.TableDefinition
	if err := json.Unmarshal(tablesJSON, &definitions); err != nil {
		return nil, fmt.Errorf("failed to parse tables.json: %w", err)
	}
	return definitions, nil
}
