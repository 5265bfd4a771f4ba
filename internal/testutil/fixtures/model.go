package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// ModelJSON is a three-tree logistic ensemble over the production column
// order. Leaf values are chosen so every tree is easy to evaluate by hand.
const ModelJSON = `{
  "format": "xgboost-json-dump",
  "version": "test-1",
  "objective": "binary:logistic",
  "base_score": 0.5,
  "feature_names": [
    "amount", "oldbalanceOrg", "newbalanceOrig", "oldbalanceDest", "newbalanceDest",
    "card_ip_province_match", "transaction_hour", "card_transaction_count_last_1h",
    "card_transaction_count_last_10min", "is_new_device", "card_type_code", "transaction_type_code"
  ],
  "trees": [
    { "nodeid": 0, "depth": 0, "split": "card_transaction_count_last_10min", "split_condition": 2.5,
      "yes": 1, "no": 2, "missing": 1, "gain": 40.0, "cover": 100,
      "children": [
        { "nodeid": 1, "depth": 1, "split": "card_ip_province_match", "split_condition": 0.5,
          "yes": 3, "no": 4, "missing": 3, "gain": 12.0, "cover": 80,
          "children": [
            { "nodeid": 3, "leaf": 0.8, "cover": 10 },
            { "nodeid": 4, "leaf": -1.2, "cover": 70 }
          ] },
        { "nodeid": 2, "leaf": 1.5, "cover": 20 }
      ] },
    { "nodeid": 0, "depth": 0, "split": "f0", "split_condition": 5000,
      "yes": 1, "no": 2, "missing": 1, "gain": 30.0, "cover": 100,
      "children": [
        { "nodeid": 1, "leaf": -0.4, "cover": 85 },
        { "nodeid": 2, "depth": 1, "split": "is_new_device", "split_condition": 0.5,
          "yes": 3, "no": 4, "missing": 4, "gain": 5.0, "cover": 15,
          "children": [
            { "nodeid": 3, "leaf": 0.3, "cover": 5 },
            { "nodeid": 4, "leaf": 0.9, "cover": 10 }
          ] }
      ] },
    { "nodeid": 0, "depth": 0, "split": "transaction_hour", "split_condition": 6,
      "yes": 1, "no": 2, "missing": 2, "gain": 8.0, "cover": 100,
      "children": [
        { "nodeid": 1, "leaf": 0.6, "cover": 20 },
        { "nodeid": 2, "leaf": -0.3, "cover": 80 }
      ] }
  ]
}`

// WriteModel writes ModelJSON into a temp dir and returns its path.
func WriteModel(t *testing.T) string {
	t.Helper()
	return WriteFile(t, "model.json", ModelJSON)
}

// WriteFile writes content into a fresh temp dir and returns its path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
