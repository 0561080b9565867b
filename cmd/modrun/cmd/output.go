package cmd

import (
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v2"
)

// marshalOutput renders v per the --format flag.
func marshalOutput(v interface{}) ([]byte, error) {
	if modrunFlags.root.format == "json" {
		return jsoniter.MarshalIndent(v, "", "  ")
	}
	return yaml.Marshal(v)
}
