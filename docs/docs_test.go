package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDocRenders(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Swagger string                    `json:"swagger"`
		Info    map[string]any            `json:"info"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "File API", doc.Info["title"])

	routes := map[string][]string{
		"/health":                     {"get"},
		"/healthz":                    {"get"},
		"/owners":                     {"post"},
		"/owners/{kind}/{id}":         {"delete"},
		"/owners/{kind}/{id}/restore": {"post"},
		"/owners/{kind}/{id}/files":   {"get", "post"},
		"/files/{id}":                 {"get", "patch", "delete"},
	}
	assert.Len(t, doc.Paths, len(routes))
	for path, methods := range routes {
		ops, ok := doc.Paths[path]
		require.True(t, ok, path)
		for _, m := range methods {
			assert.Contains(t, ops, m, path)
		}
	}
}
