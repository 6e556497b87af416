package docs

import (
	"encoding/json"
	"testing"
)

func TestSwaggerPathsMatchMounts(t *testing.T) {
	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc); err != nil {
		t.Fatalf("ReadDoc() is not valid JSON: %v", err)
	}
	if doc.BasePath != "/" {
		t.Errorf("basePath = %q, want /", doc.BasePath)
	}

	for _, path := range []string{
		"/api/v1/studio/state",
		"/api/v1/studio/generate",
		"/api/v1/audio/speech",
		"/media/{id}",
		"/health/ready",
	} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("path %s not documented", path)
		}
	}
	if _, ok := doc.Paths["/studio/state"]; ok {
		t.Error("studio paths must carry the /api/v1 prefix")
	}
}
