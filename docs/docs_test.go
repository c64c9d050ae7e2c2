package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestReadDoc_RendersValidSpec(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("ReadDoc: %v", err)
	}

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("rendered doc is not JSON: %v", err)
	}
	if doc.Info.Title != SwaggerInfo.Title {
		t.Fatalf("title=%q", doc.Info.Title)
	}
	for _, p := range []string{"/api/v1/commands", "/api/v1/connection/mode", "/api/v1/schedule", "/ws"} {
		if _, ok := doc.Paths[p]; !ok {
			t.Errorf("missing path %s", p)
		}
	}
	if _, ok := doc.Paths["/api/v1/schedule"]["put"]; !ok {
		t.Error("schedule PUT not documented")
	}
}
