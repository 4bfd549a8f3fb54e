package docs

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/swaggo/swag"
)

type swaggerDoc struct {
	Paths       map[string]map[string]json.RawMessage `json:"paths"`
	Definitions map[string]json.RawMessage            `json:"definitions"`
}

func readDoc(t *testing.T) (string, swaggerDoc) {
	t.Helper()
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	var doc swaggerDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("doc is not valid JSON: %v", err)
	}
	return raw, doc
}

func TestDocCoversAPIRoutes(t *testing.T) {
	_, doc := readDoc(t)

	routes := []string{
		"GET /api/auth/me",
		"GET /api/auth/google/login",
		"GET /api/auth/google/callback",
		"GET /api/bookings",
		"POST /api/bookings",
		"GET /api/bookings/{id}",
		"PUT /api/bookings/{id}",
		"DELETE /api/bookings/{id}",
		"GET /api/bookings/{id}/activities",
		"POST /api/bookings/{id}/edit-requests",
		"PUT /api/bookings/edit-requests/{requestId}",
		"GET /api/notifications",
		"PUT /api/notifications",
		"GET /api/realtime",
	}
	for _, route := range routes {
		method, path, _ := strings.Cut(route, " ")
		if _, ok := doc.Paths[path][strings.ToLower(method)]; !ok {
			t.Errorf("missing operation %s", route)
		}
	}
}

func TestDocReferencesResolve(t *testing.T) {
	raw, doc := readDoc(t)

	refs := regexp.MustCompile(`"#/definitions/([\w.]+)"`).FindAllStringSubmatch(raw, -1)
	if len(refs) == 0 {
		t.Fatal("expected schema references")
	}
	for _, m := range refs {
		if _, ok := doc.Definitions[m[1]]; !ok {
			t.Errorf("dangling reference %s", m[1])
		}
	}
}
