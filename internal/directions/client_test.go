package directions

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/config"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/models"
)

var (
	testOrigin      = models.Coordinates{Latitude: -6.2, Longitude: 106.8}
	testDestination = models.Coordinates{Latitude: -6.21, Longitude: 106.81}
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(config.MapsConfig{APIKey: "test-key", BaseURL: server.URL})
	return client, server
}

func assertStraightLine(t *testing.T, path []models.Coordinates) {
	t.Helper()
	if len(path) != 2 {
		t.Fatalf("path has %d points, want the 2-point straight line", len(path))
	}
	if path[0] != testOrigin || path[1] != testDestination {
		t.Fatalf("path = %v, want [origin, destination]", path)
	}
}

func TestGetPathDecodesRoute(t *testing.T) {
	steps := []models.Coordinates{
		testOrigin,
		{Latitude: -6.205, Longitude: 106.805},
		testDestination,
	}
	encoded := encodePolyline(steps)

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q, want test-key", got)
		}
		if r.URL.Query().Get("origin") == "" || r.URL.Query().Get("destination") == "" {
			t.Error("origin/destination query parameters missing")
		}
		fmt.Fprintf(w, `{"status":"OK","routes":[{"legs":[{"steps":[{"polyline":{"points":%q}}]}]}]}`, encoded)
	}))
	defer server.Close()

	path := client.GetPath(context.Background(), testOrigin, testDestination)
	if len(path) != 3 {
		t.Fatalf("path has %d points, want 3", len(path))
	}
	if math.Abs(path[1].Latitude-(-6.205)) > 1e-5 {
		t.Fatalf("midpoint latitude = %f", path[1].Latitude)
	}
}

func TestGetPathConcatenatesSteps(t *testing.T) {
	step1 := encodePolyline([]models.Coordinates{testOrigin, {Latitude: -6.205, Longitude: 106.805}})
	step2 := encodePolyline([]models.Coordinates{{Latitude: -6.205, Longitude: 106.805}, testDestination})

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"status":"OK","routes":[{"legs":[{"steps":[{"polyline":{"points":%q}},{"polyline":{"points":%q}}]}]}]}`, step1, step2)
	}))
	defer server.Close()

	path := client.GetPath(context.Background(), testOrigin, testDestination)
	// The shared joint between the steps is deduplicated.
	if len(path) != 3 {
		t.Fatalf("path has %d points, want 3", len(path))
	}
}

func TestGetPathFallbackOnServerError(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	assertStraightLine(t, client.GetPath(context.Background(), testOrigin, testDestination))
}

func TestGetPathFallbackOnNoRoutes(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ZERO_RESULTS","routes":[]}`)
	}))
	defer server.Close()

	assertStraightLine(t, client.GetPath(context.Background(), testOrigin, testDestination))
}

func TestGetPathFallbackOnBadBody(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer server.Close()

	assertStraightLine(t, client.GetPath(context.Background(), testOrigin, testDestination))
}

func TestGetPathFallbackWithoutAPIKey(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(config.MapsConfig{APIKey: "", BaseURL: server.URL})
	assertStraightLine(t, client.GetPath(context.Background(), testOrigin, testDestination))
	if called {
		t.Fatal("client must not call the service without a credential")
	}
}

func TestGetPathFallbackOnUnreachableService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(config.MapsConfig{APIKey: "test-key", BaseURL: server.URL})
	assertStraightLine(t, client.GetPath(context.Background(), testOrigin, testDestination))
}
