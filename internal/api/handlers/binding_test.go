package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func bindJSON(t *testing.T, body string, out any) error {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c.ShouldBindJSON(out)
}

// Coordinates of 0 are real places (the equator, the prime meridian) and must
// pass the required rule.
func TestLocationTickAcceptsZeroCoordinates(t *testing.T) {
	var req LocationTickRequest
	if err := bindJSON(t, `{"latitude": 0, "longitude": 0, "speed": 12.5, "heading": 90}`, &req); err != nil {
		t.Fatalf("latitude/longitude 0 rejected: %v", err)
	}
	if *req.Latitude != 0 || *req.Longitude != 0 {
		t.Fatalf("coordinates = %v/%v, want 0/0", *req.Latitude, *req.Longitude)
	}
}

func TestLocationTickRejectsMissingCoordinates(t *testing.T) {
	var req LocationTickRequest
	if err := bindJSON(t, `{"speed": 12.5}`, &req); err == nil {
		t.Fatal("missing latitude/longitude must fail binding")
	}
}

func TestLocationTickRejectsOutOfRangeCoordinates(t *testing.T) {
	for _, body := range []string{
		`{"latitude": 91, "longitude": 0}`,
		`{"latitude": 0, "longitude": -181}`,
	} {
		var req LocationTickRequest
		if err := bindJSON(t, body, &req); err == nil {
			t.Fatalf("body %s must fail binding", body)
		}
	}
}

func TestCreatePointAcceptsZeroCoordinates(t *testing.T) {
	var req CreatePointRequest
	body := `{"pointID": "tps-eq", "name": "TPS Equator", "address": "Jl. Khatulistiwa", "coordinates": {"latitude": 0, "longitude": 109.3}}`
	if err := bindJSON(t, body, &req); err != nil {
		t.Fatalf("latitude 0 rejected: %v", err)
	}
	if *req.Coordinates.Latitude != 0 {
		t.Fatalf("latitude = %v, want 0", *req.Coordinates.Latitude)
	}
}

func TestCreatePointRejectsMissingCoordinates(t *testing.T) {
	var req CreatePointRequest
	body := `{"pointID": "tps-x", "name": "TPS X", "address": "Jl. X", "coordinates": {"latitude": 1.5}}`
	if err := bindJSON(t, body, &req); err == nil {
		t.Fatal("missing longitude must fail binding")
	}
}
