package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/config"
	"github.com/szyxxx/Smart-Waste-Collection-Management-App-sub002/internal/models"

	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://maps.googleapis.com"

// Client fetches driving paths from the remote directions service.
//
// GetPath never fails: navigation must degrade gracefully, so any error
// (missing credential, network, bad status, unparsable body, zero routes)
// yields the straight line between origin and destination instead.
type Client struct {
	session *http.Client
	apiKey  string
	baseURL string
}

func NewClient(cfg config.MapsConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
	}
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Steps []struct {
				Polyline struct {
					Points string `json:"points"`
				} `json:"polyline"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// GetPath returns the driving path from origin to destination as a coordinate
// sequence. The fallback two-point path is exactly [origin, destination].
func (c *Client) GetPath(ctx context.Context, origin, destination models.Coordinates) []models.Coordinates {
	fallback := []models.Coordinates{origin, destination}

	if c.apiKey == "" {
		return fallback
	}

	path, err := c.fetchPath(ctx, origin, destination)
	if err != nil {
		logrus.Warnf("directions lookup failed, falling back to straight line: %v", err)
		return fallback
	}
	if len(path) == 0 {
		return fallback
	}
	return path
}

func (c *Client) fetchPath(ctx context.Context, origin, destination models.Coordinates) ([]models.Coordinates, error) {
	query := url.Values{}
	query.Set("origin", fmt.Sprintf("%f,%f", origin.Latitude, origin.Longitude))
	query.Set("destination", fmt.Sprintf("%f,%f", destination.Latitude, destination.Longitude))
	query.Set("mode", "driving")
	query.Set("key", c.apiKey)

	reqURL := c.baseURL + "/maps/api/directions/json?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directions service returned status %d", resp.StatusCode)
	}

	var body directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(body.Routes) == 0 {
		return nil, fmt.Errorf("no routes in response (status %q)", body.Status)
	}

	var path []models.Coordinates
	for _, leg := range body.Routes[0].Legs {
		for _, step := range leg.Steps {
			points, err := DecodePolyline(step.Polyline.Points)
			if err != nil {
				return nil, fmt.Errorf("decode step polyline: %w", err)
			}
			// Steps share endpoints; drop the duplicated joint.
			if len(path) > 0 && len(points) > 0 && points[0] == path[len(path)-1] {
				points = points[1:]
			}
			path = append(path, points...)
		}
	}

	return path, nil
}
