package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"places-go/internal/config"
)

const osrmFixture = `{
	"code": "Ok",
	"routes": [{
		"distance": 12345.6,
		"duration": 1234.5,
		"geometry": {"coordinates": [[1.32, 35.35], [1.40, 35.40]]},
		"legs": [{"steps": [{
			"name": "N1",
			"distance": 500.0,
			"duration": 60.0,
			"maneuver": {"type": "depart", "modifier": "right"}
		}]}]
	}]
}`

func TestGetRoute(t *testing.T) {
	var (
		mu        sync.Mutex
		requested []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = append(requested, r.URL.Path)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(osrmFixture))
	}))
	defer server.Close()

	svc := NewRouteService(config.RoutingConfig{
		BaseURL:  server.URL,
		StartLat: 35.349961,
		StartLng: 1.3205712,
	})

	plan, err := svc.GetRoute(context.Background(), 35.40, 1.40)
	require.NoError(t, err)

	// 主路线直达，备选路线带一个经由点
	require.Len(t, requested, 2)
	var viaSeen bool
	for _, path := range requested {
		coords := strings.TrimPrefix(path, "/route/v1/driving/")
		if strings.Count(coords, ";") == 2 {
			viaSeen = true
		} else {
			assert.Equal(t, 1, strings.Count(coords, ";"))
		}
	}
	assert.True(t, viaSeen, "alternative request must include a via point")

	assert.InDelta(t, 12.346, plan.PrimaryRoute.DistanceKm, 0.001)
	assert.InDelta(t, 20.58, plan.PrimaryRoute.DurationMin, 0.01)
	require.Len(t, plan.PrimaryRoute.Instructions, 1)
	assert.Equal(t, "depart", plan.PrimaryRoute.Instructions[0].Type)
	assert.Empty(t, plan.AlternativeRoute.Instructions, "alternative carries no turn-by-turn steps")
	assert.Len(t, plan.PrimaryRoute.Coordinates, 2)
}

func TestGetRouteUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewRouteService(config.RoutingConfig{BaseURL: server.URL})
	_, err := svc.GetRoute(context.Background(), 35.40, 1.40)
	assert.ErrorIs(t, err, ErrRouteUnavailable)
}
