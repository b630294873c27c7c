package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"places-go/internal/config"
)

var ErrRouteUnavailable = errors.New("routing service unavailable")

// RouteInstruction 是一条逐向导航指令。
type RouteInstruction struct {
	Type     string  `json:"type"`
	Modifier string  `json:"modifier"`
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

// Route 是一条路线：坐标串、里程与时长。
type Route struct {
	Coordinates  [][]float64        `json:"coordinates"`
	DistanceKm   float64            `json:"distanceKm"`
	DurationMin  float64            `json:"durationMin"`
	Instructions []RouteInstruction `json:"instructions,omitempty"`
}

// RoutePlan 包含主路线与经由偏移中点的备选路线。
type RoutePlan struct {
	PrimaryRoute     Route `json:"primaryRoute"`
	AlternativeRoute Route `json:"alternativeRoute"`
}

// RouteService 代理外部路由引擎，计算从固定出发点到目的地的驾车路线。
type RouteService interface {
	GetRoute(ctx context.Context, endLat, endLng float64) (*RoutePlan, error)
}

// routeService 是 RouteService 的实现，后端为 OSRM。
type routeService struct {
	cfg    config.RoutingConfig
	client *http.Client
}

// NewRouteService 创建一个新的 RouteService 实例。
func NewRouteService(cfg config.RoutingConfig) RouteService {
	return &routeService{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// osrmResponse 只解码我们用得到的字段。
type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Legs []struct {
			Steps []struct {
				Name     string  `json:"name"`
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
				Maneuver struct {
					Type     string `json:"type"`
					Modifier string `json:"modifier"`
				} `json:"maneuver"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// GetRoute fetches the direct route and an alternative through a
// slightly offset midpoint, both concurrently.
func (s *routeService) GetRoute(ctx context.Context, endLat, endLng float64) (*RoutePlan, error) {
	start := fmt.Sprintf("%f,%f", s.cfg.StartLng, s.cfg.StartLat)
	end := fmt.Sprintf("%f,%f", endLng, endLat)

	// 中点略向东北偏移，逼出一条不同的路线
	midLat := (s.cfg.StartLat+endLat)/2 + 0.01
	midLng := (s.cfg.StartLng+endLng)/2 + 0.01
	via := fmt.Sprintf("%f,%f", midLng, midLat)

	primaryURL := fmt.Sprintf("%s/route/v1/driving/%s;%s?overview=full&geometries=geojson&steps=true", s.cfg.BaseURL, start, end)
	alternativeURL := fmt.Sprintf("%s/route/v1/driving/%s;%s;%s?overview=full&geometries=geojson&steps=true", s.cfg.BaseURL, start, via, end)

	var (
		wg                   sync.WaitGroup
		primary, alternative *osrmResponse
		primaryErr, altErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		primary, primaryErr = s.fetch(ctx, primaryURL)
	}()
	go func() {
		defer wg.Done()
		alternative, altErr = s.fetch(ctx, alternativeURL)
	}()
	wg.Wait()

	if primaryErr != nil {
		return nil, primaryErr
	}
	if altErr != nil {
		return nil, altErr
	}

	plan := &RoutePlan{
		PrimaryRoute:     buildRoute(primary, true),
		AlternativeRoute: buildRoute(alternative, false),
	}
	return plan, nil
}

// fetch 请求 OSRM 并解码响应。
func (s *routeService) fetch(ctx context.Context, url string) (*osrmResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build routing request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRouteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrRouteUnavailable, resp.StatusCode)
	}

	var decoded osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode routing response: %w", err)
	}
	if len(decoded.Routes) == 0 {
		return nil, fmt.Errorf("%w: no route returned", ErrRouteUnavailable)
	}
	return &decoded, nil
}

// buildRoute 把 OSRM 路线换算成公里/分钟表示。
func buildRoute(resp *osrmResponse, withInstructions bool) Route {
	r := resp.Routes[0]
	route := Route{
		Coordinates: r.Geometry.Coordinates,
		DistanceKm:  round(r.Distance/1000, 3),
		DurationMin: round(r.Duration/60, 2),
	}
	if withInstructions && len(r.Legs) > 0 {
		for _, step := range r.Legs[0].Steps {
			route.Instructions = append(route.Instructions, RouteInstruction{
				Type:     step.Maneuver.Type,
				Modifier: step.Maneuver.Modifier,
				Name:     step.Name,
				Distance: round(step.Distance/1000, 4),
				Duration: round(step.Duration/60, 4),
			})
		}
	}
	return route
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
