package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	matrixEndpoint = "https://maps.googleapis.com/maps/api/distancematrix/json"
	metersPerMile  = 1609.34
)

// Google queries the Distance Matrix API. Three legs are fetched so the
// round trip reflects the office anchor: office->pickup, pickup->dropoff,
// dropoff->office.
type Google struct {
	apiKey        string
	officeAddress string
	httpClient    *http.Client
	log           *slog.Logger
}

func NewGoogle(apiKey, officeAddress string, log *slog.Logger) *Google {
	if log == nil {
		log = slog.Default()
	}
	return &Google{
		apiKey:        apiKey,
		officeAddress: officeAddress,
		httpClient:    &http.Client{Timeout: 5 * time.Second},
		log:           log,
	}
}

type matrixResponse struct {
	Rows []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value float64 `json:"value"` // meters
			} `json:"distance"`
			Duration struct {
				Value float64 `json:"value"` // seconds
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
	Status string `json:"status"`
}

type leg struct {
	miles   float64
	minutes float64
}

func (g *Google) fetchLeg(ctx context.Context, origin, destination string) (leg, error) {
	params := url.Values{}
	params.Set("origins", origin)
	params.Set("destinations", destination)
	params.Set("mode", "driving")
	params.Set("units", "imperial")
	params.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, matrixEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return leg{}, err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return leg{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return leg{}, fmt.Errorf("distance matrix status %d", resp.StatusCode)
	}
	var body matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return leg{}, err
	}
	if len(body.Rows) == 0 || len(body.Rows[0].Elements) == 0 {
		return leg{}, fmt.Errorf("distance matrix: empty response (%s)", body.Status)
	}
	elem := body.Rows[0].Elements[0]
	if elem.Status != "OK" {
		return leg{}, fmt.Errorf("distance matrix: element status %s", elem.Status)
	}
	return leg{
		miles:   elem.Distance.Value / metersPerMile,
		minutes: elem.Duration.Value / 60,
	}, nil
}

// RouteDistance never fails hard: any leg error is logged and the zero
// Route with OK=false comes back.
func (g *Google) RouteDistance(ctx context.Context, pickup, dropoff string) Route {
	leg1, err := g.fetchLeg(ctx, g.officeAddress, pickup)
	if err != nil {
		g.log.Warn("distance lookup failed", "leg", "office->pickup", "error", err)
		return Route{}
	}
	leg2, err := g.fetchLeg(ctx, pickup, dropoff)
	if err != nil {
		g.log.Warn("distance lookup failed", "leg", "pickup->dropoff", "error", err)
		return Route{}
	}
	leg3, err := g.fetchLeg(ctx, dropoff, g.officeAddress)
	if err != nil {
		g.log.Warn("distance lookup failed", "leg", "dropoff->office", "error", err)
		return Route{}
	}

	return Route{
		PointToPointMiles:   round2(leg2.miles),
		RoundTripMiles:      round2(leg1.miles + leg2.miles + leg3.miles),
		PointToPointMinutes: round2(leg2.minutes),
		OK:                  true,
	}
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
