// Package distance answers route-distance questions for pricing and
// long-distance detection.
package distance

import "context"

// Route is the distance collaborator output. OK=false is the degraded
// sentinel: the estimate proceeds on zero distance rather than blocking the
// call.
type Route struct {
	// PointToPointMiles is pickup to dropoff, the basis for mileage cost.
	PointToPointMiles float64
	// RoundTripMiles covers office -> pickup -> dropoff -> office.
	RoundTripMiles float64
	// PointToPointMinutes is the pickup-to-dropoff drive time, used for
	// the long-distance travel check.
	PointToPointMinutes float64
	OK                  bool
}

// Service is the distance collaborator contract.
type Service interface {
	RouteDistance(ctx context.Context, pickup, dropoff string) Route
}

// Static returns fixed routes, keyed by "pickup|dropoff", for tests. The
// zero value degrades everything.
type Static struct {
	Routes  map[string]Route
	Default Route
}

func (s Static) RouteDistance(ctx context.Context, pickup, dropoff string) Route {
	_ = ctx
	if r, ok := s.Routes[pickup+"|"+dropoff]; ok {
		return r
	}
	return s.Default
}
