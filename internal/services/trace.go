package services

import (
	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Trace point kinds.
const (
	TraceDepot = "depot"
	TraceStop  = "stop"
)

// TracePoint is one vertex of a route drawn on a map.
type TracePoint struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Kind     string  `json:"type"`
	Sequence int     `json:"sequence"`
	StopID   *int    `json:"stop_id,omitempty"`
}

// BuildTrace lists the depot, every stop in visiting order, and the depot
// again. An empty route has an empty trace.
func BuildTrace(depot domain.Coordinates, ordered []domain.Stop) []TracePoint {
	if len(ordered) == 0 {
		return []TracePoint{}
	}

	trace := make([]TracePoint, 0, len(ordered)+2)
	trace = append(trace, TracePoint{Lat: depot.Lat, Lon: depot.Lon, Kind: TraceDepot, Sequence: 0})
	for i, s := range ordered {
		id := s.ID
		trace = append(trace, TracePoint{
			Lat:      s.Location.Lat,
			Lon:      s.Location.Lon,
			Kind:     TraceStop,
			Sequence: i + 1,
			StopID:   &id,
		})
	}
	trace = append(trace, TracePoint{Lat: depot.Lat, Lon: depot.Lon, Kind: TraceDepot, Sequence: len(ordered) + 1})

	return trace
}

// RouteGeoJSON renders a trace as a FeatureCollection: one LineString for the
// whole route followed by one Point per trace vertex.
func RouteGeoJSON(trace []TracePoint, distanceKm float64) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if len(trace) == 0 {
		return fc
	}

	line := make(orb.LineString, 0, len(trace))
	for _, p := range trace {
		line = append(line, geo.Point(domain.Coordinates{Lat: p.Lat, Lon: p.Lon}))
	}
	route := geojson.NewFeature(line)
	route.Properties["kind"] = "route"
	route.Properties["distance_km"] = distanceKm
	fc.Append(route)

	for _, p := range trace {
		f := geojson.NewFeature(geo.Point(domain.Coordinates{Lat: p.Lat, Lon: p.Lon}))
		f.Properties["kind"] = p.Kind
		f.Properties["sequence"] = p.Sequence
		if p.StopID != nil {
			f.Properties["stop_id"] = *p.StopID
		}
		fc.Append(f)
	}

	return fc
}
