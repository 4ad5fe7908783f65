package storage

import (
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/metrics"
	"github.com/san-kum/dronesim/internal/vecmath"
)

// Origin anchors the testbed frame on the globe. The testbed's -Z axis
// points north and +X points east.
type Origin struct {
	Longitude float64
	Latitude  float64
	Altitude  float64
}

func (o Origin) validate() error {
	if !vecmath.IsFinite(o.Longitude) || o.Longitude < -180 || o.Longitude > 180 {
		return dynamo.InvalidArgument("longitude %g outside [-180, 180]", o.Longitude)
	}
	// Web Mercator is undefined at the poles.
	if !vecmath.IsFinite(o.Latitude) || math.Abs(o.Latitude) > 85 {
		return dynamo.InvalidArgument("latitude %g outside [-85, 85]", o.Latitude)
	}
	if !vecmath.IsFinite(o.Altitude) {
		return dynamo.InvalidArgument("altitude is not finite")
	}
	return nil
}

// Track converts the sample positions into a WGS84 (EPSG:4326) line string
// with altitude. Local metres are applied in Web Mercator, scaled by the
// origin latitude.
func Track(samples []metrics.Sample, origin Origin) (geom.LineString, error) {
	if err := origin.validate(); err != nil {
		return geom.LineString{}, err
	}
	if len(samples) < 2 {
		return geom.LineString{}, dynamo.InvalidArgument("track needs at least 2 samples, got %d", len(samples))
	}

	epsg := wgs84.EPSG()
	toMercator := epsg.Transform(4326, 3857)
	toLonLat := epsg.Transform(3857, 4326)

	ox, oy, _ := toMercator(origin.Longitude, origin.Latitude, 0)
	scale := 1 / math.Cos(origin.Latitude*math.Pi/180)

	flat := make([]float64, 0, 3*len(samples))
	for _, s := range samples {
		p := s.State.Position
		east, north := p.X, -p.Z
		lon, lat, _ := toLonLat(ox+east*scale, oy+north*scale, 0)
		flat = append(flat, lon, lat, origin.Altitude+p.Y)
	}

	return geom.NewLineString(geom.NewSequence(flat, geom.DimXYZ)), nil
}
