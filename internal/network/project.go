package network

import "github.com/rath-twin/rath/internal/geometry"

// Project places a train at progress along trackID by linear interpolation
// between the track's stations. ok is false when the track is unknown, in
// which case the returned point is the origin.
func (n *Network) Project(trackID string, progress float64) (geometry.Point, bool) {
	from, to, ok := n.TrackEnds(trackID)
	if !ok {
		return geometry.Point{}, false
	}
	return geometry.Interpolate(from, to, progress), true
}
