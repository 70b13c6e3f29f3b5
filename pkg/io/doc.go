// Package io reads polygonal features from GeoJSON and writes label results
// back out as GeoJSON or plain JSON reports.
//
// Input may be a FeatureCollection, a single Feature, or a bare Geometry.
// Only areal geometries carry labels: Polygon features map to one entry,
// MultiPolygon features to one entry per polygon. Anything else is rejected.
package io
