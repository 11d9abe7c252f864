// Package io reads vector datasets and writes finished map images.
//
// # Import
//
// [Load] reads an ESRI shapefile (the .shp with its sibling .dbf and .prj)
// or a GeoJSON file into a [geo.Collection] in the dataset's native CRS:
//
//	c, err := io.Load("shapefile/MajorRivers_dd83.shp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c, err = geo.ToWGS84(c)
//
// The CRS of a shapefile comes from the WKT in its .prj sidecar. A missing
// .prj is taken to mean WGS84 longitude/latitude, as is every GeoJSON file.
//
// Shapefile polygon records are split into rings by orientation: each
// clockwise ring starts a polygon and each counter-clockwise ring is a hole
// in the polygon that contains it. Records with one outer ring become
// orb.Polygon, records with several become orb.MultiPolygon. Polyline
// records with more than one part become orb.MultiLineString.
//
// A missing file is reported as errors.ErrCodeInputNotFound; unreadable
// contents as errors.ErrCodeInvalidInput.
//
// # Export
//
// [WritePNG] encodes an image as PNG, optionally trimmed to its drawn
// content plus a margin, with the DPI recorded in the pHYs chunk. The file
// is written to a temporary name and renamed into place, so a failed write
// never leaves a partial image behind.
package io
