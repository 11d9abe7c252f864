// Package pkg provides the libraries behind studymap, a renderer for
// hydrology study-area maps.
//
// # Overview
//
// A map is described by a [scene] (a TOML file or a built-in preset) and
// produced by the [pipeline]:
//
//	scene (TOML)
//	     ↓
//	[io] load shapefiles / GeoJSON
//	     ↓
//	[geo] reproject to lon/lat, filter to the bounding box
//	     ↓
//	[basemap] fetch ArcGIS, XYZ or MBTiles imagery (cached by [cache])
//	     ↓
//	[render] draw context, features and annotations onto a [render/sink]
//	     ↓
//	[io] write PNG with DPI metadata
//
// Supporting packages: [errors] defines the closed error-code set,
// [httputil] the cached, rate-limited HTTP client, [fonts] the embedded Go
// fonts, [observability] optional stage and cache hooks, and [buildinfo]
// the version stamped at link time.
//
// # Quick Start
//
//	s, _ := scene.Preset("belton")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(ctx, pipeline.Options{Scene: s})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Message)
package pkg
