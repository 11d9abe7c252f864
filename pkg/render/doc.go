// Package render draws a [Map] onto a [sink.Surface].
//
// # Overview
//
// A map is a plate carrée frame: longitude maps linearly to x and latitude
// to y, with equal scale on both axes, fitted into the figure's subplot
// area. Drawing happens in four stages that the pipeline times separately:
//
//   - [Renderer.DrawContext]: background, basemap raster, context layers,
//     coordinate grid and plot frame
//   - [Renderer.DrawFeatures]: the overlay layers
//   - [Renderer.DrawAnnotations]: labelled points, rectangles, legend and
//     title
//   - [Renderer.Flush]: executes everything in z order
//
// Stages only queue drawing operations. Flush sorts the queue by z with a
// stable sort, so equal z keeps insertion order, and then replays it onto
// the surface. Data-space operations are clipped to the plot rectangle;
// labels, title and legend are not.
//
// # Geometry dispatch
//
// Each feature is drawn according to its [geo.Kind]:
//
//   - Polygon: a fill pass at the layer's FillZ and an outline pass of the
//     exterior ring at Z
//   - LineString: one stroked path
//   - Point: one marker
//
// Multi-part geometries are skipped and counted in [LayerStats.Skipped]
// unless the layer sets Explode, which context layers do so that Natural
// Earth coastlines (mostly MultiLineStrings) are drawn.
//
// # Units
//
// Line widths, dash lengths, marker sizes and font sizes are given in
// points and converted with the figure DPI, so a figure renders the same at
// any resolution.
//
// [sink.Surface]: github.com/txwater/studymap/pkg/render/sink.Surface
package render
