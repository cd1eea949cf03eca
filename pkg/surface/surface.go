// Package surface abstracts the rendered feed page behind a small
// capability interface so the scroll driver and link harvester never
// touch a browser directly. Two implementations exist: Browser drives
// a headless Chrome tab over the DevTools protocol, Snapshot serves a
// saved HTML document for offline runs and tests.
package surface

import "context"

// Surface is the rendering surface the pipeline reads and commands.
// The host mutates the content (by lazy-loading more items); callers
// only read the extent and link list and move the viewport.
type Surface interface {
	// Extent returns the current content extent, a scalar that grows
	// as more feed items load
	Extent(ctx context.Context) (int64, error)

	// ScrollTo moves the viewport to the given extent
	ScrollTo(ctx context.Context, extent int64) error

	// Links returns the target URLs of all currently rendered
	// navigable link elements
	Links(ctx context.Context) ([]string, error)
}
