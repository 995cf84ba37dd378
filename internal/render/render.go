// Package render defines the card renderer seam. Renderers turn an update
// payload into raster images for delivery; when a platform has no renderer
// registered, the notifier falls back to a plain text card.
package render

import (
	"context"

	"modwatch_bot/internal/model"
)

// Renderer draws one or more notification card images for an update.
type Renderer interface {
	Render(ctx context.Context, update *model.Update) ([][]byte, error)
}

// Registry maps a platform code to its card renderer.
type Registry map[model.Platform]Renderer
