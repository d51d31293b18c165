package assets

import "context"

// Storage folders by asset kind.
const (
	FolderProducts      = "products"
	FolderProductExtras = "products/extra"
	FolderCarousel      = "carousel"
)

// Ref identifies one stored object: its store-relative path and the public
// URL it is served from.
type Ref struct {
	Path string
	URL  string
}

// Store is durable blob storage addressed by path.
type Store interface {
	// Store writes data under a generated unique name inside folder and
	// returns the new object's reference.
	Store(ctx context.Context, data []byte, folder, filename string) (Ref, error)

	// Copy duplicates the object behind ref into a new object with an
	// independent lifetime and returns the copy's reference.
	Copy(ctx context.Context, ref Ref) (Ref, error)

	// Delete removes the object. Deleting an object that is already gone
	// is not an error.
	Delete(ctx context.Context, ref Ref) error

	// RefFromURL maps a public URL back to its storage reference.
	RefFromURL(publicURL string) (Ref, error)
}
