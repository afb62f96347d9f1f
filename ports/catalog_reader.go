package ports

import (
	"lightlab/domain/catalog"
)

// CatalogReaderPort loads the reference table from a tabular resource.
type CatalogReaderPort interface {
	Load(path string) (catalog.Catalog, error)
}
