// Package pathways embeds the default pathway catalog.
package pathways

import (
	"embed"

	"github.com/aretw0/carepath/pkg/adapters/file"
)

//go:embed *.json *.yaml
var FS embed.FS

// Source returns a file source over the embedded catalog.
func Source() *file.Source {
	return file.New(FS)
}
