// Package catalog loads the flat, language-keyed message table used to
// localize log lines and notification emails.
package catalog

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/tbielander/xtract/internal/rewrite"
)

// Load reads a message catalog TOML file shaped as [key] -> {lang: text}.
func Load(path string) (rewrite.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading message catalog %q: %w", path, err)
	}
	var cat rewrite.Catalog
	if err := toml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parsing message catalog %q: %w", path, err)
	}
	return cat, nil
}
