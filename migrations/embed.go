// Package migrations embeds the schema migrations for every supported driver.
package migrations

import "embed"

// FS holds one directory per database driver, named after the driver.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
