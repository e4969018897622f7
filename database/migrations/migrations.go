// Package migrations contains the schema revisions of the inventory store.
// Each file uses init() to call migration.Register(); importing the package
// is enough to make the revisions known to the runner.
package migrations
