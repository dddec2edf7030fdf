//go:build cgo

package graph

// Backend names the store Open returns in this build.
const Backend = "kuzu"

// Open returns a KuzuDB store at path, or an in-memory KuzuDB when path is
// empty. The schema is not initialized.
func Open(path string) (Store, error) {
	if path == "" {
		return NewKuzuStore()
	}
	return NewKuzuFileStore(path)
}
