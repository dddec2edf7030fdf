//go:build !cgo

package graph

// Backend names the store Open returns in this build.
const Backend = "memory"

// Open returns a MemStore. KuzuDB needs cgo, so path is ignored.
func Open(string) (Store, error) {
	return NewMemStore(), nil
}
