// Package export serializes laid-out frames.
//
// Exporters register themselves by name from init, following the
// database/sql driver pattern:
//
//	import _ "github.com/gogpu/mathspan/export/svg"
//
//	e, err := export.New("svg")
package export

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/mathspan/layout"
)

// Exporter turns a frame into a document.
type Exporter interface {
	// Export returns the serialized frame. It does not fail.
	Export(frame *layout.Frame) string
	// MediaType is the MIME type of the output.
	MediaType() string
}

// Factory creates an exporter.
type Factory func() Exporter

var (
	registryMu sync.RWMutex
	exporters  = make(map[string]Factory)
)

// Register makes an exporter available under name. It panics when factory
// is nil or name is already taken.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("export: Register factory is nil")
	}
	if _, dup := exporters[name]; dup {
		panic("export: Register called twice for " + name)
	}
	exporters[name] = factory
}

// Unregister removes name from the registry. Unknown names are ignored.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(exporters, name)
}

// New creates the exporter registered under name.
func New(name string) (Exporter, error) {
	registryMu.RLock()
	factory, ok := exporters[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("export: unknown format %q (forgotten import?)", name)
	}
	return factory(), nil
}


// Names returns the registered names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(exporters))
	for name := range exporters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := exporters[name]
	return ok
}
