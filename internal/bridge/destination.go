package bridge

import "github.com/setevik/logbridge/internal/source"

// DestinationLookup resolves the output destination of a live process.
// *source.Bus implements it; tests supply fakes.
type DestinationLookup interface {
	DestinationFor(pid source.ProcID) (source.Destination, bool)
}

// ResolveDestination finds the destination handle responsible for an
// event. When the metadata names a live process, that process's registered
// destination wins; otherwise the handler's own destination is used.
// Liveness and ownership are time-varying, so resolution happens per event
// and is never cached.
func ResolveDestination(lookup DestinationLookup, meta source.Metadata, own source.Destination) source.Destination {
	if v, ok := meta.Get(source.MetaKeyProc); ok {
		if pid, ok := v.(source.ProcID); ok {
			if dest, ok := lookup.DestinationFor(pid); ok {
				return dest
			}
		}
	}
	return own
}
