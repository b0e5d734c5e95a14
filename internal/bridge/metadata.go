package bridge

import "github.com/setevik/logbridge/internal/source"

// FixIdentifier repairs the process-identifier entry in event metadata.
// Source-side instrumentation sometimes stringifies identifiers; a textual
// or byte-sequence encoding is decoded back to its native form. Entries
// that cannot be decoded, and entries of any other shape, are dropped so a
// malformed identifier never travels downstream. Metadata without the
// entry passes through untouched.
func FixIdentifier(meta source.Metadata) source.Metadata {
	v, ok := meta.Get(source.MetaKeyProc)
	if !ok {
		return meta
	}

	switch id := v.(type) {
	case source.ProcID:
		return meta
	case string:
		if pid, err := source.ParseProcID(id); err == nil {
			return meta.Clone().Set(source.MetaKeyProc, pid)
		}
	case []byte:
		if pid, err := source.ParseProcID(string(id)); err == nil {
			return meta.Clone().Set(source.MetaKeyProc, pid)
		}
	}
	return meta.Clone().Delete(source.MetaKeyProc)
}
