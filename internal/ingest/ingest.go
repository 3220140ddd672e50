package ingest

// FileResult is the per-file scan outcome.
type FileResult struct {
	Path        string
	HashHex     string
	Ext         string
	MIME        string
	Size        int64
	DuplicateOf string // first path with the same content, when Deduplicated
	Err         string
}

// Deduplicated reports whether an earlier file had the same content.
func (r FileResult) Deduplicated() bool { return r.DuplicateOf != "" }

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}
