// Package file implements a filesystem-backed delivery store: one directory
// per resource type, one JSON record per payload, written atomically via a
// temp file and rename. The directory listing, sorted by file name, is the
// queue; no in-memory index is kept, so pending payloads survive process
// termination at any point.
package file
