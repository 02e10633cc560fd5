// Package scholar fetches approximate per-year publication counts from the
// Google Scholar search index.
package scholar
