// Package store persists engine artifacts (analysis results, plans,
// generation reports) keyed by kind and id.
package store

// Store saves a JSON-serializable artifact and returns its location
// (a file path or database URI, depending on the backend). Load reads
// a previously saved artifact back into out.
type Store interface {
	Save(kind, id string, payload interface{}) (string, error)
	Load(kind, id string, out interface{}) error
	Close() error
}
