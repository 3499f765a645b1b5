// Package store is the document database the class collection lives in.
//
// Collections are addressed by slash separated paths: "Class" for a top level
// collection, "Class/<id>/reviews" for a subcollection of one document.
// Every Create stores a new document under a generated id; nothing is ever
// looked up or merged, so writing the same fields twice yields two documents.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("store: document not found")

	// ErrUnauthorized indicates invalid or expired credentials.
	ErrUnauthorized = errors.New("store: unauthorised (invalid credentials)")

	// ErrForbidden indicates the credentials lack access to the database.
	ErrForbidden = errors.New("store: forbidden (insufficient permissions)")

	// ErrInvalidPath indicates a malformed collection path.
	ErrInvalidPath = errors.New("store: invalid collection path")
)

// Document is a stored record.
type Document struct {
	ID string
	// Path is the collection path followed by the id, e.g. "Class/abc".
	Path   string
	Fields map[string]interface{}
}

// Where restricts List to documents whose top level field equals Value.
type Where struct {
	Field string
	Value interface{}
}

// Store is a schemaless document database.
type Store interface {
	// Create stores fields as a new document and returns its generated id.
	Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error)
	// Get returns one document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (*Document, error)
	// List returns every document of a collection matching all filters.
	List(ctx context.Context, collection string, filters ...Where) ([]Document, error)
	// Collections returns the ids of the collections directly under parent,
	// which is "" for the database root or a document path.
	Collections(ctx context.Context, parent string) ([]string, error)
	Close() error
}

// CheckCollection validates a collection path: an odd number of non-empty
// segments, alternating collection and document ids.
func CheckCollection(collection string) error {
	parts := strings.Split(collection, "/")
	if collection == "" || len(parts)%2 == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidPath, collection)
	}
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("%w: %q", ErrInvalidPath, collection)
		}
	}
	return nil
}

// CheckDocument validates a document path such as "Class/abc".
func CheckDocument(path string) error {
	parts := strings.Split(path, "/")
	if path == "" || len(parts)%2 != 0 {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return nil
}

// Matches reports whether fields satisfy every filter. Numbers compare by
// value so an int filter matches a float64 read back from JSON.
func Matches(fields map[string]interface{}, filters []Where) bool {
	for _, w := range filters {
		v, ok := fields[w.Field]
		if !ok || !equalValues(v, w.Value) {
			return false
		}
	}
	return true
}

func equalValues(a, b interface{}) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
