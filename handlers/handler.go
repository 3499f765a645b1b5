package handlers

import (
	"github.com/uptrace/bun"

	"github.com/coursehub/classloader/store"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	store      store.Store
	collection string
	db         *bun.DB
	JWTKey     []byte
}

// New creates a Handler reading classes from collection of s. Users are
// looked up in db and tokens are signed with jwtKey.
func New(s store.Store, collection string, db *bun.DB, jwtKey []byte) *Handler {
	return &Handler{store: s, collection: collection, db: db, JWTKey: jwtKey}
}
