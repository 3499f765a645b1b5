package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Document is a schemaless record kept in PostgreSQL. Collection holds the
// slash separated collection path, e.g. "Class" or "Class/<id>/reviews".
// Ids are only unique within their collection.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	Collection string                 `bun:"collection,pk" json:"collection"`
	ID         string                 `bun:"id,pk" json:"id"`
	Data       map[string]interface{} `bun:"data,type:jsonb,notnull" json:"data"`
	CreatedAt  time.Time              `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}
