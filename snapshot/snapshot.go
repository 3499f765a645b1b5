// Package snapshot walks a document store and captures every collection,
// document and subcollection as a nested tree.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/coursehub/classloader/store"
)

// Tree maps top level collection ids to their documents.
type Tree map[string]Collection

// Collection maps document ids to their contents.
type Collection map[string]Entry

// Entry is one document with its subcollections.
type Entry struct {
	Data           map[string]interface{} `json:"data"`
	Subcollections map[string]Collection  `json:"subcollections"`
}

// Take reads the whole database recursively.
func Take(ctx context.Context, s store.Store, log *zap.Logger) (Tree, error) {
	ids, err := s.Collections(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	tree := Tree{}
	for _, id := range ids {
		log.Info("found collection", zap.String("collection", id))
		docs, err := collection(ctx, s, log, id)
		if err != nil {
			return nil, err
		}
		tree[id] = docs
	}
	return tree, nil
}

func collection(ctx context.Context, s store.Store, log *zap.Logger, path string) (Collection, error) {
	docs, err := s.List(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}

	out := Collection{}
	for _, doc := range docs {
		log.Info("found document", zap.String("collection", path), zap.String("id", doc.ID))

		docPath := path + "/" + doc.ID
		subIDs, err := s.Collections(ctx, docPath)
		if err != nil {
			return nil, fmt.Errorf("list subcollections of %s: %w", docPath, err)
		}

		subs := map[string]Collection{}
		for _, sub := range subIDs {
			log.Info("found subcollection", zap.String("collection", sub), zap.String("document", docPath))
			c, err := collection(ctx, s, log, docPath+"/"+sub)
			if err != nil {
				return nil, err
			}
			subs[sub] = c
		}

		data := doc.Fields
		if data == nil {
			data = map[string]interface{}{}
		}
		out[doc.ID] = Entry{Data: data, Subcollections: subs}
	}
	return out, nil
}

// WriteFile writes the tree as indented JSON.
func WriteFile(path string, tree Tree) error {
	b, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
