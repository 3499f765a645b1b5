package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/coursehub/classloader/store"
	"github.com/coursehub/classloader/store/storetest"
)

// treeStore serves a fixed set of documents keyed by collection path.
type treeStore struct {
	store.Store
	docs map[string][]store.Document
	err  error
}

func (s *treeStore) List(_ context.Context, collection string, _ ...store.Where) ([]store.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.docs[collection], nil
}

func (s *treeStore) Collections(_ context.Context, parent string) ([]string, error) {
	var ids []string
	seen := map[string]bool{}
	for path := range s.docs {
		rest := path
		if parent != "" {
			if !strings.HasPrefix(path, parent+"/") {
				continue
			}
			rest = strings.TrimPrefix(path, parent+"/")
		}
		id := strings.SplitN(rest, "/", 2)[0]
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func newTreeStore() *treeStore {
	return &treeStore{docs: map[string][]store.Document{
		"Class": {
			{ID: "c1", Fields: map[string]interface{}{"ClassName": "Intro"}},
			{ID: "c2"},
		},
		"Class/c1/reviews": {
			{ID: "r1", Fields: map[string]interface{}{"rating": 5.0}},
		},
	}}
}

func TestTake(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	tree, err := Take(context.Background(), newTreeStore(), zap.New(core))
	require.NoError(t, err)

	require.Contains(t, tree, "Class")
	c1 := tree["Class"]["c1"]
	assert.Equal(t, "Intro", c1.Data["ClassName"])
	require.Contains(t, c1.Subcollections, "reviews")
	assert.Equal(t, 5.0, c1.Subcollections["reviews"]["r1"].Data["rating"])
	assert.Empty(t, c1.Subcollections["reviews"]["r1"].Subcollections)

	c2 := tree["Class"]["c2"]
	assert.NotNil(t, c2.Data)
	assert.Empty(t, c2.Subcollections)

	assert.Equal(t, 1, logs.FilterMessage("found collection").Len())
	assert.Equal(t, 3, logs.FilterMessage("found document").Len())
	assert.Equal(t, 1, logs.FilterMessage("found subcollection").Len())
}

func TestTakeError(t *testing.T) {
	s := newTreeStore()
	s.err = errors.New("permission denied")

	_, err := Take(context.Background(), s, zap.NewNop())
	assert.ErrorContains(t, err, "list Class")
}

func TestWriteFile(t *testing.T) {
	tree, err := Take(context.Background(), newTreeStore(), zap.NewNop())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "firestore_collections.json")
	require.NoError(t, WriteFile(path, tree))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "{\n  \"Class\": {"))

	var back map[string]map[string]struct {
		Data           map[string]interface{}            `json:"data"`
		Subcollections map[string]map[string]interface{} `json:"subcollections"`
	}
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, "Intro", back["Class"]["c1"].Data["ClassName"])
	assert.Contains(t, back["Class"]["c1"].Subcollections, "reviews")
}

func TestWriteFileKeepsZeroValues(t *testing.T) {
	fs, fake := storetest.NewFirestore(t)
	fake.Put("Class/intro", map[string]*firestorepb.Value{
		"season":      storetest.Map(map[string]*firestorepb.Value{"summer": storetest.Bool(false)}),
		"RatingCount": storetest.Int(0),
		"courseId":    storetest.String(""),
		"RatingAvg":   storetest.Double(0),
	})

	tree, err := Take(context.Background(), fs, zap.NewNop())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "firestore_collections.json")
	require.NoError(t, WriteFile(path, tree))
	b, err := os.ReadFile(path)
	require.NoError(t, err)

	out := string(b)
	assert.Contains(t, out, `"summer": false`)
	assert.Contains(t, out, `"RatingCount": 0`)
	assert.Contains(t, out, `"courseId": ""`)
	assert.Contains(t, out, `"RatingAvg": 0`)
	assert.NotContains(t, out, "null")
}
