package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const datastoreScope = "https://www.googleapis.com/auth/datastore"

// Firestore stores documents in Cloud Firestore.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore authenticates with a service-account key file. When projectID
// is empty the project named in the key file is used.
func NewFirestore(ctx context.Context, credentialsFile, projectID, database string, opts ...option.ClientOption) (*Firestore, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, datastoreScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	if projectID == "" {
		projectID = creds.ProjectID
	}
	if projectID == "" {
		return nil, errors.New("firestore: no project id in config or credentials file")
	}
	if database == "" {
		database = firestore.DefaultDatabaseID
	}

	opts = append([]option.ClientOption{option.WithCredentials(creds)}, opts...)
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return NewFirestoreClient(client), nil
}

// NewFirestoreClient wraps an already configured client.
func NewFirestoreClient(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

// Create implements Store. The id is generated by the client library.
func (f *Firestore) Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	if err := CheckCollection(collection); err != nil {
		return "", err
	}
	ref, _, err := f.client.Collection(collection).Add(ctx, fields)
	if err != nil {
		return "", wrapError(err)
	}
	return ref.ID, nil
}

// Get implements Store.
func (f *Firestore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := CheckCollection(collection); err != nil {
		return nil, err
	}
	if id == "" || strings.Contains(id, "/") {
		return nil, fmt.Errorf("%w: document id %q", ErrInvalidPath, id)
	}

	snap, err := f.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return nil, wrapError(err)
	}
	d := document(snap)
	return &d, nil
}

// List implements Store. Filters are applied client side after reading the
// whole collection.
func (f *Firestore) List(ctx context.Context, collection string, filters ...Where) ([]Document, error) {
	if err := CheckCollection(collection); err != nil {
		return nil, err
	}

	iter := f.client.Collection(collection).Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return docs, nil
		}
		if err != nil {
			return nil, wrapError(err)
		}
		d := document(snap)
		if Matches(d.Fields, filters) {
			docs = append(docs, d)
		}
	}
}

// Collections implements Store.
func (f *Firestore) Collections(ctx context.Context, parent string) ([]string, error) {
	var iter *firestore.CollectionIterator
	if parent == "" {
		iter = f.client.Collections(ctx)
	} else {
		if err := CheckDocument(parent); err != nil {
			return nil, err
		}
		iter = f.client.Doc(parent).Collections(ctx)
	}

	var ids []string
	for {
		ref, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return ids, nil
		}
		if err != nil {
			return nil, wrapError(err)
		}
		ids = append(ids, ref.ID)
	}
}

// Close implements Store.
func (f *Firestore) Close() error {
	return f.client.Close()
}

func document(snap *firestore.DocumentSnapshot) Document {
	return Document{
		ID:     snap.Ref.ID,
		Path:   relativePath(snap.Ref.Path),
		Fields: snap.Data(),
	}
}

// relativePath drops the "projects/<p>/databases/<d>/documents/" prefix from
// a full resource name.
func relativePath(name string) string {
	i := strings.Index(name, "/databases/")
	if i < 0 {
		return name
	}
	rest := name[i+len("/databases/"):]
	if j := strings.Index(rest, "/documents/"); j >= 0 {
		return rest[j+len("/documents/"):]
	}
	return name
}

// wrapError classifies gRPC failures while keeping the server message.
func wrapError(err error) error {
	switch status.Code(err) {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %v", ErrForbidden, err)
	case codes.NotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return err
	}
}
