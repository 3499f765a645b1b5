// Package storetest runs an in-memory Firestore gRPC server for tests.
package storetest

import (
	"context"
	"net"
	"path"
	"sort"
	"strings"
	"sync"
	"testing"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/coursehub/classloader/store"
)

// Root is the resource name every test document lives under.
const Root = "projects/demo/databases/(default)/documents"

// Server implements the Firestore RPCs the client library uses for Add, Get,
// Documents and Collections.
type Server struct {
	firestorepb.UnimplementedFirestoreServer

	mu    sync.Mutex
	names []string
	docs  map[string]*firestorepb.Document
	fail  codes.Code
}

// NewFirestore starts a Server on an in-memory listener and returns a store
// backed by a real Firestore client connected to it.
func NewFirestore(t testing.TB) (*store.Firestore, *Server) {
	t.Helper()

	srv := &Server{docs: make(map[string]*firestorepb.Document)}
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	firestorepb.RegisterFirestoreServer(gs, srv)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial fake firestore: %v", err)
	}

	client, err := firestore.NewClientWithDatabase(context.Background(), "demo", firestore.DefaultDatabaseID,
		option.WithGRPCConn(conn))
	if err != nil {
		t.Fatalf("firestore client: %v", err)
	}
	fs := store.NewFirestoreClient(client)
	t.Cleanup(func() { _ = fs.Close() })
	return fs, srv
}

// Fail makes every following RPC return code.
func (s *Server) Fail(code codes.Code) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = code
}

// Put seeds a document at a path relative to Root, e.g. "Class/abc".
func (s *Server) Put(rel string, fields map[string]*firestorepb.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := timestamppb.Now()
	s.put(&firestorepb.Document{Name: Root + "/" + rel, Fields: fields, CreateTime: now, UpdateTime: now})
}

// Fields returns the stored fields of the document at rel, or nil.
func (s *Server) Fields(rel string) map[string]*firestorepb.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.docs[Root+"/"+rel]; ok {
		return d.Fields
	}
	return nil
}

// Len reports how many documents are stored.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.names)
}

func (s *Server) put(doc *firestorepb.Document) {
	if _, ok := s.docs[doc.Name]; !ok {
		s.names = append(s.names, doc.Name)
	}
	s.docs[doc.Name] = doc
}

func (s *Server) err() error {
	if s.fail != codes.OK {
		return status.Error(s.fail, "denied")
	}
	return nil
}

// Commit stores every update write.
func (s *Server) Commit(_ context.Context, req *firestorepb.CommitRequest) (*firestorepb.CommitResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err(); err != nil {
		return nil, err
	}

	now := timestamppb.Now()
	resp := &firestorepb.CommitResponse{CommitTime: now}
	for _, w := range req.Writes {
		doc := w.GetUpdate()
		if doc == nil {
			return nil, status.Error(codes.Unimplemented, "only update writes are supported")
		}
		if pc, ok := w.GetCurrentDocument().GetConditionType().(*firestorepb.Precondition_Exists); ok && !pc.Exists {
			if _, found := s.docs[doc.Name]; found {
				return nil, status.Errorf(codes.AlreadyExists, "%s already exists", doc.Name)
			}
		}
		doc = proto.Clone(doc).(*firestorepb.Document)
		doc.CreateTime, doc.UpdateTime = now, now
		s.put(doc)
		resp.WriteResults = append(resp.WriteResults, &firestorepb.WriteResult{UpdateTime: now})
	}
	return resp, nil
}

// BatchGetDocuments answers each requested name as found or missing.
func (s *Server) BatchGetDocuments(req *firestorepb.BatchGetDocumentsRequest, stream firestorepb.Firestore_BatchGetDocumentsServer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err(); err != nil {
		return err
	}

	for _, name := range req.Documents {
		resp := &firestorepb.BatchGetDocumentsResponse{ReadTime: timestamppb.Now()}
		if doc, ok := s.docs[name]; ok {
			resp.Result = &firestorepb.BatchGetDocumentsResponse_Found{Found: doc}
		} else {
			resp.Result = &firestorepb.BatchGetDocumentsResponse_Missing{Missing: name}
		}
		if err := stream.Send(resp); err != nil {
			return err
		}
	}
	return nil
}

// RunQuery returns every document directly in the queried collection, in
// insertion order. Filters and ordering are ignored.
func (s *Server) RunQuery(req *firestorepb.RunQueryRequest, stream firestorepb.Firestore_RunQueryServer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err(); err != nil {
		return err
	}

	from := req.GetStructuredQuery().GetFrom()
	if len(from) != 1 {
		return status.Error(codes.InvalidArgument, "exactly one collection expected")
	}
	collection := req.Parent + "/" + from[0].GetCollectionId()
	for _, name := range s.names {
		if path.Dir(name) != collection {
			continue
		}
		if err := stream.Send(&firestorepb.RunQueryResponse{Document: s.docs[name], ReadTime: timestamppb.Now()}); err != nil {
			return err
		}
	}
	return nil
}

// ListCollectionIds returns the sorted ids of collections holding at least
// one document directly under the parent.
func (s *Server) ListCollectionIds(_ context.Context, req *firestorepb.ListCollectionIdsRequest) (*firestorepb.ListCollectionIdsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.err(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var ids []string
	for _, name := range s.names {
		rest, ok := strings.CutPrefix(name, req.Parent+"/")
		if !ok {
			continue
		}
		parts := strings.Split(rest, "/")
		if len(parts) < 2 || seen[parts[0]] {
			continue
		}
		seen[parts[0]] = true
		ids = append(ids, parts[0])
	}
	sort.Strings(ids)
	return &firestorepb.ListCollectionIdsResponse{CollectionIds: ids}, nil
}

// Value helpers for seeding documents.

func String(v string) *firestorepb.Value {
	return &firestorepb.Value{ValueType: &firestorepb.Value_StringValue{StringValue: v}}
}

func Bool(v bool) *firestorepb.Value {
	return &firestorepb.Value{ValueType: &firestorepb.Value_BooleanValue{BooleanValue: v}}
}

func Int(v int64) *firestorepb.Value {
	return &firestorepb.Value{ValueType: &firestorepb.Value_IntegerValue{IntegerValue: v}}
}

func Double(v float64) *firestorepb.Value {
	return &firestorepb.Value{ValueType: &firestorepb.Value_DoubleValue{DoubleValue: v}}
}

func Map(fields map[string]*firestorepb.Value) *firestorepb.Value {
	return &firestorepb.Value{ValueType: &firestorepb.Value_MapValue{MapValue: &firestorepb.MapValue{Fields: fields}}}
}
