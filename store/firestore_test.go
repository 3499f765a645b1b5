package store_test

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"github.com/coursehub/classloader/store"
	"github.com/coursehub/classloader/store/storetest"
)

func TestFirestoreCreate(t *testing.T) {
	fs, fake := storetest.NewFirestore(t)
	ctx := context.Background()
	when := time.Date(2024, 8, 26, 9, 0, 0, 0, time.UTC)

	id, err := fs.Create(ctx, "Class", map[string]interface{}{
		"ClassName":      "Electronics & Circuits",
		"Description":    "",
		"CourseNumValue": 220,
		"lastUpdated":    when,
		"season":         map[string]interface{}{"spring": true, "summer": false, "fall": true},
		"season_str":     []string{},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	fields := fake.Fields("Class/" + id)
	require.NotNil(t, fields)
	assert.Equal(t, "Electronics & Circuits", fields["ClassName"].GetStringValue())
	assert.IsType(t, &firestorepb.Value_StringValue{}, fields["Description"].GetValueType())
	assert.Equal(t, int64(220), fields["CourseNumValue"].GetIntegerValue())
	assert.Equal(t, when, fields["lastUpdated"].GetTimestampValue().AsTime())
	assert.IsType(t, &firestorepb.Value_BooleanValue{}, fields["season"].GetMapValue().GetFields()["summer"].GetValueType())
	assert.NotNil(t, fields["season_str"].GetArrayValue())
}

func TestFirestoreCreateTwiceMakesTwoDocuments(t *testing.T) {
	fs, fake := storetest.NewFirestore(t)
	ctx := context.Background()
	fields := map[string]interface{}{"ClassName": "Intro"}

	first, err := fs.Create(ctx, "Class", fields)
	require.NoError(t, err)
	second, err := fs.Create(ctx, "Class", fields)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, fake.Len())
}

func TestFirestoreGet(t *testing.T) {
	fs, _ := storetest.NewFirestore(t)
	ctx := context.Background()

	id, err := fs.Create(ctx, "Class", map[string]interface{}{"ClassName": "Intro", "CourseNumValue": 110})
	require.NoError(t, err)

	doc, err := fs.Get(ctx, "Class", id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "Class/"+id, doc.Path)
	assert.Equal(t, "Intro", doc.Fields["ClassName"])
	assert.Equal(t, int64(110), doc.Fields["CourseNumValue"])

	_, err = fs.Get(ctx, "Class", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = fs.Get(ctx, "Class", "a/b")
	assert.ErrorIs(t, err, store.ErrInvalidPath)
}

func TestFirestoreZeroValuesSurvive(t *testing.T) {
	fs, fake := storetest.NewFirestore(t)
	ctx := context.Background()
	fake.Put("Class/intro", map[string]*firestorepb.Value{
		"season":      storetest.Map(map[string]*firestorepb.Value{"summer": storetest.Bool(false)}),
		"RatingCount": storetest.Int(0),
		"courseId":    storetest.String(""),
		"RatingAvg":   storetest.Double(0),
	})

	doc, err := fs.Get(ctx, "Class", "intro")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"summer": false}, doc.Fields["season"])
	assert.Equal(t, int64(0), doc.Fields["RatingCount"])
	assert.Equal(t, "", doc.Fields["courseId"])
	assert.Equal(t, float64(0), doc.Fields["RatingAvg"])

	docs, err := fs.List(ctx, "Class", store.Where{Field: "RatingCount", Value: 0})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.Fields, docs[0].Fields)
}

func TestFirestoreList(t *testing.T) {
	fs, _ := storetest.NewFirestore(t)
	ctx := context.Background()

	for _, dept := range []string{"ECE", "MATH", "ECE"} {
		_, err := fs.Create(ctx, "Class", map[string]interface{}{"Department": dept})
		require.NoError(t, err)
	}
	_, err := fs.Create(ctx, "Users", map[string]interface{}{"Department": "ECE"})
	require.NoError(t, err)

	all, err := fs.List(ctx, "Class")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	ece, err := fs.List(ctx, "Class", store.Where{Field: "Department", Value: "ECE"})
	require.NoError(t, err)
	assert.Len(t, ece, 2)
}

func TestFirestoreCollections(t *testing.T) {
	fs, fake := storetest.NewFirestore(t)
	ctx := context.Background()
	fake.Put("Users/u1", nil)
	fake.Put("Class/abc", nil)
	fake.Put("Class/abc/reviews/r1", map[string]*firestorepb.Value{"stars": storetest.Int(5)})

	ids, err := fs.Collections(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Class", "Users"}, ids)

	ids, err = fs.Collections(ctx, "Class/abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"reviews"}, ids)

	reviews, err := fs.List(ctx, "Class/abc/reviews")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Class/abc/reviews/r1", reviews[0].Path)

	_, err = fs.Collections(ctx, "Class")
	assert.ErrorIs(t, err, store.ErrInvalidPath)
}

func TestFirestoreErrorClassification(t *testing.T) {
	tests := []struct {
		code codes.Code
		want error
	}{
		{codes.Unauthenticated, store.ErrUnauthorized},
		{codes.PermissionDenied, store.ErrForbidden},
	}
	for _, tt := range tests {
		fs, fake := storetest.NewFirestore(t)
		fake.Fail(tt.code)

		_, err := fs.Create(context.Background(), "Class", map[string]interface{}{"ClassName": "x"})
		require.Error(t, err)
		assert.ErrorIs(t, err, tt.want)
		assert.Contains(t, err.Error(), "denied")
	}
}

func TestFirestoreInvalidPath(t *testing.T) {
	fs, _ := storetest.NewFirestore(t)
	ctx := context.Background()

	_, err := fs.Create(ctx, "Class/abc", map[string]interface{}{"x": 1})
	assert.ErrorIs(t, err, store.ErrInvalidPath)

	_, err = fs.List(ctx, "")
	assert.ErrorIs(t, err, store.ErrInvalidPath)
}
