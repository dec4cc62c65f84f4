package application

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/infrastructure/geocoder"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
)

var (
	publisher = &entity.User{ID: "pub-1", Role: entity.RolePublisher}
	intruder  = &entity.User{ID: "pub-2", Role: entity.RolePublisher}
	admin     = &entity.User{ID: "admin-1", Role: entity.RoleAdmin}
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

type bootcampFixture struct {
	svc    *BootcampService
	repo   *fakeBootcamps
	geo    *fakeGeocoder
	photos *fakePhotos
	search *fakeSearch
}

func newBootcampFixture(existing ...*entity.Bootcamp) bootcampFixture {
	logger, _ := newTestLogger()
	f := bootcampFixture{
		repo:   newFakeBootcamps(existing...),
		geo:    &fakeGeocoder{loc: entity.NewPoint(42.35, -71.06)},
		photos: &fakePhotos{},
		search: &fakeSearch{},
	}
	f.svc = NewBootcampService(f.repo, f.geo, f.photos, f.search, 1000, logger)
	return f
}

func TestBootcampService_Create(t *testing.T) {
	f := newBootcampFixture()

	b, err := f.svc.Create(context.Background(), publisher, BootcampInput{
		Name:        strp("Devworks Bootcamp"),
		Description: strp("Full stack"),
		Address:     strp("233 Bay State Rd Boston MA 02215"),
		Housing:     boolp(true),
	})
	require.NoError(t, err)

	assert.Equal(t, "devworks-bootcamp", b.Slug)
	assert.Equal(t, publisher.ID, b.UserID)
	assert.True(t, b.Housing)
	require.NotNil(t, b.Location)
	assert.InDelta(t, 42.35, b.Location.Latitude(), 1e-9)
	assert.Equal(t, []string{"233 Bay State Rd Boston MA 02215"}, f.geo.calls)
	assert.Equal(t, []string{b.ID}, f.search.indexed)
}

func TestBootcampService_CreateOnePerPublisher(t *testing.T) {
	f := newBootcampFixture(&entity.Bootcamp{ID: "b1", UserID: publisher.ID})
	in := BootcampInput{Name: strp("Second"), Address: strp("somewhere")}

	_, err := f.svc.Create(context.Background(), publisher, in)
	ae := apperror.From(err)
	require.NotNil(t, ae)
	assert.Equal(t, 400, ae.Status)
	assert.Equal(t, "The user with ID pub-1 has already published a bootcamp", ae.Message)

	f = newBootcampFixture(&entity.Bootcamp{ID: "b1", UserID: admin.ID})
	_, err = f.svc.Create(context.Background(), admin, in)
	assert.NoError(t, err)
}

func TestBootcampService_CreateGeocodeFailures(t *testing.T) {
	in := BootcampInput{Name: strp("X"), Address: strp("nowhere")}

	f := newBootcampFixture()
	f.geo.err = fmt.Errorf("lookup: %w", geocoder.ErrNoMatch)
	_, err := f.svc.Create(context.Background(), publisher, in)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	f = newBootcampFixture()
	f.geo.err = errBoom
	_, err = f.svc.Create(context.Background(), publisher, in)
	assert.True(t, apperror.Is(err, apperror.KindUpstream))
	assert.Empty(t, f.repo.byID)
}

func TestBootcampService_CreateIgnoresIndexFailure(t *testing.T) {
	f := newBootcampFixture()
	f.search.err = errBoom

	_, err := f.svc.Create(context.Background(), publisher, BootcampInput{Name: strp("X"), Address: strp("a")})
	assert.NoError(t, err)
}

func TestBootcampService_UpdateOwnership(t *testing.T) {
	existing := func() *entity.Bootcamp {
		return &entity.Bootcamp{ID: "b1", Name: "Old", Slug: "old", Address: "a", UserID: publisher.ID}
	}

	f := newBootcampFixture(existing())
	_, err := f.svc.Update(context.Background(), intruder, "b1", BootcampInput{Name: strp("Hijacked")})
	ae := apperror.From(err)
	require.NotNil(t, ae)
	assert.Equal(t, 401, ae.Status)
	assert.Equal(t, "User pub-2 is not authorized to update this bootcamp", ae.Message)
	assert.Equal(t, "Old", f.repo.byID["b1"].Name)

	f = newBootcampFixture(existing())
	b, err := f.svc.Update(context.Background(), admin, "b1", BootcampInput{Name: strp("New Name")})
	require.NoError(t, err)
	assert.Equal(t, "new-name", b.Slug)
	assert.Empty(t, f.geo.calls, "address unchanged")

	b, err = f.svc.Update(context.Background(), publisher, "b1", BootcampInput{Address: strp("b")})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, f.geo.calls)
	assert.NotNil(t, b.Location)
}

func TestBootcampService_UpdateMissing(t *testing.T) {
	f := newBootcampFixture()
	_, err := f.svc.Update(context.Background(), admin, "nope", BootcampInput{})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestBootcampService_Delete(t *testing.T) {
	f := newBootcampFixture(&entity.Bootcamp{ID: "b1", UserID: publisher.ID})

	err := f.svc.Delete(context.Background(), intruder, "b1")
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))
	assert.Empty(t, f.repo.deleted)

	require.NoError(t, f.svc.Delete(context.Background(), publisher, "b1"))
	assert.Equal(t, []string{"b1"}, f.repo.deleted)
	assert.Equal(t, []string{"b1"}, f.search.deleted)
}

func TestBootcampService_WithinRadius(t *testing.T) {
	f := newBootcampFixture()

	list, err := f.svc.WithinRadius(context.Background(), "02118", 10)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Equal(t, [3]float64{42.35, -71.06, 10}, f.repo.radius)

	_, err = f.svc.WithinRadius(context.Background(), "02118", -1)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestBootcampService_UploadPhoto(t *testing.T) {
	upload := func(contentType string, size int64) PhotoUpload {
		return PhotoUpload{Filename: "Cover.JPG", ContentType: contentType, Size: size, Body: strings.NewReader("img")}
	}

	f := newBootcampFixture(&entity.Bootcamp{ID: "b1", UserID: publisher.ID, Photo: entity.DefaultPhoto})
	ctx := context.Background()

	_, err := f.svc.UploadPhoto(ctx, publisher, "b1", upload("text/plain", 3))
	ae := apperror.From(err)
	require.NotNil(t, ae)
	assert.Equal(t, "Please upload an image file", ae.Message)

	_, err = f.svc.UploadPhoto(ctx, publisher, "b1", upload("image/jpeg", 1001))
	ae = apperror.From(err)
	require.NotNil(t, ae)
	assert.Equal(t, "Please upload an image less than 1000", ae.Message)

	_, err = f.svc.UploadPhoto(ctx, intruder, "b1", upload("image/jpeg", 3))
	assert.True(t, apperror.Is(err, apperror.KindAuthorization))

	name, err := f.svc.UploadPhoto(ctx, publisher, "b1", upload("image/jpeg", 3))
	require.NoError(t, err)
	assert.Equal(t, "photo_b1.jpg", name)
	assert.Equal(t, "photo_b1.jpg", f.photos.name)
	assert.Equal(t, "img", f.photos.body)
	assert.Equal(t, "photo_b1.jpg", f.repo.byID["b1"].Photo)

	f.photos.err = errBoom
	_, err = f.svc.UploadPhoto(ctx, publisher, "b1", upload("image/png", 3))
	assert.True(t, apperror.Is(err, apperror.KindUpstream))
}

func TestBootcampService_SearchText(t *testing.T) {
	f := newBootcampFixture()
	f.search.hits = []map[string]any{{"name": "Devworks"}}

	hits, err := f.svc.SearchText(context.Background(), "dev", 5)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = f.svc.SearchText(context.Background(), "  ", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	f.search.err = errBoom
	_, err = f.svc.SearchText(context.Background(), "dev", 5)
	assert.True(t, apperror.Is(err, apperror.KindUpstream))
}
