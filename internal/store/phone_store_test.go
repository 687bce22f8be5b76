package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/phonegallery/internal/db"
	"github.com/vbonduro/phonegallery/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func newPhone(brand, name string, yearStart int, yearEnd *int) *domain.Phone {
	return &domain.Phone{
		Brand:     brand,
		Name:      name,
		YearStart: yearStart,
		YearEnd:   yearEnd,
		Liked:     true,
		ImagePath: "/phones/" + name + ".jpg",
	}
}

func TestPhoneStoreCreate(t *testing.T) {
	store := NewPhoneStore(openTestDB(t))
	ctx := context.Background()

	p := newPhone("Acme", "X1", 2020, nil)
	p.CPU = strPtr("Octa-core")

	created, err := store.Create(ctx, p)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Acme", created.Brand)
	assert.Equal(t, "X1", created.Name)
	assert.Equal(t, 2020, created.YearStart)
	assert.Nil(t, created.YearEnd)
	assert.False(t, created.Kept)
	assert.True(t, created.Liked)
	assert.Equal(t, "/phones/X1.jpg", created.ImagePath)
	assert.Nil(t, created.ImageData)
	require.NotNil(t, created.CPU)
	assert.Equal(t, "Octa-core", *created.CPU)
	assert.Nil(t, created.GPU)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestPhoneStoreCreateUniqueIDs(t *testing.T) {
	store := NewPhoneStore(openTestDB(t))
	ctx := context.Background()

	seen := make(map[int64]bool)
	for i := 0; i < 5; i++ {
		p, err := store.Create(ctx, newPhone("Acme", "X", 2020, nil))
		require.NoError(t, err)
		assert.False(t, seen[p.ID], "duplicate id %d", p.ID)
		seen[p.ID] = true
	}
}

func TestPhoneStoreGetByID_NotFound(t *testing.T) {
	store := NewPhoneStore(openTestDB(t))

	p, err := store.GetByID(context.Background(), 99999)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPhoneStoreListOrder(t *testing.T) {
	store := NewPhoneStore(openTestDB(t))
	ctx := context.Background()

	_, err := store.Create(ctx, newPhone("A", "old", 2017, intPtr(2019)))
	require.NoError(t, err)
	_, err = store.Create(ctx, newPhone("B", "current", 2021, nil))
	require.NoError(t, err)
	_, err = store.Create(ctx, newPhone("C", "recent", 2019, intPtr(2021)))
	require.NoError(t, err)

	phones, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, phones, 3)
	assert.Equal(t, "current", phones[0].Name)
	assert.Equal(t, "recent", phones[1].Name)
	assert.Equal(t, "old", phones[2].Name)
}

func TestPhoneStoreListSameEndYearByStartYear(t *testing.T) {
	store := NewPhoneStore(openTestDB(t))
	ctx := context.Background()

	_, err := store.Create(ctx, newPhone("A", "earlier", 2015, intPtr(2018)))
	require.NoError(t, err)
	_, err = store.Create(ctx, newPhone("A", "later", 2017, intPtr(2018)))
	require.NoError(t, err)

	phones, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, phones, 2)
	assert.Equal(t, "later", phones[0].Name)
	assert.Equal(t, "earlier", phones[1].Name)
}

func TestPhoneStoreList_Empty(t *testing.T) {
	store := NewPhoneStore(openTestDB(t))

	phones, err := store.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, phones)
	assert.Empty(t, phones)
}

func TestPhoneStoreUpdateReplacesEveryColumn(t *testing.T) {
	store := NewPhoneStore(openTestDB(t))
	ctx := context.Background()

	p := newPhone("Acme", "X1", 2020, nil)
	p.Review = strPtr("solid")
	p.RAM = strPtr("8 GB")
	created, err := store.Create(ctx, p)
	require.NoError(t, err)

	replacement := &domain.Phone{
		Brand:     "Acme",
		Name:      "X1 Pro",
		YearStart: 2020,
		YearEnd:   intPtr(2022),
		Kept:      true,
		Liked:     false,
		ImageData: strPtr("data:image/png;base64,AAAA"),
	}
	replacement.Review = strPtr("changed my mind")

	updated, err := store.Update(ctx, created.ID, replacement)
	require.NoError(t, err)
	assert.Equal(t, "X1 Pro", updated.Name)
	require.NotNil(t, updated.YearEnd)
	assert.Equal(t, 2022, *updated.YearEnd)
	assert.True(t, updated.Kept)
	assert.False(t, updated.Liked)
	assert.Empty(t, updated.ImagePath)
	require.NotNil(t, updated.ImageData)
	assert.Equal(t, "data:image/png;base64,AAAA", *updated.ImageData)
	require.NotNil(t, updated.Review)
	assert.Equal(t, "changed my mind", *updated.Review)
	assert.Nil(t, updated.RAM, "fields absent from the replacement are cleared")
}

func TestPhoneStoreUpdate_NotFound(t *testing.T) {
	store := NewPhoneStore(openTestDB(t))

	_, err := store.Update(context.Background(), 99999, newPhone("A", "B", 2020, nil))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPhoneStoreDelete(t *testing.T) {
	store := NewPhoneStore(openTestDB(t))
	ctx := context.Background()

	created, err := store.Create(ctx, newPhone("Acme", "X1", 2020, nil))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.ID))

	p, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPhoneStoreDelete_NotFound(t *testing.T) {
	store := NewPhoneStore(openTestDB(t))

	err := store.Delete(context.Background(), 99999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPhoneStoreCreateManyAndCount(t *testing.T) {
	store := NewPhoneStore(openTestDB(t))
	ctx := context.Background()

	err := store.CreateMany(ctx, []*domain.Phone{
		newPhone("Nokia", "3310", 2001, intPtr(2003)),
		newPhone("Sony Ericsson", "K750i", 2005, intPtr(2007)),
	})
	require.NoError(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPhoneStoreCreateManyIsAtomic(t *testing.T) {
	store := NewPhoneStore(openTestDB(t))
	ctx := context.Background()

	// Reject the second insert so the batch fails partway through.
	_, err := store.db.Exec("CREATE TRIGGER reject_bad BEFORE INSERT ON phones WHEN NEW.name = 'bad' BEGIN SELECT RAISE(ABORT, 'rejected'); END")
	require.NoError(t, err)

	err = store.CreateMany(ctx, []*domain.Phone{
		newPhone("Nokia", "good", 2001, nil),
		newPhone("Nokia", "bad", 2002, nil),
	})
	require.Error(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPhoneStoreImageData(t *testing.T) {
	store := NewPhoneStore(openTestDB(t))
	ctx := context.Background()

	withPath, err := store.Create(ctx, newPhone("Acme", "X1", 2020, nil))
	require.NoError(t, err)
	embedded := newPhone("Acme", "X2", 2021, nil)
	embedded.ImagePath = ""
	embedded.ImageData = strPtr("data:image/jpeg;base64,/9j/")
	_, err = store.Create(ctx, embedded)
	require.NoError(t, err)

	refs, err := store.ListMissingImageData(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, withPath.ID, refs[0].ID)
	assert.Equal(t, "/phones/X1.jpg", refs[0].Path)

	ok, err := store.SetImageData(ctx, withPath.ID, "data:image/jpeg;base64,AAAA")
	require.NoError(t, err)
	assert.True(t, ok)

	// Existing data is never overwritten.
	ok, err = store.SetImageData(ctx, withPath.ID, "data:image/jpeg;base64,BBBB")
	require.NoError(t, err)
	assert.False(t, ok)

	p, err := store.GetByID(ctx, withPath.ID)
	require.NoError(t, err)
	require.NotNil(t, p.ImageData)
	assert.Equal(t, "data:image/jpeg;base64,AAAA", *p.ImageData)

	refs, err = store.ListMissingImageData(ctx)
	require.NoError(t, err)
	assert.Empty(t, refs)
}
