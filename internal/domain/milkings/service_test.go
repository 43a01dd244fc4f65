package milkings

import (
	"context"
	"testing"
	"time"

	"livestock-ledger/internal/domain/animals"
	"livestock-ledger/internal/platform/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnimals map[string]animals.Animal

func (f fakeAnimals) GetByID(_ context.Context, id string) (animals.Animal, error) {
	a, ok := f[id]
	if !ok {
		return animals.Animal{}, apperr.NotFound("animal", id)
	}
	return a, nil
}

type testRepo struct {
	items []Milking
}

func (r *testRepo) Create(_ context.Context, m Milking) error {
	r.items = append(r.items, m)
	return nil
}

func (r *testRepo) ListByAnimal(_ context.Context, animalID string) ([]Milking, error) {
	out := make([]Milking, 0)
	for _, m := range r.items {
		if m.AnimalID == animalID {
			out = append(out, m)
		}
	}
	return out, nil
}

func newTestService() (*Service, *testRepo) {
	repo := &testRepo{}
	svc := NewService(repo, fakeAnimals{
		"cow":  {ID: "cow", OrganizationID: "org-1", AnimalTypeID: "cattle", Status: animals.StatusActive},
		"dead": {ID: "dead", OrganizationID: "org-1", Status: animals.StatusDead},
	})
	svc.now = func() time.Time { return time.Date(2024, 2, 10, 6, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestRecord_CopiesAnimalDimensions(t *testing.T) {
	svc, repo := newTestService()

	m, err := svc.Record(context.Background(), "cow", RecordInput{Quantity: decimal.RequireFromString("12.5"), UserID: "u-1"})
	require.NoError(t, err)

	assert.Equal(t, "org-1", m.OrganizationID)
	assert.Equal(t, "cattle", m.AnimalTypeID)
	assert.Equal(t, time.Date(2024, 2, 10, 6, 0, 0, 0, time.UTC), m.CreatedAt)
	assert.Len(t, repo.items, 1)
}

func TestRecord_Rejections(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.Record(ctx, "cow", RecordInput{Quantity: decimal.Zero})
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.Record(ctx, "dead", RecordInput{Quantity: decimal.NewFromInt(3)})
	assert.True(t, apperr.IsConflict(err))

	_, err = svc.Record(ctx, "ghost", RecordInput{Quantity: decimal.NewFromInt(3)})
	assert.True(t, apperr.IsNotFound(err))

	assert.Empty(t, repo.items)
}
