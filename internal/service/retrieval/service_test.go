package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/heartmarshall/myenglish-adapter/internal/domain"
	"github.com/heartmarshall/myenglish-adapter/internal/provider"
)

type vectorStoreMock struct {
	CollectionExistsFunc func(ctx context.Context, name string) (bool, error)
	CreateCollectionFunc func(ctx context.Context, spec provider.CollectionSpec) error
	SearchFunc           func(ctx context.Context, collection string, vector []float32, limit int) ([]provider.SearchHit, error)
}

func (m *vectorStoreMock) CollectionExists(ctx context.Context, name string) (bool, error) {
	return m.CollectionExistsFunc(ctx, name)
}

func (m *vectorStoreMock) CreateCollection(ctx context.Context, spec provider.CollectionSpec) error {
	return m.CreateCollectionFunc(ctx, spec)
}

func (m *vectorStoreMock) Search(ctx context.Context, collection string, vector []float32, limit int) ([]provider.SearchHit, error) {
	return m.SearchFunc(ctx, collection, vector, limit)
}

var testCfg = Config{Collection: "educational_content", Dimension: 1536, SearchLimit: 3}

func TestEnsureCollection_CreatesWhenAbsent(t *testing.T) {
	t.Parallel()

	var created *provider.CollectionSpec
	store := &vectorStoreMock{
		CollectionExistsFunc: func(context.Context, string) (bool, error) { return false, nil },
		CreateCollectionFunc: func(_ context.Context, spec provider.CollectionSpec) error {
			created = &spec
			return nil
		},
	}

	if err := NewService(slog.Default(), store, testCfg).EnsureCollection(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected CreateCollection call")
	}
	if created.Name != "educational_content" || created.Dimension != 1536 || created.Distance != provider.DistanceCosine {
		t.Errorf("spec = %+v", *created)
	}
}

func TestEnsureCollection_SkipsWhenPresent(t *testing.T) {
	t.Parallel()

	store := &vectorStoreMock{
		CollectionExistsFunc: func(context.Context, string) (bool, error) { return true, nil },
		CreateCollectionFunc: func(context.Context, provider.CollectionSpec) error {
			t.Error("CreateCollection should not be called")
			return nil
		},
	}
	if err := NewService(slog.Default(), store, testCfg).EnsureCollection(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureCollection_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tests := []struct {
		name  string
		store *vectorStoreMock
	}{
		{name: "exists fails", store: &vectorStoreMock{
			CollectionExistsFunc: func(context.Context, string) (bool, error) { return false, boom },
		}},
		{name: "create fails", store: &vectorStoreMock{
			CollectionExistsFunc: func(context.Context, string) (bool, error) { return false, nil },
			CreateCollectionFunc: func(context.Context, provider.CollectionSpec) error { return boom },
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := NewService(slog.Default(), tt.store, testCfg).EnsureCollection(context.Background())
			if !errors.Is(err, boom) {
				t.Errorf("err = %v, want wrapping boom", err)
			}
		})
	}
}

func TestSearch_MapsHits(t *testing.T) {
	t.Parallel()

	var gotLimit int
	store := &vectorStoreMock{
		SearchFunc: func(_ context.Context, collection string, _ []float32, limit int) ([]provider.SearchHit, error) {
			gotLimit = limit
			if collection != "educational_content" {
				t.Errorf("collection = %q", collection)
			}
			return []provider.SearchHit{
				{ID: "1", Score: 0.9, Payload: map[string]any{"text": "Plants make food using light.", "source": "bio.md"}},
				{ID: "2", Score: 0.5, Payload: map[string]any{"page": 4}},
			}, nil
		},
	}
	svc := NewService(slog.Default(), store, testCfg)

	rc, err := svc.Search(context.Background(), domain.Vector{0.1}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 3 {
		t.Errorf("limit = %d, want default 3", gotLimit)
	}
	if len(rc.Passages) != 2 {
		t.Fatalf("passages = %d, want 2", len(rc.Passages))
	}
	if rc.Passages[0].Text != "Plants make food using light." || rc.Passages[0].Source != "bio.md" || rc.Passages[0].Score != 0.9 {
		t.Errorf("passage[0] = %+v", rc.Passages[0])
	}
	if rc.Joined() != "Plants make food using light." {
		t.Errorf("Joined() = %q", rc.Joined())
	}

	if _, err := svc.Search(context.Background(), domain.Vector{0.1}, 7); err != nil {
		t.Fatal(err)
	}
	if gotLimit != 7 {
		t.Errorf("limit = %d, want 7", gotLimit)
	}
}

func TestSearch_Error(t *testing.T) {
	t.Parallel()

	store := &vectorStoreMock{
		SearchFunc: func(context.Context, string, []float32, int) ([]provider.SearchHit, error) {
			return nil, errors.New("qdrant down")
		},
	}
	if _, err := NewService(slog.Default(), store, testCfg).Search(context.Background(), nil, 3); err == nil {
		t.Fatal("expected error")
	}
}
