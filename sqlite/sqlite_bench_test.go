package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkCreateExcerpt measures history writes against a file-backed
// database, the way a batch run records one excerpt per job.
func BenchmarkCreateExcerpt(b *testing.B) {
	db := sqlite.NewDB(filepath.Join(b.TempDir(), "bench.db"))
	require.NoError(b, db.Open())
	defer db.Close()

	ctx := context.Background()
	svc := sqlite.NewExcerptService(db)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := &excerpt.Excerpt{
			Location:  fmt.Sprintf("https://example.com/docs/page%d", i),
			Title:     fmt.Sprintf("Page %d", i),
			Selection: "lorem ipsum",
			Mode:      excerpt.ModeStandard,
			Content:   fmt.Sprintf("Paragraph %d. Lorem ipsum dolor sit amet, consectetur adipiscing elit.", i),
		}
		if err := svc.CreateExcerpt(ctx, e); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkFindExcerpts measures a paginated history listing.
func BenchmarkFindExcerpts(b *testing.B) {
	db := sqlite.NewDB(filepath.Join(b.TempDir(), "bench.db"))
	require.NoError(b, db.Open())
	defer db.Close()

	ctx := context.Background()
	svc := sqlite.NewExcerptService(db)
	for i := 0; i < 500; i++ {
		require.NoError(b, svc.CreateExcerpt(ctx, &excerpt.Excerpt{
			Location:  fmt.Sprintf("https://example.com/docs/page%d", i%10),
			Selection: "lorem",
		}))
	}
	location := "https://example.com/docs/page3"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.FindExcerpts(ctx, excerpt.ExcerptFilter{Location: &location, Limit: 20}); err != nil {
			b.Fatal(err)
		}
	}
}
