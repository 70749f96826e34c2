package ops

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/hpungsan/aura/internal/db"
)

// Storage ratings by total size on disk.
const (
	StorageGood  = "GOOD"  // under 10 MB
	StorageOkay  = "OKAY"  // under 50 MB
	StorageFull  = "FULL"  // under 100 MB
	StorageHeavy = "HEAVY" // cleanup overdue
)

// FileSize is one session file in a storage report, largest first.
type FileSize struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	Kind      string `json:"kind"`
	SizeBytes int64  `json:"size_bytes"`
	SizeHuman string `json:"size_human"`
}

// SizesOutput is the storage usage report across the catalog.
type SizesOutput struct {
	Files      []FileSize `json:"files"`
	TotalBytes int64      `json:"total_bytes"`
	TotalHuman string     `json:"total_human"`
	Tablets    int        `json:"tablets"`
	Capsules   int        `json:"capsules"`
	Rating     string     `json:"rating"`
}

// Sizes reports how much disk the catalog's session files use and rates
// whether a cleanup is due.
func Sizes(database *sql.DB) (*SizesOutput, error) {
	records, err := db.List(database, db.ListFilter{Limit: MaxListLimit})
	if err != nil {
		return nil, err
	}

	out := &SizesOutput{}
	for _, rec := range records {
		out.Files = append(out.Files, FileSize{
			ID:        rec.ID,
			Path:      rec.Path,
			Kind:      rec.Kind,
			SizeBytes: rec.SizeBytes,
			SizeHuman: FormatSize(rec.SizeBytes),
		})
		out.TotalBytes += rec.SizeBytes
		if rec.Kind == db.KindTablet {
			out.Tablets++
		} else {
			out.Capsules++
		}
	}

	// Catalog listing is newest-first; the report wants largest-first.
	sort.Slice(out.Files, func(i, j int) bool {
		return out.Files[i].SizeBytes > out.Files[j].SizeBytes
	})

	out.TotalHuman = FormatSize(out.TotalBytes)
	switch {
	case out.TotalBytes < 10<<20:
		out.Rating = StorageGood
	case out.TotalBytes < 50<<20:
		out.Rating = StorageOkay
	case out.TotalBytes < 100<<20:
		out.Rating = StorageFull
	default:
		out.Rating = StorageHeavy
	}
	return out, nil
}

// FormatSize renders a byte count as a human-readable size.
func FormatSize(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.2f TB", size)
}
