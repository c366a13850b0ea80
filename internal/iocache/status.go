package iocache

import (
	"fmt"

	"github.com/gitattrib/gitattrib/schema"
)

// PrintCacheStatus prints result cache status information.
func PrintCacheStatus(status schema.CacheStatus) {
	fmt.Printf("Cache Backend: %s\n", status.Backend)
	if status.Backend == schema.NoneBackend {
		return
	}
	fmt.Printf("Location: %s\n", status.Location)
	fmt.Printf("Total Entries: %d\n", status.EntryCount)
	if status.EntryCount > 0 {
		fmt.Printf("Newest Entry: %s\n", status.NewestTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Oldest Entry: %s\n", status.OldestTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Total Size: %d bytes\n", status.TotalBytes)
}

// PrintHistoryStatus prints run history status information.
func PrintHistoryStatus(status schema.HistoryStatus) {
	fmt.Printf("History Backend: %s\n", status.Backend)
	if status.Backend == schema.NoneBackend {
		return
	}
	fmt.Printf("Location: %s\n", status.Location)
	fmt.Printf("Total Runs: %d\n", status.RunCount)
	fmt.Printf("Total Repo Records: %d\n", status.RepoCount)
	if status.LastRun != nil {
		fmt.Printf("Last Run: %s\n", status.LastRun.Format("2006-01-02 15:04:05"))
	}
}
