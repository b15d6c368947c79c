package main

import (
	"fmt"
	"io"
	"strings"

	"cine-insights/catalog"
	"cine-insights/console"
	"cine-insights/storage"
)

// recentLimit is how many runs and titles the stats command lists by default.
const recentLimit = 5

// titleFilter selects the stored titles the stats command lists.
type titleFilter struct {
	Type   string
	Search string
	Limit  int
}

func (f titleFilter) active() bool { return f.Type != "" || f.Search != "" }

// normalizeType maps a --type value onto the catalog type literal.
func normalizeType(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return "", nil
	case "movie", "movies":
		return catalog.TypeMovie, nil
	case "tv show", "tv", "show", "tv_show", "tv-show":
		return catalog.TypeTVShow, nil
	}
	return "", fmt.Errorf("unknown title type %q: use %q or %q", value, catalog.TypeMovie, catalog.TypeTVShow)
}

func (a *app) showStats(w io.Writer, filter titleFilter) error {
	titleType, err := normalizeType(filter.Type)
	if err != nil {
		return err
	}
	if filter.Limit <= 0 {
		filter.Limit = recentLimit
	}

	store, closeStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore()
	if store == nil {
		return fmt.Errorf("no database configured: set DB_DIR or pass --db")
	}

	stats, err := store.GetStats()
	if err != nil {
		return err
	}
	console.Banner(w, "DATABASE STATISTICS")
	console.KeyValues(w, [][2]string{
		{"Total titles", fmt.Sprintf("%d", stats["total"])},
		{"Movies", fmt.Sprintf("%d", stats["movies"])},
		{"TV Shows", fmt.Sprintf("%d", stats["tv_shows"])},
	})

	runs, err := store.GetRuns(filter.Limit)
	if err != nil {
		return err
	}
	if len(runs) > 0 && !filter.active() {
		console.Heading(w, "Recent Runs")
		rows := make([][]string, len(runs))
		for i, r := range runs {
			rows[i] = []string{
				r.ID,
				r.StartedAt.Format("2006-01-02 15:04:05"),
				fmt.Sprintf("%d", r.OriginalRows),
				fmt.Sprintf("%d", r.FinalRows),
				fmt.Sprintf("%d", len(r.Issues)),
			}
		}
		console.Table(w, []string{"Run", "Started", "Rows In", "Rows Out", "Issues"}, rows)
	}

	titles, err := findTitles(store, titleType, filter.Search)
	if err != nil {
		return err
	}
	heading := "Sample Titles"
	if filter.active() {
		heading = fmt.Sprintf("Matching Titles (%d)", len(titles))
	}
	if len(titles) > filter.Limit {
		titles = titles[:filter.Limit]
	}
	if len(titles) > 0 || filter.active() {
		console.Heading(w, heading)
	}
	if len(titles) > 0 {
		rows := make([][]string, len(titles))
		for i, t := range titles {
			year := "-"
			if t.ReleaseYear != nil {
				year = fmt.Sprintf("%d", *t.ReleaseYear)
			}
			rows[i] = []string{t.Title, t.Type, year, t.PrimaryGenre}
		}
		console.Table(w, []string{"Title", "Type", "Year", "Genre"}, rows)
	}
	return nil
}

func findTitles(store storage.StorageInterface, titleType, search string) ([]storage.Title, error) {
	switch {
	case search != "":
		found, err := store.SearchTitles(search)
		if err != nil || titleType == "" {
			return found, err
		}
		var titles []storage.Title
		for _, t := range found {
			if t.Type == titleType {
				titles = append(titles, t)
			}
		}
		return titles, nil
	case titleType != "":
		return store.GetTitlesByType(titleType)
	default:
		return store.GetAllTitles()
	}
}
