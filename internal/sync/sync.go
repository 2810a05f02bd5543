package sync

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/conorfennell/salita/internal/domain"
	"github.com/conorfennell/salita/internal/gitsource"
	"github.com/conorfennell/salita/internal/parser"
)

// RecordLister is the part of the record store orphan detection needs.
type RecordLister interface {
	GetAll(ctx context.Context, category domain.Category) ([]domain.ReviewRecord, error)
}

// Result summarises a load of all deck sources.
type Result struct {
	Catalog     *domain.Catalog
	Files       int
	ParseErrors int
	FailedPaths []string
}

// IsGitSource reports whether a deck source refers to a git repository
// rather than a local directory.
func IsGitSource(source string) bool {
	return strings.HasSuffix(source, ".git") || strings.HasPrefix(source, "git@") || strings.HasPrefix(source, "https://")
}

// Load reads every configured deck source into a single catalog. Git sources
// are cloned or pulled below reposDir first. Failing sources are logged and
// skipped so one bad source does not hide the others.
func Load(ctx context.Context, sources []string, reposDir string) (*Result, error) {
	slog.Info("Loading deck sources", "count", len(sources))
	res := &Result{Catalog: domain.NewCatalog()}

	if len(sources) == 0 {
		slog.Info("No deck sources configured. Add one with --decks <path/or/url.git>")
		return res, nil
	}

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := source
		if IsGitSource(source) {
			localPath, err := gitURLToLocalPath(reposDir, source)
			if err != nil {
				slog.Error("Error determining local path for git repo", "url", source, "error", err)
				res.FailedPaths = append(res.FailedPaths, source)
				continue
			}
			if err := os.MkdirAll(filepath.Dir(localPath), os.ModePerm); err != nil {
				return nil, fmt.Errorf("failed to create repos directory: %w", err)
			}
			if err := gitsource.Sync(ctx, source, localPath, gitsource.Options{Depth: 1}); err != nil {
				slog.Error("Error syncing git repo", "url", source, "error", err)
				res.FailedPaths = append(res.FailedPaths, source)
				continue
			}
			path = localPath
		}

		if err := loadDirectory(path, res); err != nil {
			slog.Error("Error walking deck directory", "path", path, "error", err)
			res.FailedPaths = append(res.FailedPaths, source)
		}
	}

	slog.Info("Deck load complete",
		"words", len(res.Catalog.Vocabulary),
		"drills", len(res.Catalog.Drills),
		"files", res.Files,
		"parse_errors", res.ParseErrors,
		"failed_sources", len(res.FailedPaths),
	)
	return res, nil
}

func loadDirectory(root string, res *Result) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		res.Files++
		deck, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			res.ParseErrors++
			slog.Warn("Deck file has invalid entries", "path", path, "error", parseErr)
		}
		for _, w := range deck.Words {
			if _, exists := res.Catalog.Vocabulary[w.ID]; exists {
				slog.Debug("Word redefined, keeping the later definition", "id", w.ID, "path", path)
			}
			res.Catalog.Vocabulary[w.ID] = w
		}
		for _, drill := range deck.Drills {
			res.Catalog.Drills[drill.ID] = drill
		}
		return nil
	})
}

// Orphans returns the ids of review records that no loaded deck item accounts
// for. Letter records are single characters and never appear in decks, so they
// are only orphaned when longer than one rune.
func Orphans(ctx context.Context, store RecordLister, catalog *domain.Catalog) ([]string, error) {
	records, err := store.GetAll(ctx, domain.AnyCategory)
	if err != nil {
		return nil, fmt.Errorf("failed to list review records: %w", err)
	}

	var orphans []string
	for _, r := range records {
		if _, ok := catalog.Vocabulary[r.ItemID]; ok {
			continue
		}
		if r.Category == domain.CategoryLetter && utf8.RuneCountInString(r.ItemID) == 1 {
			continue
		}
		orphans = append(orphans, r.ItemID)
	}
	if len(orphans) > 0 {
		slog.Info("Review records without a deck item", "count", len(orphans))
	}
	return orphans, nil
}

func gitURLToLocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err != nil || (parsedURL.Scheme != "https" && parsedURL.Scheme != "http") {
		if strings.Contains(repoURL, "@") {
			parts := strings.Split(repoURL, ":")
			if len(parts) == 2 {
				hostAndUser := strings.Split(parts[0], "@")
				if len(hostAndUser) == 2 {
					host := hostAndUser[1]
					repoPath := strings.TrimSuffix(parts[1], ".git")
					return filepath.Join(baseDir, host, repoPath), nil
				}
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}

	sanitizedPath := strings.TrimSuffix(parsedURL.Path, ".git")
	return filepath.Join(baseDir, parsedURL.Host, sanitizedPath), nil
}
