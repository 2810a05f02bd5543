package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/conorfennell/salita/internal/domain"
	"github.com/conorfennell/salita/internal/ident"
	"github.com/conorfennell/salita/internal/sync"
	"github.com/conorfennell/salita/internal/web"
)

const (
	colorReset      = "\033[0m"
	timeLayout      = "2006-01-02 15:04"
	shutdownTimeout = 5 * time.Second
)

type command struct {
	args    string
	minArgs int
	maxArgs int
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"answer":    {args: "<id> <category> <correct|wrong>", minArgs: 3, maxArgs: 3, run: runAnswer},
	"due":       {args: "[category]", maxArgs: 1, run: runDue},
	"difficult": {args: "[category]", maxArgs: 1, run: runDifficult},
	"stats":     {args: "[category]", maxArgs: 1, run: runStats},
	"reset":     {args: "<id>", minArgs: 1, maxArgs: 1, run: runReset},
	"history":   {args: "<id>", minArgs: 1, maxArgs: 1, run: runHistory},
	"check":     {args: `"<target ids>" "<attempt ids>"`, minArgs: 2, maxArgs: 2, run: runCheck},
	"hint":      {args: `"<target ids>" ["<attempt so far>"]`, minArgs: 1, maxArgs: 2, run: runHint},
	"drills":    {run: runDrills},
	"orphans":   {run: runOrphans},
	"serve":     {run: runServe},
}

func runAnswer(ctx context.Context, a *app, args []string) error {
	category, err := domain.ParseCategory(args[1])
	if err != nil {
		return err
	}
	var correct bool
	switch strings.ToLower(args[2]) {
	case "correct", "right", "yes", "y":
		correct = true
	case "wrong", "incorrect", "no", "n":
	default:
		return fmt.Errorf("answer must be correct or wrong, got %q", args[2])
	}

	r, err := a.scheduler.RecordAnswer(ctx, args[0], category, correct)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s: level %d, streak %d, ease %.2f, next review %s\n",
		label(r.Category), r.ItemID, r.DifficultyLevel, r.CorrectStreak, r.Ease,
		r.NextReview.Local().Format(timeLayout))
	return nil
}

func runDue(ctx context.Context, a *app, args []string) error {
	category, err := optionalCategory(args)
	if err != nil {
		return err
	}
	records, err := a.scheduler.DueForReview(ctx, category)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(a.out, "Nothing due for review.")
		return nil
	}
	return printRecords(a, records)
}

func runDifficult(ctx context.Context, a *app, args []string) error {
	category, err := optionalCategory(args)
	if err != nil {
		return err
	}
	records, err := a.scheduler.DifficultCards(ctx, category)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(a.out, "No difficult items.")
		return nil
	}
	return printRecords(a, records)
}

func runStats(ctx context.Context, a *app, args []string) error {
	category, err := optionalCategory(args)
	if err != nil {
		return err
	}
	categories := domain.Categories()
	if category != domain.AnyCategory {
		categories = []domain.Category{category}
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tTOTAL\tMASTERED\tLEARNING\tDIFFICULT\tDUE")
	for _, c := range categories {
		st, err := a.scheduler.Stats(ctx, c)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", label(c), st.Total, st.Mastered, st.Learning, st.Difficult, st.DueForReview)
	}
	return tw.Flush()
}

func runReset(ctx context.Context, a *app, args []string) error {
	if err := a.scheduler.Reset(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Reset %s.\n", args[0])
	return nil
}

func runHistory(ctx context.Context, a *app, args []string) error {
	r, err := a.scheduler.Record(ctx, args[0])
	if err != nil {
		return err
	}
	if r == nil {
		fmt.Fprintf(a.out, "No review record for %s.\n", args[0])
		return nil
	}
	if err := printRecords(a, []domain.ReviewRecord{*r}); err != nil {
		return err
	}

	entries, err := a.scheduler.History(ctx, args[0])
	if err != nil {
		return err
	}
	for _, e := range entries {
		result := "wrong"
		if e.Correct {
			result = "correct"
		}
		fmt.Fprintf(a.out, "  %s  %s\n", e.AnsweredAt.Local().Format(timeLayout), result)
	}
	return nil
}

func runCheck(ctx context.Context, a *app, args []string) error {
	if err := a.loadDecks(ctx); err != nil {
		return err
	}
	target := a.target(args[0])
	report := a.validator.Validate(strings.Fields(args[1]), target)

	verdict := "incorrect"
	if report.IsValid {
		verdict = "valid"
	}
	fmt.Fprintf(a.out, "Score %d/100 (%s)\n", report.Score, verdict)
	for _, issue := range report.Errors {
		pos := ""
		if issue.WordIndex != nil {
			pos = fmt.Sprintf(" at word %d", *issue.WordIndex+1)
		}
		fmt.Fprintf(a.out, "  [%s] %s%s: %s\n", issue.Severity, issue.Kind, pos, issue.Message)
	}
	for _, s := range report.Suggestions {
		fmt.Fprintf(a.out, "  > %s\n", s)
	}
	return nil
}

func runHint(ctx context.Context, a *app, args []string) error {
	if err := a.loadDecks(ctx); err != nil {
		return err
	}
	var attempt []string
	if len(args) > 1 {
		attempt = strings.Fields(args[1])
	}
	hints := a.validator.GenerateHints(a.target(args[0]), attempt)
	if len(hints) == 0 {
		fmt.Fprintln(a.out, "No hint available.")
		return nil
	}
	for _, h := range hints {
		fmt.Fprintln(a.out, h)
	}
	return nil
}

func runDrills(ctx context.Context, a *app, _ []string) error {
	if err := a.loadDecks(ctx); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, d := range a.catalog.DrillList() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ident.Short(d.ID), strings.Join(d.Tokens, " "), firstLine(d.Translation))
	}
	return tw.Flush()
}

func runOrphans(ctx context.Context, a *app, _ []string) error {
	if err := a.loadDecks(ctx); err != nil {
		return err
	}
	orphans, err := sync.Orphans(ctx, a.db, a.catalog)
	if err != nil {
		return err
	}
	for _, id := range orphans {
		fmt.Fprintln(a.out, id)
	}
	return nil
}

func runServe(ctx context.Context, a *app, _ []string) error {
	if err := a.loadDecks(ctx); err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           web.NewServer(a.scheduler, a.validator, a.catalog, slog.Default()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", a.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// target resolves a check or hint target: a single drill id or prefix selects
// that drill, anything else is a space-separated list of word ids.
func (a *app) target(arg string) []string {
	tokens := strings.Fields(arg)
	if len(tokens) == 1 {
		if d, ok := a.catalog.FindDrill(tokens[0]); ok {
			return d.Tokens
		}
	}
	return tokens
}

func optionalCategory(args []string) (domain.Category, error) {
	if len(args) == 0 {
		return domain.AnyCategory, nil
	}
	return domain.ParseCategory(args[0])
}

func printRecords(a *app, records []domain.ReviewRecord) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tCATEGORY\tLEVEL\tSTREAK\tEASE\tACCURACY\tNEXT REVIEW")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.2f\t%.0f%%\t%s\n",
			r.ItemID, label(r.Category), r.DifficultyLevel, r.CorrectStreak, r.Ease,
			r.Accuracy()*100, r.NextReview.Local().Format(timeLayout))
	}
	return tw.Flush()
}

func label(c domain.Category) string {
	p := c.Profile()
	if p.Color == "" {
		return p.Label
	}
	return p.Color + p.Label + colorReset
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
