package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sydcare/carerank/internal/config"
	"github.com/sydcare/carerank/internal/evidence"
	"github.com/sydcare/carerank/internal/model"
	"github.com/sydcare/carerank/internal/ranker"
	"github.com/sydcare/carerank/internal/registry"
	"github.com/sydcare/carerank/internal/scorer"
	"github.com/sydcare/carerank/internal/store"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank providers against a query and write the Top-N",
	Long: `Score every registered provider against the query, order by fit
score (ties by provider id), and write the Top-N as canonical JSON.
A score_run receipt for the written file is appended to the evidence
ledger and the run is recorded in the store.`,
	RunE: runRank,
}

func init() {
	f := rankCmd.Flags()
	f.String("preset", "balanced", "weight preset name")
	f.Int("top", 0, "number of items to keep (default from config)")
	f.String("query", "", "path to a query JSON file")
	f.String("postcode", "", "query postcode")
	f.Float64("lat", 0, "query latitude (with --lng)")
	f.Float64("lng", 0, "query longitude (with --lat)")
	f.Float64("radius", 20, "search radius in km")
	f.Float64("budget", 100, "daily budget in dollars")
	f.StringSlice("needs", nil, "required capability tags")
	f.String("out", "", "output path (default <rankings>/top5.json)")
	f.String("format", "table", "stdout format: table or json")
	f.Bool("strict", false, "strict mode: price from passing assertions only, radius and budget enforced")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := zap.L().With(zap.String("command", "rank"))

	format, _ := cmd.Flags().GetString("format")
	if format != "table" && format != "json" {
		return eris.Errorf("rank: --format must be table or json (got %q)", format)
	}

	providers, err := registry.Load(cfg.Paths.Registry)
	if err != nil {
		return err
	}
	if err := registry.Validate(providers); err != nil {
		return err
	}

	presetName, _ := cmd.Flags().GetString("preset")
	weights, err := config.LoadPreset(cfg.Paths.Presets, presetName)
	if err != nil {
		return err
	}

	q, err := queryFromFlags(cmd)
	if err != nil {
		return err
	}

	ev := evidence.NewStore(cfg.Paths.Events, cfg.Paths.Assertions)
	events, err := ev.LoadEvents()
	if err != nil {
		return err
	}
	asserts, err := ev.LoadAssertions()
	if err != nil {
		return err
	}

	strict, _ := cmd.Flags().GetBool("strict")
	engine := scorer.New(scorer.Config{
		Origin:  cfg.Scoring.Origin,
		Weights: weights,
		Policy: scorer.Policy{
			MissingLocation: cfg.Scoring.Policy.MissingLocation,
			MissingPrice:    cfg.Scoring.Policy.MissingPrice,
			MissingQuality:  cfg.Scoring.Policy.MissingQuality,
		},
		Strict: strict,
	})

	topN, _ := cmd.Flags().GetInt("top")
	if topN <= 0 {
		topN = cfg.Scoring.TopN
	}
	rk := ranker.New(engine, ranker.Config{TopN: topN, FallbackEpoch: cfg.Scoring.FallbackEpoch})

	res, err := rk.Rank(providers, q, weights.Name, events, asserts)
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		outPath = filepath.Join(cfg.Paths.Rankings, "top5.json")
	}

	sha, size, err := ranker.WriteResult(outPath, res)
	if err != nil {
		return err
	}
	if err := ev.AppendEvents(ranker.ScoreRunEvent(res, ledgerFilename(outPath), sha, size)); err != nil {
		return err
	}

	log.Info("ranking written",
		zap.String("path", outPath),
		zap.String("sha256", sha),
		zap.Int("items", len(res.Items)),
		zap.String("generated_at", res.GeneratedAt),
	)

	recordRun(ctx, log, res, presetName, sha)

	if format == "json" {
		data, err := ranker.Encode(res)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	formatRanking(os.Stdout, res)
	return nil
}

// recordRun persists run metadata. Store trouble never fails the rank:
// the ranking file and its receipt are already on disk.
// ledgerFilename normalizes the output path before it is stamped into a
// score_run event: relative to the working directory with forward
// slashes, so absolute and relative invocations produce the same line.
// Paths outside the working directory stay absolute.
func ledgerFilename(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(filepath.Clean(path))
	}
	wd, err := os.Getwd()
	if err == nil {
		if rel, err := filepath.Rel(wd, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(abs)
}

func recordRun(ctx context.Context, log *zap.Logger, res *model.RankingResult, preset, sha string) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Warn("store unavailable, run not recorded", zap.Error(err))
		return
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		log.Warn("store migrate failed, run not recorded", zap.Error(err))
		return
	}
	run := model.Run{
		ID:          uuid.New().String(),
		Preset:      preset,
		Query:       res.Query,
		Status:      model.RunStatusComplete,
		ResultSHA:   sha,
		ItemCount:   len(res.Items),
		GeneratedAt: res.GeneratedAt,
		CreatedAt:   time.Now().UTC(),
	}
	if err := st.CreateRun(ctx, run); err != nil {
		log.Warn("run not recorded", zap.Error(err))
		return
	}
	log.Info("run recorded", zap.String("run_id", run.ID))
}

// loadQueryFile reads a query from a JSON file, the replayable
// alternative to flag-built queries.
func loadQueryFile(path string) (model.Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Query{}, eris.Wrapf(err, "rank: read query %s", path)
	}
	var q model.Query
	if err := json.Unmarshal(data, &q); err != nil {
		return model.Query{}, eris.Wrapf(err, "rank: parse query %s", path)
	}
	return q, nil
}

// queryFromFlags builds the query either from a JSON file (--query) or
// from the individual flags.
func queryFromFlags(cmd *cobra.Command) (model.Query, error) {
	if path, _ := cmd.Flags().GetString("query"); path != "" {
		return loadQueryFile(path)
	}

	var q model.Query
	q.Postcode, _ = cmd.Flags().GetString("postcode")
	q.RadiusKM, _ = cmd.Flags().GetFloat64("radius")
	q.BudgetPerDay, _ = cmd.Flags().GetFloat64("budget")
	q.Needs, _ = cmd.Flags().GetStringSlice("needs")

	if cmd.Flags().Changed("lat") != cmd.Flags().Changed("lng") {
		return model.Query{}, eris.New("rank: --lat and --lng must be given together")
	}
	if cmd.Flags().Changed("lat") {
		lat, _ := cmd.Flags().GetFloat64("lat")
		lng, _ := cmd.Flags().GetFloat64("lng")
		q.Lat, q.Lng = &lat, &lng
	}
	return q, nil
}

func formatRanking(w io.Writer, res *model.RankingResult) {
	fmt.Fprintf(w, "Preset: %s    Generated: %s\n\n", res.Preset, res.GeneratedAt)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPROVIDER\tFIT\tLOCATION\tPRICE\tQUALITY\tNEEDS\tREASONS")
	for i, item := range res.Items {
		fmt.Fprintf(tw, "%d\t%s\t%.4f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\n",
			i+1, item.ProviderID, item.FitScore,
			item.Components.Location, item.Components.Price,
			item.Components.Quality, item.Components.Needs,
			strings.Join(item.Reasons, "; "),
		)
	}
	tw.Flush()
}
