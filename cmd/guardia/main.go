package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/cache"
	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/directory"
	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/logger"
	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/parse"
	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/schedule"
)

var version = "0.1.0"

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "guardia",
		Short: "Duty-pharmacy schedule extractor for the Segovia province",
		Long: `Guardia turns the pharmacists' association duty bulletins, already
extracted to plain text page by page, into normalized per-location duty
schedules.

Each bulletin region has its own irregular layout; guardia applies the
matching parsing strategy, resolves implicit years, reconstructs the rural
ZBS sub-areas (including the two that must be derived), and emits sorted
schedules as JSON.`,
		Version: version,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(parseCmd(&verbose))
	rootCmd.AddCommand(regionsCmd())
	rootCmd.AddCommand(cacheCmd(&verbose))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseCmd(verbose *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [page-text-file...]",
		Short: "Parse a bulletin's page texts into duty schedules",
		Long: `Parse one bulletin from its per-page plain-text files (one file per
page, in page order) and print the per-location schedules as JSON.

Example:
  guardia parse --region cuellar page1.txt page2.txt
  guardia parse --region segovia-rural --url https://cofsegovia.com/2025/RURALES-2025.pdf pages/*.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			region, _ := cmd.Flags().GetString("region")
			sourceURL, _ := cmd.Flags().GetString("url")
			seedYear, _ := cmd.Flags().GetInt("seed-year")
			output, _ := cmd.Flags().GetString("output")
			cacheDir, _ := cmd.Flags().GetString("cache-dir")
			sourceModified, _ := cmd.Flags().GetString("source-modified")
			overrides, _ := cmd.Flags().GetString("directory-overrides")

			if region == "" {
				return fmt.Errorf("--region flag is required")
			}

			log, err := logger.New(*verbose)
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
			defer log.Sync()

			registry, err := directory.NewRegistry(log)
			if err != nil {
				return fmt.Errorf("loading pharmacy directory: %w", err)
			}
			if overrides != "" {
				if err := registry.LoadDirectory(overrides); err != nil {
					return fmt.Errorf("loading directory overrides: %w", err)
				}
			}

			strategy, err := parse.ForRegion(schedule.RegionID(region), registry.Current(), parse.Options{
				SeedYear: seedYear,
				Logger:   log,
			})
			if err != nil {
				return err
			}

			pages := make([]string, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading page text %s: %w", path, err)
				}
				pages = append(pages, string(data))
			}

			result, err := strategy.Parse(pages, sourceURL)
			if err != nil {
				return fmt.Errorf("parsing %s bulletin: %w", region, err)
			}

			for _, warning := range result.Warnings {
				log.Warn(warning, zap.String("region", region))
			}

			if cacheDir != "" {
				if err := storeResult(cacheDir, region, sourceModified, result, log); err != nil {
					return err
				}
			}

			return writeJSON(output, result.Schedules)
		},
	}

	cmd.Flags().String("region", "", "bulletin region id (see 'guardia regions')")
	cmd.Flags().String("url", "", "bulletin source URL, used for year hints")
	cmd.Flags().Int("seed-year", 0, "seed for the running-year counter (default: current year)")
	cmd.Flags().StringP("output", "o", "", "write JSON to file instead of stdout")
	cmd.Flags().String("cache-dir", "", "store the parse result in this cache directory")
	cmd.Flags().String("source-modified", "", "bulletin last-modified timestamp, RFC 3339 (default: now)")
	cmd.Flags().String("directory-overrides", "", "directory with pharmacy directory override YAML files")
	return cmd
}

// storeResult records the parse in the cache, one entry per location. A
// rural parse with an unvalidated base year is deliberately not cached:
// serving it once is better than serving it until the next invalidation.
func storeResult(cacheDir, region, sourceModified string, result *parse.Result, log *zap.Logger) error {
	if result.Year.Source != "" && !result.Year.Valid {
		log.Warn("not caching result with unvalidated base year",
			zap.String("region", region),
			zap.String("warning", result.Year.Warning))
		return nil
	}

	modified := time.Now()
	if sourceModified != "" {
		parsed, err := time.Parse(time.RFC3339, sourceModified)
		if err != nil {
			return fmt.Errorf("invalid --source-modified: %w", err)
		}
		modified = parsed
	}

	store, err := cache.NewStore(cacheDir, log)
	if err != nil {
		return err
	}
	store.Invalidate(schedule.LocationID(region))
	for location, schedules := range result.Schedules {
		if err := store.Put(location, modified, schedules); err != nil {
			return err
		}
	}
	return nil
}

func regionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List bulletin regions and rural ZBS zones",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("%-18s %s\n", "REGION", "LOCATIONS")
			for _, region := range parse.Regions() {
				if region == schedule.RegionSegoviaRural {
					fmt.Printf("%-18s %d ZBS zones:\n", region, len(schedule.ZBSZones))
					for _, zone := range schedule.ZBSZones {
						fmt.Printf("%-18s   %s %s (%s)\n", "", zone.Icon, zone.Name, zone.ID)
					}
					continue
				}
				fmt.Printf("%-18s %s\n", region, region)
			}
			return nil
		},
	}
}

func cacheCmd(verbose *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the schedule cache",
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the cache state of every known location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cacheDir, _ := cmd.Flags().GetString("cache-dir")
			sourceModified, _ := cmd.Flags().GetString("source-modified")

			modified := time.Time{}
			if sourceModified != "" {
				parsed, err := time.Parse(time.RFC3339, sourceModified)
				if err != nil {
					return fmt.Errorf("invalid --source-modified: %w", err)
				}
				modified = parsed
			}

			log, err := logger.New(*verbose)
			if err != nil {
				return err
			}
			defer log.Sync()

			store, err := cache.NewStore(cacheDir, log)
			if err != nil {
				return err
			}

			fmt.Printf("%-24s %-16s %s\n", "LOCATION", "STATE", "STORED AT")
			for _, location := range knownLocations() {
				state := store.Evaluate(location, modified)
				storedAt := "-"
				if entry, ok := store.Get(location); ok {
					storedAt = entry.StoredAt.Format(time.RFC3339)
				}
				fmt.Printf("%-24s %-16s %s\n", location, state, storedAt)
			}
			return nil
		},
	}
	status.Flags().String("cache-dir", "", "cache directory")
	status.Flags().String("source-modified", "", "bulletin last-modified timestamp to evaluate against, RFC 3339")

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cacheDir, _ := cmd.Flags().GetString("cache-dir")
			store, err := cache.NewStore(cacheDir, nil)
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Println("cache cleared")
			return nil
		},
	}
	clear.Flags().String("cache-dir", "", "cache directory")

	cmd.AddCommand(status, clear)
	return cmd
}

func knownLocations() []schedule.LocationID {
	locations := []schedule.LocationID{
		schedule.LocationID(schedule.RegionSegoviaCapital),
		schedule.LocationID(schedule.RegionCuellar),
		schedule.LocationID(schedule.RegionElEspinar),
	}
	return append(locations, schedule.ZBSLocationIDs()...)
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
