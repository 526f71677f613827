package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkoda/bifrost/internal/config"
	"github.com/mkoda/bifrost/internal/course"
	"github.com/mkoda/bifrost/internal/observability"
	"github.com/mkoda/bifrost/internal/optimizer"
	"github.com/mkoda/bifrost/internal/oracle"
	"github.com/mkoda/bifrost/internal/types"
)

var (
	optConfigPath   string
	optSnapshotPath string
	optCourseID     string
	optOracleURL    string
	optCoursePath   string
	optJSON         bool
	optVerbose      bool
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Search budgeted skill builds for a snapshot",
	Long:  `Run the skill-build search for a snapshot JSON file against the race simulation service and print the recommended builds.`,
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVar(&optConfigPath, "config", "", "Path to config.json file")
	optimizeCmd.Flags().StringVarP(&optSnapshotPath, "snapshot", "s", "", "Path to snapshot JSON file (required)")
	optimizeCmd.Flags().StringVar(&optCourseID, "course", "", "Course id to simulate on (required)")
	optimizeCmd.Flags().StringVar(&optOracleURL, "oracle-url", "", "Race simulation service base URL")
	optimizeCmd.Flags().StringVar(&optCoursePath, "course-data", "", "Path to local course metadata JSON file")
	optimizeCmd.Flags().BoolVar(&optJSON, "json", false, "Print machine-readable JSON instead of formatted output")
	optimizeCmd.Flags().BoolVarP(&optVerbose, "verbose", "v", false, "Print progress as the search runs")
	_ = optimizeCmd.MarkFlagRequired("snapshot")
	_ = optimizeCmd.MarkFlagRequired("course")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	var cfg config.Config
	if optConfigPath != "" {
		loaded, err := config.LoadConfig(optConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = *loaded
	}
	if cmd.Flags().Changed("oracle-url") {
		cfg.OracleURL = optOracleURL
	}
	if cmd.Flags().Changed("course-data") {
		cfg.CourseDataPath = optCoursePath
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if cfg.CourseDataPath == "" && cfg.CourseDataURL == "" {
		return fmt.Errorf("course metadata source required: set --course-data or course_data_url")
	}

	snap, err := loadSnapshot(optSnapshotPath)
	if err != nil {
		return err
	}

	var courses course.Provider
	if cfg.CourseDataPath != "" {
		courses = course.NewFileProvider(cfg.CourseDataPath)
	} else {
		courses = course.NewHTTPProvider(cfg.CourseDataURL)
	}

	ctx := context.Background()
	crs, err := courses.Course(ctx, optCourseID)
	if err != nil {
		return err
	}
	if crs == nil {
		return fmt.Errorf("unknown course: %s", optCourseID)
	}

	targets := types.DefaultTargets()
	if cfg.Targets != nil {
		targets = *cfg.Targets
	}

	sess := optimizer.NewSession(snap, crs, types.RaceConditions{}, targets)
	if optVerbose {
		sess.OnProgress = func(stage, message string) {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", stage, message)
		}
	}

	opt := optimizer.New(oracle.NewHTTPClient(cfg.OracleURL))
	result, err := opt.Optimize(ctx, sess)
	if err != nil {
		return err
	}

	if optJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintCandidates(sess.Costs.Candidates(), sess.Budget)
	printer.PrintBuilds(result.Builds)
	if result.Status != "" {
		fmt.Fprintln(os.Stdout, result.Status)
	}
	return nil
}
