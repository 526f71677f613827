package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkoda/bifrost/internal/config"
	"github.com/mkoda/bifrost/internal/server"
)

var (
	serveConfigPath string
	serveHost       string
	servePort       int
	serveOracleURL  string
	serveCoursePath string
	serveCourseURL  string
	serveDBPath     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the companion HTTP server",
	Long:  `Start an HTTP server exposing state ingestion, training evaluation, skill-build optimization and settings endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Bind address")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on")
	serveCmd.Flags().StringVar(&serveOracleURL, "oracle-url", "", "Race simulation service base URL")
	serveCmd.Flags().StringVar(&serveCoursePath, "course-data", "", "Path to local course metadata JSON file")
	serveCmd.Flags().StringVar(&serveCourseURL, "course-url", "", "Course metadata service base URL")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "SQLite database path")
	rootCmd.AddCommand(serveCmd)
}

func loadServeConfig(cmd *cobra.Command, path string) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
	}

	// CLI overrides win over the config file
	if cmd.Flags().Changed("host") {
		cfg.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("oracle-url") {
		cfg.OracleURL = serveOracleURL
	}
	if cmd.Flags().Changed("course-data") {
		cfg.CourseDataPath = serveCoursePath
	}
	if cmd.Flags().Changed("course-url") {
		cfg.CourseDataURL = serveCourseURL
	}
	if cmd.Flags().Changed("db") {
		cfg.DatabasePath = serveDBPath
	}

	return cfg.MergeWithDefaults(config.Defaults()), nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadServeConfig(cmd, serveConfigPath)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Host:           cfg.Host,
		Port:           cfg.Port,
		OracleURL:      cfg.OracleURL,
		CourseDataPath: cfg.CourseDataPath,
		CourseDataURL:  cfg.CourseDataURL,
		DatabasePath:   cfg.DatabasePath,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
