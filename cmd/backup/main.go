package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"familycal/internal/config"
	"familycal/internal/database"
	"familycal/internal/service"
	"familycal/pkg/logging"
)

func main() {
	logging.Setup()

	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importInput := importCmd.String("input", "", "Input file path (required)")
	importClear := importCmd.Bool("clear", false, "Clear existing data before import (WARNING: destructive)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	backupService := service.NewBackupService(db)

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(backupService, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		handleImport(backupService, db, *importInput, *importClear)

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(backupService *service.BackupService, outputPath string) {
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("backup_%s.json", timestamp)
	}

	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			slog.Error("Failed to create output directory", "error", err)
			os.Exit(1)
		}
	}

	if err := backupService.Export(outputPath); err != nil {
		slog.Error("Export failed", "error", err)
		os.Exit(1)
	}
}

func handleImport(backupService *service.BackupService, db *database.DB, inputPath string, clearData bool) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		slog.Error("Input file does not exist", "path", inputPath)
		os.Exit(1)
	}

	if clearData {
		fmt.Print("WARNING: This will delete all existing data. Type 'yes' to confirm: ")
		var confirmation string
		fmt.Scanln(&confirmation)
		if confirmation != "yes" {
			slog.Info("Import cancelled")
			return
		}
		if err := clearDatabase(db); err != nil {
			slog.Error("Failed to clear database", "error", err)
			os.Exit(1)
		}
	}

	if err := backupService.Import(inputPath); err != nil {
		slog.Error("Import failed", "error", err)
		os.Exit(1)
	}
}

// clearDatabase deletes all rows in reverse dependency order
func clearDatabase(db *database.DB) error {
	tables := []string{
		"notifications",
		"event_participants",
		"events",
		"family_members",
		"families",
		"sessions",
		"users",
	}
	for _, table := range tables {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  backup export [-output FILE]   Export the database to a JSON backup")
	fmt.Println("  backup import -input FILE [-clear]   Restore the database from a backup")
}
