// Command seed loads the taxonomy from a YAML file into the database and
// optionally creates the first administrator.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"

	"me-platform/internal/auth"
	"me-platform/internal/config"
	"me-platform/internal/database"
	"me-platform/internal/logger"
	"me-platform/internal/models"
	"me-platform/internal/repository"
	"me-platform/internal/service"
	"me-platform/migrations"
)

func main() {
	file := flag.String("file", "seed/taxonomy.yaml", "taxonomy seed file")
	migrate := flag.Bool("migrate", true, "apply pending migrations first")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Setup(logger.Config{Level: cfg.Log.Level})

	if err := run(context.Background(), cfg, *file, *migrate); err != nil {
		slog.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, path string, migrate bool) error {
	seed, err := loadSeedFile(path)
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if migrate {
		if err := database.NewMigrationExecutor(db).Up(ctx, migrations.FS); err != nil {
			return err
		}
	}

	taxonomy := service.NewTaxonomyService(repository.NewTaxonomyRepository(db), repository.NewRoleRepository(db))
	if err := taxonomy.Seed(ctx, &seed.Taxonomy); err != nil {
		return err
	}
	slog.Info("Taxonomy seeded",
		"organisations", len(seed.Organisations),
		"focus_areas", len(seed.FocusAreas),
		"programmes", len(seed.Programmes),
		"strategies", len(seed.Strategies))

	if seed.Admin == nil {
		return nil
	}
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		slog.Warn("SEED_ADMIN_PASSWORD is empty - skipping admin user")
		return nil
	}

	users := service.NewUserService(repository.NewUserRepository(db), repository.NewSessionRepository(db), auth.NewService(&cfg.JWT))
	user, err := users.Create(ctx, service.CreateUserInput{
		FullName: seed.Admin.FullName,
		Username: seed.Admin.Username,
		Email:    seed.Admin.Email,
		Password: password,
		RoleID:   int(models.RoleAdmin),
	})
	if errors.Is(err, service.ErrConflict) {
		slog.Info("Admin user already exists", "username", seed.Admin.Username)
		return nil
	}
	if err != nil {
		return err
	}
	slog.Info("Admin user created", "id", user.ID, "username", user.Username)
	return nil
}
