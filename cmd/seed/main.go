package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shinyyama/readinglist-backend/internal/config"
	"github.com/shinyyama/readinglist-backend/internal/db"
	"github.com/shinyyama/readinglist-backend/internal/logger"
	"github.com/shinyyama/readinglist-backend/internal/model"
	"github.com/shinyyama/readinglist-backend/internal/repository"
	"github.com/shinyyama/readinglist-backend/internal/service"
	"gorm.io/gorm"
)

func main() {
	var (
		force   bool
		envFile string
	)

	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Load sample users, tags and reading items",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("load env file: %w", err)
				}
			} else {
				_ = godotenv.Load()
			}
			return run(cmd.Context(), force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "drop existing data before seeding")
	cmd.Flags().StringVar(&envFile, "env-file", "", "path to a .env file")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, force bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	zl, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if force {
		if err := gdb.Migrator().DropTable(model.All()...); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
	}
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	sum, err := seed(ctx, gdb, zl, time.Now().UTC().Truncate(time.Second))
	if err != nil {
		return err
	}
	zl.Info("seed complete",
		zap.Int64("users", sum.Users),
		zap.Int("tags", sum.Tags),
		zap.Int64("items", sum.Items),
	)
	return nil
}

type summary struct {
	Users int64
	Tags  int
	Items int64
}

var errAlreadySeeded = errors.New("database already contains users; rerun with --force to reset it")

// seed creates the sample data through the services so every write goes through
// the same validation and tag ownership rules as the API.
func seed(ctx context.Context, gdb *gorm.DB, zl *zap.Logger, now time.Time) (*summary, error) {
	store := repository.NewStore(gdb)
	n, err := store.Users().Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, errAlreadySeeded
	}

	// Each write is stamped with whatever the seed data says it happened at.
	var at time.Time
	clock := func() time.Time { return at }

	users := service.NewUserService(store, clock, zl)
	tags := service.NewTagService(store, zl)
	items := service.NewItemService(store, service.NewTagAssociator(clock, true), clock, zl)

	sum := &summary{}
	for _, su := range buildSeedUsers() {
		at = now.Add(-su.Age)
		u, err := users.Create(ctx, service.CreateUserInput{Email: su.Email, DisplayName: su.DisplayName})
		if err != nil {
			return nil, fmt.Errorf("create user %s: %w", su.Email, err)
		}

		tagIDs := make(map[string]uint64, len(su.Tags))
		for _, name := range su.Tags {
			t, err := tags.Create(ctx, u.ID, name)
			if err != nil {
				return nil, fmt.Errorf("create tag %s: %w", name, err)
			}
			tagIDs[name] = t.ID
			sum.Tags++
		}

		for _, si := range su.Items {
			in := service.CreateItemInput{
				UserID:   u.ID,
				Title:    si.Title,
				Kind:     si.Kind,
				Status:   si.Status,
				Priority: si.Priority,
			}
			if si.Notes != "" {
				notes := si.Notes
				in.Notes = &notes
			}
			for _, name := range si.Tags {
				in.TagIDs = append(in.TagIDs, tagIDs[name])
			}

			at = now.Add(-si.Created)
			it, err := items.Create(ctx, in)
			if err != nil {
				return nil, fmt.Errorf("create item %q: %w", si.Title, err)
			}
			if si.Updated != si.Created {
				at = now.Add(-si.Updated)
				if _, err := items.Update(ctx, it.ID, model.ItemPatch{}); err != nil {
					return nil, fmt.Errorf("touch item %q: %w", si.Title, err)
				}
			}
		}
	}

	if sum.Users, err = store.Users().Count(ctx); err != nil {
		return nil, err
	}
	if sum.Items, err = store.Items().Count(ctx); err != nil {
		return nil, err
	}
	return sum, nil
}
