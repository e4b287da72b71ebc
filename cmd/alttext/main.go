package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dfryer1193/alttext/internal/auth"
	"github.com/dfryer1193/alttext/internal/config"
	"github.com/dfryer1193/alttext/internal/logging"
	"github.com/dfryer1193/alttext/media/application"
	"github.com/dfryer1193/alttext/media/domain"
	"github.com/dfryer1193/alttext/media/persistence"
	"github.com/dfryer1193/alttext/shared/db/sqlite"
	"github.com/rs/zerolog/log"
)

const usage = `usage: alttext [-config file] <command> [args]

commands:
  run -token T          run one alt text update pass
  import <dir>          register the images under dir as attachments
  user add <name> <role>
  nonce <name>          print an update token for name
  title <file>...       print the title generated for each file name
`

func main() {
	fs := flag.NewFlagSet("alttext", flag.ExitOnError)
	configPath := fs.String("config", "", "optional config file (json, yaml or toml)")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogPretty); err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logging")
	}

	if err := run(context.Background(), cfg, fs.Args(), os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	cmd, args := args[0], args[1:]

	if cmd == "title" {
		for _, file := range args {
			fmt.Fprintf(out, "%s\t%s\n", file, application.GenerateTitleFromFilename(file))
		}
		return nil
	}

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: cfg.DBPath})
	if err := database.Connect(); err != nil {
		return fmt.Errorf("failed to connect to database %s: %w", cfg.DBPath, err)
	}
	defer database.Close()

	store := persistence.NewMediaStore(database.DB())
	users := persistence.NewUserRepository(database.DB())

	switch cmd {
	case "import":
		if len(args) != 1 {
			return fmt.Errorf("import takes exactly one directory")
		}
		result, err := application.NewImporter(store).ImportDir(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "imported %d, skipped %d, size variants %d\n", result.Imported, result.Skipped, result.Variants)
		return nil

	case "user":
		if len(args) != 3 || args[0] != "add" {
			return fmt.Errorf("usage: user add <name> <role>")
		}
		role, err := domain.ParseRole(args[2])
		if err != nil {
			return err
		}
		return users.UpsertUser(ctx, &domain.User{Name: args[1], Role: role})

	case "nonce", "run":
		if err := cfg.RequireSecret(); err != nil {
			return err
		}
		authorizer, err := auth.NewNonceAuthorizer(cfg.NonceSecret, users)
		if err != nil {
			return err
		}

		if cmd == "nonce" {
			if len(args) != 1 {
				return fmt.Errorf("nonce takes exactly one user name")
			}
			token, err := authorizer.Issue(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, token)
			return nil
		}

		runFlags := flag.NewFlagSet("run", flag.ContinueOnError)
		token := runFlags.String("token", os.Getenv("ALTTEXT_TOKEN"), "update token (default $ALTTEXT_TOKEN)")
		if err := runFlags.Parse(args); err != nil {
			return err
		}

		summary, err := application.NewAltTextUpdater(store, authorizer).RunUpdatePass(ctx, *token)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Total images scanned: %d\nImages updated: %d\nImages skipped: %d\nSize variants: %d\nMetadata issues: %d\nFailed: %d\n",
			summary.Total, summary.Updated, summary.Skipped, summary.TotalSizesProcessed, summary.MetadataIssues, summary.Failed)
		return nil
	}

	return fmt.Errorf("unknown command %q", cmd)
}
