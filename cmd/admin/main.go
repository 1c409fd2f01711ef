package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/geocoder89/recipebox/internal/accounts"
	"github.com/geocoder89/recipebox/internal/config"
	"github.com/geocoder89/recipebox/internal/db"
	"github.com/geocoder89/recipebox/internal/domain/user"
	"github.com/geocoder89/recipebox/internal/repo/postgres"
	"github.com/geocoder89/recipebox/internal/repo/redisstore"
	"github.com/geocoder89/recipebox/internal/security"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:           "recipebox-admin",
		Short:         "Operator commands for the recipebox database",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) error {
				if err := db.Migrate(ctx, pool); err != nil {
					return err
				}
				v, err := db.MigrationVersion(ctx, pool)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", v)
				return nil
			})
		},
	}

	var createSuperuserCmd = &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create a staff superuser",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")

			password, err := promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			return withPool(cmd.Context(), func(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) error {
				u, err := credentialStore(cfg, pool).CreateSuperuser(ctx, email, password, name)
				if err != nil {
					if errors.Is(err, user.ErrEmailTaken) {
						return fmt.Errorf("a user with email %s already exists", email)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "superuser %s created (%s)\n", u.Email, u.ID)
				return nil
			})
		},
	}
	createSuperuserCmd.Flags().String("email", "", "email address of the new superuser")
	createSuperuserCmd.Flags().String("name", "", "display name")
	_ = createSuperuserCmd.MarkFlagRequired("email")

	var deactivateCmd = &cobra.Command{
		Use:   "deactivate <email>",
		Short: "Deactivate a user and revoke their token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) error {
				creds := credentialStore(cfg, pool)

				u, err := creds.GetByEmail(ctx, args[0])
				if err != nil {
					return err
				}

				off := false
				if _, err := creds.UpdateUser(ctx, u, user.Update{Active: &off}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user %s deactivated\n", u.Email)
				return nil
			})
		},
	}

	rootCmd.AddCommand(migrateCmd, createSuperuserCmd, deactivateCmd)
	return rootCmd
}

func withPool(parent context.Context, fn func(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) error) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg := config.Load()

	pool, err := db.NewPool(cfg.DBURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	return fn(ctx, cfg, pool)
}

// credentialStore revokes tokens in whichever store the API is configured with.
func credentialStore(cfg config.Config, pool *pgxpool.Pool) *accounts.CredentialStore {
	var tokens accounts.TokenRepository = postgres.NewTokensRepo(pool, nil)
	if cfg.TokenStore == config.TokenStoreRedis {
		tokens = redisstore.NewTokensRepo(redisstore.NewClient(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}))
	}

	return accounts.NewCredentialStore(postgres.NewUsersRepo(pool, nil), security.NewHasher(0), tokens)
}

// promptPassword reads the password twice without echo when stdin is a
// terminal, and a single line otherwise.
func promptPassword(in io.Reader, out io.Writer) (string, error) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(out, "Password: ")
	first, err := readPassword(int(f.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}

	fmt.Fprint(out, "Password (again): ")
	second, err := readPassword(int(f.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	if len(first) < 5 {
		return "", errors.New("password must be at least 5 characters")
	}
	return string(first), nil
}
