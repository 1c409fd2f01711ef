package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/geocoder89/recipebox/internal/config"
	"github.com/geocoder89/recipebox/internal/domain/user"
)

// SuperuserCreator is the slice of accounts.CredentialStore the seed needs.
type SuperuserCreator interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	CreateSuperuser(ctx context.Context, email, password, name string) (user.User, error)
}

// EnsureSuperuser creates the bootstrap superuser from ADMIN_EMAIL /
// ADMIN_PASSWORD when it does not exist yet. It is a no-op when either is
// unset or the account is already there.
func EnsureSuperuser(ctx context.Context, creds SuperuserCreator, cfg config.Config, log *slog.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := creds.GetByEmail(ctx, cfg.AdminEmail)

	if err == nil {
		return nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	u, err := creds.CreateSuperuser(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName)

	if err != nil {
		// lost a race with another replica
		if errors.Is(err, user.ErrEmailTaken) {
			return nil
		}
		return err
	}

	log.Info("superuser created", "user_id", u.ID, "email", u.Email)
	return nil
}
