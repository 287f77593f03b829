// internal/platform/di/shared/infra.go
package shared

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"cloud.google.com/go/storage"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	appcfg "storefront/internal/infra/config"
	"storefront/internal/infra/database"
	firestoreinfra "storefront/internal/infra/firestore"
)

// Infra is shared runtime infrastructure for DI.
// - owns external clients (Firestore/FirebaseAuth/GCS/SecretManager/Postgres)
// - owns nothing domain-specific
//
// IMPORTANT:
// Infra must NOT depend on mall routers, handlers, or queries.
type Infra struct {
	Config    *appcfg.Config
	ProjectID string

	// Clients (owned; Close-managed). Any of them may be nil depending on
	// the store driver and what the environment provides.
	Firestore     *firestore.Client
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	DB            *database.DB

	log *slog.Logger
}

// NewInfra initializes shared infra.
// The client the selected store driver needs is strict (return error).
// Firebase/Auth, GCS and Secret Manager are best-effort (warn + continue).
func NewInfra(ctx context.Context, cfg *appcfg.Config, logger *slog.Logger) (*Infra, error) {
	if cfg == nil {
		return nil, errors.New("shared.infra: config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	inf := &Infra{
		Config:    cfg,
		ProjectID: strings.TrimSpace(cfg.FirestoreProjectID),
		log:       logger.With("component", "shared.infra"),
	}

	// 1) Postgres (strict when selected)
	if cfg.StoreDriver == appcfg.DriverPostgres {
		db, err := database.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("shared.infra: postgres: %w", err)
		}
		inf.DB = db
	}

	if inf.ProjectID == "" {
		// memory/postgres without a GCP project: no cloud clients at all
		inf.log.Warn("no GCP project configured; firestore, gcs and firebase auth are disabled")
		return inf, nil
	}

	// 2) Secret Manager (best-effort) and credentials resolution
	clientOpts := inf.clientOptions(ctx)

	// 3) Firestore (strict when selected)
	if cfg.StoreDriver == appcfg.DriverFirestore {
		cw, err := firestoreinfra.NewClient(ctx, inf.ProjectID, cfg.FirestoreDatabaseID, clientOpts...)
		if err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: firestore (project=%s): %w", inf.ProjectID, err)
		}
		inf.Firestore = cw.Client
	}

	// 4) GCS (best-effort; only signed image URLs need it)
	if strings.TrimSpace(cfg.ImageBucket) != "" {
		gcsClient, err := storage.NewClient(ctx, clientOpts...)
		if err != nil {
			inf.log.Warn("storage.NewClient failed; image URLs fall back to public form", "err", err)
		} else {
			inf.GCS = gcsClient
			inf.log.Info("GCS storage client initialized", "bucket", cfg.ImageBucket)
		}
	}

	// 5) Firebase App/Auth (best-effort)
	{
		fbCfg := &firebase.Config{ProjectID: strings.TrimSpace(cfg.FirebaseProjectID)}
		if fbCfg.ProjectID == "" {
			fbCfg.ProjectID = inf.ProjectID
		}
		fbApp, err := firebase.NewApp(ctx, fbCfg, clientOpts...)
		if err != nil {
			inf.log.Warn("firebase app init failed", "err", err)
		} else {
			inf.FirebaseApp = fbApp
			authClient, err := fbApp.Auth(ctx)
			if err != nil {
				inf.log.Warn("firebase auth init failed", "err", err)
			} else {
				inf.FirebaseAuth = authClient
				inf.log.Info("Firebase Auth initialized", "project", fbCfg.ProjectID)
			}
		}
	}

	return inf, nil
}

// clientOptions resolves credentials: explicit file, then Secret Manager
// JSON, then Application Default Credentials.
func (i *Infra) clientOptions(ctx context.Context) []option.ClientOption {
	cfg := i.Config

	if credFile := cfg.CredentialsFile(); credFile != "" {
		i.log.Info("using credentials file for GCP clients", "file", filepath.Base(credFile))
		return []option.ClientOption{option.WithCredentialsFile(credFile)}
	}

	secret := strings.TrimSpace(cfg.FirestoreCredentialsSecret)
	if secret == "" {
		i.log.Info("using Application Default Credentials")
		return nil
	}

	sm, err := secretmanager.NewClient(ctx)
	if err != nil {
		i.log.Warn("secretmanager.NewClient failed; using ADC", "err", err)
		return nil
	}
	i.SecretManager = sm

	name := SecretVersionName(i.ProjectID, secret)
	res, err := sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		i.log.Warn("credentials secret not readable; using ADC", "secret", name, "err", err)
		return nil
	}
	if res.GetPayload() == nil || len(res.GetPayload().GetData()) == 0 {
		i.log.Warn("credentials secret is empty; using ADC", "secret", name)
		return nil
	}

	i.log.Info("using credentials JSON from Secret Manager", "secret", name)
	return []option.ClientOption{option.WithCredentialsJSON(res.GetPayload().GetData())}
}

// SecretVersionName expands a short secret id to a full version resource name.
//
//	"fs-creds"                              -> projects/<p>/secrets/fs-creds/versions/latest
//	"projects/x/secrets/fs-creds"           -> projects/x/secrets/fs-creds/versions/latest
//	"projects/x/secrets/fs-creds/versions/3" unchanged
func SecretVersionName(projectID, secret string) string {
	secret = strings.Trim(strings.TrimSpace(secret), "/")
	if !strings.HasPrefix(secret, "projects/") {
		secret = "projects/" + strings.TrimSpace(projectID) + "/secrets/" + secret
	}
	if !strings.Contains(secret, "/versions/") {
		secret += "/versions/latest"
	}
	return secret
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	var errs []error
	if i.Firestore != nil {
		errs = append(errs, i.Firestore.Close())
		i.Firestore = nil
	}
	if i.GCS != nil {
		errs = append(errs, i.GCS.Close())
		i.GCS = nil
	}
	if i.SecretManager != nil {
		errs = append(errs, i.SecretManager.Close())
		i.SecretManager = nil
	}
	if i.DB != nil {
		errs = append(errs, i.DB.Close())
		i.DB = nil
	}
	return errors.Join(errs...)
}
