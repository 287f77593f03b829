// internal/platform/di/mall/container.go
package mall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	// outbound
	"storefront/internal/adapters/out/docstore"
	"storefront/internal/adapters/out/firebaseauth"
	outfs "storefront/internal/adapters/out/firestore"
	gcso "storefront/internal/adapters/out/gcs"
	"storefront/internal/adapters/out/mail"
	"storefront/internal/adapters/out/memory"
	outpg "storefront/internal/adapters/out/postgres"

	// application
	mallquery "storefront/internal/application/query/mall"
	usecase "storefront/internal/application/usecase"

	"storefront/internal/domain/document"
	udom "storefront/internal/domain/user"
	appcfg "storefront/internal/infra/config"
	shared "storefront/internal/platform/di/shared"
)

// Container is the mall DI container.
// Pure DI: build deps only. No routing here.
type Container struct {
	Infra *shared.Infra
	Log   *slog.Logger

	// Store is the document store every repository and query reads through.
	Store document.Store

	// Queries (mall-facing)
	CatalogQ *mallquery.CatalogQuery

	// Usecases (mall-facing)
	CartUC *usecase.CartUsecase
	UserUC *usecase.UserUsecase
}

func NewContainer(ctx context.Context, infra *shared.Infra, logger *slog.Logger) (*Container, error) {
	if infra == nil {
		return nil, errors.New("di.mall: shared infra is nil")
	}
	// IMPORTANT: Config is required (driver, collections, timezone)
	cfg := infra.Config
	if cfg == nil {
		return nil, errors.New("di.mall: shared infra config is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{Infra: infra, Log: logger}

	// --------------------------------------------------------
	// Document store
	// --------------------------------------------------------
	store, err := newStore(ctx, infra, logger)
	if err != nil {
		return nil, err
	}
	c.Store = store

	// --------------------------------------------------------
	// Catalog
	// --------------------------------------------------------
	loc, err := time.LoadLocation(cfg.CatalogTimezone)
	if err != nil {
		return nil, fmt.Errorf("di.mall: catalog timezone: %w", err)
	}

	catalog := mallquery.NewCatalogQuery(store, mallquery.Collections{
		Products:        cfg.ProductsCollection,
		Categories:      cfg.CategoriesCollection,
		TopCategories:   cfg.TopCategoriesCollection,
		ProductOfTheDay: cfg.ProductOfTheDayCollection,
	}, logger)
	catalog.Location = loc
	if bucket := strings.TrimSpace(cfg.ImageBucket); bucket != "" {
		// GCS client may be nil: the resolver then emits public URLs
		catalog.Images = gcso.NewImageURLResolverGCS(infra.GCS, bucket, cfg.ImageSignedURLTTL, "")
	}
	c.CatalogQ = catalog

	// --------------------------------------------------------
	// Cart
	// --------------------------------------------------------
	cartRepo := docstore.NewCartRepository(store, cfg.CartsCollection)
	c.CartUC = usecase.NewCartUsecase(cartRepo, catalog)

	// --------------------------------------------------------
	// Users / sign-up
	// --------------------------------------------------------
	userRepo := docstore.NewUserRepository(store, cfg.UsersCollection)

	var accounts udom.AccountCreator
	if infra.FirebaseAuth != nil {
		accounts = firebaseauth.NewAccountCreatorFB(infra.FirebaseAuth)
	} else {
		logger.Warn("firebase auth unavailable; sign-up is disabled", "component", "di.mall")
	}

	var mailer usecase.WelcomeMailer
	if strings.TrimSpace(cfg.SendGridAPIKey) != "" && strings.TrimSpace(cfg.SendGridFrom) != "" {
		client := mail.NewSendGridClient(cfg.SendGridAPIKey, cfg.StoreName, logger)
		mailer = mail.NewWelcomeMailer(client, cfg.SendGridFrom, cfg.StoreName)
	} else {
		logger.Info("SENDGRID_API_KEY/SENDGRID_FROM not set; welcome mail disabled", "component", "di.mall")
	}

	c.UserUC = usecase.NewUserUsecase(userRepo, accounts, mailer, logger)

	return c, nil
}

// newStore selects the document store backend from STORE_DRIVER.
func newStore(ctx context.Context, infra *shared.Infra, logger *slog.Logger) (document.Store, error) {
	switch infra.Config.StoreDriver {
	case appcfg.DriverFirestore:
		if infra.Firestore == nil {
			return nil, errors.New("di.mall: infra.Firestore is nil")
		}
		return outfs.NewDocumentStoreFS(infra.Firestore), nil

	case appcfg.DriverPostgres:
		if infra.DB == nil || infra.DB.Client == nil {
			return nil, errors.New("di.mall: infra.DB is nil")
		}
		pg := outpg.NewDocumentStorePG(infra.DB.Client)
		if err := pg.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("di.mall: migrate documents table: %w", err)
		}
		return pg, nil

	case appcfg.DriverMemory:
		logger.Warn("using in-memory document store; data is lost on restart", "component", "di.mall")
		return memory.NewDocumentStore(), nil
	}
	return nil, fmt.Errorf("di.mall: unknown store driver %q", infra.Config.StoreDriver)
}
