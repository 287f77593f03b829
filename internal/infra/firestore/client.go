// internal/infra/firestore/client.go
package firestoreinfra

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ClientWrapper wraps the Firestore client together with its settings.
type ClientWrapper struct {
	Client     *firestore.Client
	ProjectID  string
	DatabaseID string
}

// NewClient initializes a Firestore client for projectID/databaseID.
// With no options Application Default Credentials are used.
func NewClient(ctx context.Context, projectID, databaseID string, opts ...option.ClientOption) (*ClientWrapper, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("firestoreinfra: projectID is empty")
	}
	databaseID = strings.TrimSpace(databaseID)
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	slog.Info("firestore connected", "project", projectID, "database", databaseID)
	return &ClientWrapper{Client: client, ProjectID: projectID, DatabaseID: databaseID}, nil
}

// Ping issues a cheap read since Firestore has no ping API.
func (cw *ClientWrapper) Ping(ctx context.Context) error {
	if cw == nil || cw.Client == nil {
		return fmt.Errorf("firestore client is nil")
	}
	it := cw.Client.Collections(ctx)
	if _, err := it.Next(); err != nil && err != iterator.Done {
		return fmt.Errorf("firestore ping failed: %w", err)
	}
	return nil
}

func (cw *ClientWrapper) Close() error {
	if cw == nil || cw.Client == nil {
		return nil
	}
	return cw.Client.Close()
}
