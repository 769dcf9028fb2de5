// internal/repositories/postgresql/client_repo.go
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/brandsight/brandsight-workflows/internal/models"
	"github.com/brandsight/brandsight-workflows/internal/repositories"
)

type clientRepo struct {
	db *sqlx.DB
}

func NewClientRepo(db *sqlx.DB) repositories.ClientRepository {
	return &clientRepo{db: db}
}

func (r *clientRepo) Create(ctx context.Context, client *models.Client) error {
	if client.ClientID == uuid.Nil {
		client.ClientID = uuid.New()
	}
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO clients (client_id, name, industry, website, description, active, created_at, updated_at)
		VALUES (:client_id, :name, :industry, :website, :description, :active, :created_at, :updated_at)`,
		client)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (r *clientRepo) GetByID(ctx context.Context, clientID uuid.UUID) (*models.Client, error) {
	var client models.Client
	err := r.db.GetContext(ctx, &client,
		`SELECT * FROM clients WHERE client_id = $1`, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get client %s: %w", clientID, err)
	}
	return &client, nil
}

func (r *clientRepo) GetByName(ctx context.Context, name string) (*models.Client, error) {
	var client models.Client
	err := r.db.GetContext(ctx, &client,
		`SELECT * FROM clients WHERE name = $1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get client by name %q: %w", name, err)
	}
	return &client, nil
}

func (r *clientRepo) GetOrCreateByName(ctx context.Context, name, industry string) (*models.Client, bool, error) {
	existing, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	client := &models.Client{
		ClientID: uuid.New(),
		Name:     name,
		Industry: industry,
		Active:   true,
	}
	if err := r.Create(ctx, client); err != nil {
		// Lost a create race; re-read.
		if again, readErr := r.GetByName(ctx, name); readErr == nil && again != nil {
			return again, false, nil
		}
		return nil, false, err
	}
	return client, true, nil
}

func (r *clientRepo) ListActive(ctx context.Context) ([]*models.Client, error) {
	var clients []*models.Client
	err := r.db.SelectContext(ctx, &clients,
		`SELECT * FROM clients WHERE active = true ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list active clients: %w", err)
	}
	return clients, nil
}
