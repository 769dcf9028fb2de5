// services/client_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/brandsight/brandsight-workflows/internal/apperrors"
	"github.com/brandsight/brandsight-workflows/internal/models"
)

const defaultIndustry = "Gambling & Cryptocurrency"

type clientService struct {
	repos *RepositoryManager
}

func NewClientService(repos *RepositoryManager) ClientService {
	return &clientService{repos: repos}
}

func (s *clientService) GetOrCreateClient(ctx context.Context, name string) (*models.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "client name is required")
	}

	client, created, err := s.repos.ClientRepo.GetOrCreateByName(ctx, name, defaultIndustry)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve client: %w", err)
	}
	if created {
		fmt.Printf("[GetOrCreateClient] Created client %q\n", name)
	}
	return client, nil
}

func (s *clientService) ListActiveClients(ctx context.Context) ([]*models.Client, error) {
	clients, err := s.repos.ClientRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}
