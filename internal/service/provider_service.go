package service

import (
	"context"
	"fmt"

	apperrors "notewise/backend/internal/errors"
	"notewise/backend/internal/llm"
)

// ProviderService exposes the provider catalog and the one-shot note
// analysis operation.
type ProviderService struct {
	registry RegistryFactory
	settings *SettingsService
}

func NewProviderService(registry RegistryFactory, settings *SettingsService) *ProviderService {
	return &ProviderService{registry: registry, settings: settings}
}

// List returns the catalog of configured providers and their models.
func (s *ProviderService) List(ctx context.Context) ([]llm.ProviderDescriptor, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load settings: %w", err)
	}
	return s.registry(settings).List(), nil
}

// Analyze runs a single-note analysis on the configured provider.
func (s *ProviderService) Analyze(ctx context.Context, content string, kind llm.AnalysisKind) (*llm.Analysis, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content cannot be empty", apperrors.ErrValidation)
	}
	switch kind {
	case llm.AnalysisSummary, llm.AnalysisTopics, llm.AnalysisTags, llm.AnalysisConnections, llm.AnalysisFull:
	default:
		return nil, fmt.Errorf("%w: unknown analysis kind %q", apperrors.ErrValidation, kind)
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load settings: %w", err)
	}
	provider, err := s.registry(settings).Get(settings.Provider)
	if err != nil {
		return nil, err
	}
	descriptor := provider.Describe()
	if descriptor.RequiresAPIKey && settings.APIKey == "" {
		return nil, apperrors.NewAIError(apperrors.CodeConfigurationMissing, descriptor.ID, "backend requires an API key that is not configured")
	}

	return provider.Analyze(ctx, content, kind)
}
