package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/anvi-leather/api/internal/platform/config"
	"github.com/anvi-leather/api/internal/repositories"
	"github.com/anvi-leather/api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon. Concrete implementations
// are assembled via dependency injection in NewContainer.
type Services struct {
	Catalog   services.CatalogService
	Auth      services.AuthService
	Users     services.AdminUserService
	Inquiries services.InquiryService
	Uploads   services.UploadService
	System    services.SystemService
}

// Dependencies carries the infrastructure collaborators that cannot be derived
// from the repository registry alone.
type Dependencies struct {
	Tokens    services.SessionIssuer
	Publisher services.InquiryEventPublisher
	Signer    services.UploadSigner
	Logger    *zap.Logger
	Build     services.BuildInfo
}

// Container wires repositories, services, and background infrastructure for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Services     Services
}

// NewContainer constructs the runtime dependencies. Production wiring will provide real
// implementations, while tests can supply in-memory registries.
func NewContainer(ctx context.Context, cfg config.Config, reg repositories.Registry, deps Dependencies) (*Container, error) {
	if reg == nil {
		return nil, errors.New("repositories registry is required")
	}

	svc, err := buildServices(ctx, cfg, reg, deps)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       cfg,
		Repositories: reg,
		Services:     svc,
	}, nil
}

// Close releases resources such as repository clients, background workers, or caches.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildServices(_ context.Context, cfg config.Config, reg repositories.Registry, deps Dependencies) (Services, error) {
	var svc Services

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	catalogSvc, err := services.NewCatalogService(services.CatalogServiceDeps{
		Categories: reg.Categories(),
		Products:   reg.Products(),
		Inquiries:  reg.Inquiries(),
		Logger:     logger.Named("catalog"),
		Clock:      time.Now,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build catalog service: %w", err)
	}
	svc.Catalog = catalogSvc

	userSvc, err := services.NewAdminUserService(services.AdminUserServiceDeps{
		Users: reg.AdminUsers(),
		Clock: time.Now,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build admin user service: %w", err)
	}
	svc.Users = userSvc

	if deps.Tokens != nil {
		authSvc, err := services.NewAuthService(services.AuthServiceDeps{
			Users:  reg.AdminUsers(),
			Tokens: deps.Tokens,
			Logger: logger.Named("auth"),
			Clock:  time.Now,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build auth service: %w", err)
		}
		svc.Auth = authSvc
	}

	inquirySvc, err := services.NewInquiryService(services.InquiryServiceDeps{
		Inquiries: reg.Inquiries(),
		Products:  reg.Products(),
		Publisher: deps.Publisher,
		Logger:    logger.Named("inquiries"),
		Clock:     time.Now,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build inquiry service: %w", err)
	}
	svc.Inquiries = inquirySvc

	if deps.Signer != nil {
		uploadSvc, err := services.NewUploadService(services.UploadServiceDeps{
			Signer:        deps.Signer,
			Bucket:        cfg.Storage.UploadsBucket,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build upload service: %w", err)
		}
		svc.Uploads = uploadSvc
	}

	if healthRepo := reg.Health(); healthRepo != nil {
		systemSvc, err := services.NewSystemService(services.SystemServiceDeps{
			HealthRepository: healthRepo,
			Clock:            time.Now,
			Build:            deps.Build,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build system service: %w", err)
		}
		svc.System = systemSvc
	}

	return svc, nil
}
