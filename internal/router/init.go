package router

import (
	"github.com/VentixeEventManagement/AccountServiceProvider/internal/application"
	"github.com/VentixeEventManagement/AccountServiceProvider/internal/container"
	"github.com/VentixeEventManagement/AccountServiceProvider/internal/domain/repository"
	pginfra "github.com/VentixeEventManagement/AccountServiceProvider/internal/infrastructure/postgres"
	handlers "github.com/VentixeEventManagement/AccountServiceProvider/internal/interface/http"
	"github.com/VentixeEventManagement/AccountServiceProvider/internal/router/modules"
)

type AccountModuleDeps struct {
	Accounts repository.AccountRepository
	Roles    repository.RoleRepository
	Service  *application.Service
	Flow     *application.TokenFlow
	Handler  *handlers.AccountHandler
}

func buildAccountDeps() AccountModuleDeps {
	cfg := container.GetConfig()

	accounts := pginfra.NewAccountRepository(container.GetPGPool())
	roles := pginfra.NewRoleRepository(container.GetPGPool())
	indexer := application.NewSearchIndexer(container.GetES(), cfg.ESAccountsIndex, roles, container.GetLogger())

	service := application.NewService(
		accounts,
		roles,
		container.GetHasher(),
		container.GetLogger(),
		cfg.DefaultRole,
		cfg.MinPasswordLength,
		cfg.ConfirmEmailOnCreate,
		indexer,
	)

	flow := application.NewTokenFlow(
		accounts,
		container.GetTokenCodec(),
		container.GetHasher(),
		container.GetLogger(),
		container.GetRabbitPub(),
		cfg,
		indexer,
	)

	handler := handlers.NewAccountHandler(service, flow, container.GetLogger())

	return AccountModuleDeps{
		Accounts: accounts,
		Roles:    roles,
		Service:  service,
		Flow:     flow,
		Handler:  handler,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildAccountDeps()
	r.Add(modules.NewAccountModule(deps.Handler))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
