package handlers

import (
	"github.com/jmoiron/sqlx"

	"snackstack/internal/apiclient"
	"snackstack/internal/config"
	"snackstack/internal/nudge"
	"snackstack/internal/repos"
	"snackstack/internal/services"
)

type Deps struct {
	// ServiceToken authorizes server-to-server calls on the user contract.
	ServiceToken string

	Auth   *services.AuthService
	Engine *services.EngineService

	AuthHandler      *AuthHandler
	UserHandler      *UserHandler
	CategoryHandler  *CategoryHandler
	ProductHandler   *ProductHandler
	SearchHandler    *SearchHandler
	InventoryHandler *InventoryHandler
	CartHandler      *CartHandler
	NudgeHandler     *NudgeHandler
	AdminHandler     *AdminHandler
}

// NewDeps wires repositories, services and handlers over one database.
// With cfg.BackendURL set, order history and nudge telemetry go through the
// remote user contract; otherwise the engine reads and writes locally.
func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	packRepo := repos.NewPackRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	userRepo := repos.NewUserRepo(db)
	stateRepo := repos.NewStateRepo(db)
	nudgeRepo := repos.NewNudgeRepo(db)

	authSvc := services.NewAuthService(userRepo)
	catalogSvc := services.NewCatalogService(catRepo, prodRepo, packRepo)
	invSvc := services.NewInventoryService(invRepo)
	cartSvc := services.NewCartService(cartRepo)
	orderSvc := services.NewOrderService(orderRepo)
	seenSvc := services.NewSeenService(stateRepo, cfg.ReplenishmentCooldown)
	nudgeSvc := services.NewNudgeService(nudgeRepo)

	var history nudge.OrderHistory = services.LocalHistory{Svc: orderSvc}
	var telemetry nudge.Telemetry = nudgeSvc
	if cfg.BackendURL != "" {
		client := apiclient.New(cfg.BackendURL)
		client.Token = cfg.ServiceToken
		history, telemetry = client, client
	}

	engine := services.NewEngineService(cfg.Nudge, catalogSvc, cartSvc, seenSvc, history)
	engine.Telemetry = telemetry
	engine.Journal = nudgeSvc
	if cfg.LoginTimeout > 0 {
		engine.LoginTimeout = cfg.LoginTimeout
	}
	if cfg.SessionTTL > 0 {
		engine.SessionTTL = cfg.SessionTTL
	}

	return &Deps{
		ServiceToken:     cfg.ServiceToken,
		Auth:             authSvc,
		Engine:           engine,
		AuthHandler:      &AuthHandler{Auth: authSvc, Engine: engine},
		UserHandler:      &UserHandler{Auth: authSvc, Orders: orderSvc, Nudges: nudgeSvc},
		CategoryHandler:  &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		SearchHandler:    &SearchHandler{Catalog: catalogSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		CartHandler:      &CartHandler{Cart: cartSvc, Engine: engine},
		NudgeHandler:     &NudgeHandler{Engine: engine},
		AdminHandler:     &AdminHandler{Nudges: nudgeSvc, Inv: invSvc},
	}
}
