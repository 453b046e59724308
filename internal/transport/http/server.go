package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appsvc "foodgram/internal/app"
	"foodgram/internal/bootstrap"
	"foodgram/internal/logging"
	"foodgram/internal/repository"
	"foodgram/internal/transport/http/handler"
	"foodgram/internal/transport/http/middleware"
	"foodgram/internal/transport/http/response"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	if err := response.RegisterValidators(); err != nil {
		logging.Error().Err(err).Msg("register validators failed")
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(), middleware.Metrics(), gin.Recovery())
	router.Use(cors.New(corsConfig(app.Config.HTTP.CORSOrigins)))

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if app.Config.IsDev() {
		pprof.Register(router)
	}

	db := app.DB
	userRepo := repository.NewUserRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	activity := appsvc.NewActivityLog(app.Events, repository.NewActivityRepository(db))

	authService := appsvc.NewAuthService(
		userRepo,
		app.Tokens,
		app.Images,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	userService := appsvc.NewUserService(userRepo, subRepo, recipeRepo, app.Images, activity)
	recipeService := appsvc.NewRecipeService(
		recipeRepo,
		repository.NewFavoriteRepository(db),
		repository.NewShoppingCartRepository(db),
		subRepo,
		appsvc.NewRecipeValidator(ingredientRepo, tagRepo),
		app.Images,
		activity,
		app.Config.App.PublicURL,
	)
	catalogService := appsvc.NewCatalogService(tagRepo, ingredientRepo)

	pageSize := app.Config.HTTP.DefaultPageSize
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, pageSize)
	recipeHandler := handler.NewRecipeHandler(recipeService, pageSize)
	catalogHandler := handler.NewCatalogHandler(catalogService)

	auth := middleware.NewAuth(authService)
	limiter := middleware.NewRateLimiter(app.Config.HTTP.AuthRatePerMinute)

	router.GET("/s/:code", recipeHandler.ResolveShortLink)

	api := router.Group("/api")

	tokens := api.Group("/auth/token")
	tokens.POST("/login/", limiter.Middleware(), authHandler.Login)
	tokens.POST("/logout/", auth.Required(), authHandler.Logout)

	users := api.Group("/users")
	users.POST("/", limiter.Middleware(), authHandler.Register)
	users.GET("/", auth.Optional(), userHandler.List)
	users.GET("/me/", auth.Required(), userHandler.Me)
	users.DELETE("/me/", auth.Required(), authHandler.DeleteAccount)
	users.PUT("/me/avatar/", auth.Required(), userHandler.SetAvatar)
	users.DELETE("/me/avatar/", auth.Required(), userHandler.DeleteAvatar)
	users.GET("/me/activity/", auth.Required(), userHandler.Activity)
	users.POST("/set_password/", auth.Required(), authHandler.SetPassword)
	users.GET("/subscriptions/", auth.Required(), userHandler.Subscriptions)
	users.GET("/:id/", auth.Optional(), userHandler.Get)
	users.POST("/:id/subscribe/", auth.Required(), userHandler.Subscribe)
	users.DELETE("/:id/subscribe/", auth.Required(), userHandler.Unsubscribe)

	api.GET("/tags/", catalogHandler.ListTags)
	api.GET("/tags/:id/", catalogHandler.GetTag)
	api.GET("/ingredients/", catalogHandler.ListIngredients)
	api.GET("/ingredients/:id/", catalogHandler.GetIngredient)

	recipes := api.Group("/recipes")
	recipes.GET("/", auth.Optional(), recipeHandler.List)
	recipes.POST("/", auth.Required(), recipeHandler.Create)
	recipes.GET("/download_shopping_cart/", auth.Required(), recipeHandler.DownloadShoppingCart)
	recipes.GET("/:id/", auth.Optional(), recipeHandler.Get)
	recipes.PUT("/:id/", auth.Required(), recipeHandler.Update)
	recipes.PATCH("/:id/", auth.Required(), recipeHandler.Update)
	recipes.DELETE("/:id/", auth.Required(), recipeHandler.Delete)
	recipes.GET("/:id/get-link/", recipeHandler.GetLink)
	recipes.POST("/:id/favorite/", auth.Required(), recipeHandler.AddFavorite)
	recipes.DELETE("/:id/favorite/", auth.Required(), recipeHandler.RemoveFavorite)
	recipes.POST("/:id/shopping_cart/", auth.Required(), recipeHandler.AddToCart)
	recipes.DELETE("/:id/shopping_cart/", auth.Required(), recipeHandler.RemoveFromCart)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cfg
}
