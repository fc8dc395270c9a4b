package main

import (
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/quickpix/quickpix/internal/accountdelivery"
	"github.com/quickpix/quickpix/internal/accountrepo"
	"github.com/quickpix/quickpix/internal/accountservice"
	"github.com/quickpix/quickpix/internal/middleware"
	"github.com/quickpix/quickpix/internal/transactionrepo"
	"github.com/quickpix/quickpix/internal/transferdelivery"
	"github.com/quickpix/quickpix/internal/transferservice"
	"github.com/quickpix/quickpix/pkg/configpkg"
	"github.com/quickpix/quickpix/pkg/dbpkg"
	"github.com/quickpix/quickpix/pkg/tokenpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	conn, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close()

	server, err := createServer(conn, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	if err := server.Run(config.ServerAddress); err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}

func createServer(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*gin.Engine, error) {
	accountRepo := accountrepo.NewRepoPGS(conn)
	transactionRepo := transactionrepo.NewRepoPGS(conn)

	tokenMaker, err := tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	accountService := accountservice.New(accountRepo, config.OpeningBalance)
	transferService := transferservice.New(transactionRepo, accountService)

	accountHandler := accountdelivery.NewHandler(accountService, tokenMaker, config.AccessTokenDuration)
	transferHandler := transferdelivery.NewHandler(transferService)

	gin.SetMode(gin.ReleaseMode)
	server := gin.New()

	server.Use(middleware.RequestLogger(logger))
	server.Use(gin.Recovery())

	server.POST("/clients", accountHandler.Create)
	server.POST("/clients/login", accountHandler.Login)

	authRoutes := server.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.GET("/clients/me", accountHandler.Me)
	authRoutes.PATCH("/clients/me", accountHandler.Update)
	authRoutes.GET("/clients", accountHandler.List)
	authRoutes.DELETE("/clients/:id", accountHandler.Delete)
	authRoutes.GET("/recipients", accountHandler.Search)

	authRoutes.POST("/transfers", transferHandler.Create)
	authRoutes.GET("/balance", transferHandler.GetBalance)
	authRoutes.GET("/transactions", transferHandler.GetHistory)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("taxid", accountdelivery.ValidTaxID); err != nil {
			return nil, errors.New("cannot register taxid validator")
		}
	}

	return server, nil
}
