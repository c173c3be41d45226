package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/kickerhub/foosball-api/docs"
	v1 "github.com/kickerhub/foosball-api/internal/api/handler/v1"
	"github.com/kickerhub/foosball-api/internal/api/middleware"
	"github.com/kickerhub/foosball-api/internal/config"
	"github.com/kickerhub/foosball-api/internal/repository"
	"github.com/kickerhub/foosball-api/internal/repository/dao"
	"github.com/kickerhub/foosball-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	userHandler := s.initUserHandler(db)
	gameHandler := s.initGameHandler(db)
	s.MountHandlers(userHandler, gameHandler)

	return s
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initGameHandler(db *gorm.DB) *v1.GameHandler {
	gameDAO := dao.NewGameDAO(db)
	repo := repository.NewGameRepository(gameDAO)
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	svc := service.NewGameService(repo, userRepo)
	handler := v1.NewGameHandler(svc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(userHandler *v1.UserHandler, gameHandler *v1.GameHandler) {
	users := s.Router.Group("/users")
	{
		users.GET("", userHandler.HandleListUsers)
		users.POST("", userHandler.HandleCreateUser)
		users.PUT("/:userID", userHandler.HandleUpdateUser)
		users.DELETE("/:userID", userHandler.HandleDeleteUser)
	}

	games := s.Router.Group("/games")
	{
		games.GET("", gameHandler.HandleListGames)
		games.POST("", gameHandler.HandleCreateGame)
		games.GET("/:gameID", gameHandler.HandleGetGame)
		games.PUT("/:gameID", gameHandler.HandleUpdateGame)
		games.DELETE("/:gameID", gameHandler.HandleDeleteGame)
		games.GET("/:gameID/players", gameHandler.HandleGetPlayers)
		games.GET("/:gameID/scores", gameHandler.HandleGetScores)
		games.GET("/:gameID/teams", gameHandler.HandleGetTeams)
		games.POST("/:gameID/score", gameHandler.HandleSubmitScore)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.Static("/static", "./static")

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Title = "Foosball API"
	docs.SwaggerInfo.Description = "CRUD API for recording foosball games."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
