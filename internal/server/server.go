package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/shinyyama/readinglist-backend/internal/config"
	"github.com/shinyyama/readinglist-backend/internal/handler"
	appmw "github.com/shinyyama/readinglist-backend/internal/middleware"
	"github.com/shinyyama/readinglist-backend/internal/repository"
	"github.com/shinyyama/readinglist-backend/internal/service"
	"github.com/shinyyama/readinglist-backend/internal/validation"
)

type Server struct {
	e     *echo.Echo
	store repository.Transactor
	log   *zap.Logger
	sha   string
	build string
}

// Options carries the build metadata reported by GET / and an optional clock override.
type Options struct {
	GitSHA    string
	BuildTime string
	Clock     service.Clock
}

func New(store repository.Transactor, cfg *config.Config, log *zap.Logger, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.Use(middleware.Recover())
	e.Use(appmw.RequestID())
	e.Use(appmw.RequestLogger(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Content-Type", echo.HeaderXRequestID},
		ExposeHeaders: []string{echo.HeaderXRequestID},
		AllowOriginFunc: func(origin string) (bool, error) {
			u, err := url.Parse(origin)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				return false, nil
			}
			host := strings.ToLower(u.Hostname())
			return host == "localhost" || host == "127.0.0.1", nil
		},
	}))

	itemSvc := service.NewItemService(store, service.NewTagAssociator(opts.Clock, cfg.TouchOnNoopTagChange), opts.Clock, log)
	itemHandler := handler.NewItemHandler(itemSvc, log)

	tagSvc := service.NewTagService(store, log)
	tagHandler := handler.NewTagHandler(tagSvc, log)

	userSvc := service.NewUserService(store, opts.Clock, log)
	userHandler := handler.NewUserHandler(userSvc, log)

	s := &Server{e: e, store: store, log: log, sha: opts.GitSHA, build: opts.BuildTime}

	e.GET("/", s.info)
	e.GET("/health", s.health)

	e.POST("/users", userHandler.Create)
	e.GET("/users/:id", userHandler.Get)
	e.DELETE("/users/:id", userHandler.Delete)

	e.POST("/items", itemHandler.Create)
	e.GET("/items", itemHandler.List)
	e.GET("/items/:id", itemHandler.Get)
	e.PATCH("/items/:id", itemHandler.Update)
	e.DELETE("/items/:id", itemHandler.Delete)
	e.POST("/items/:id/tags", itemHandler.AttachTags)
	e.DELETE("/items/:id/tags", itemHandler.DetachTags)

	e.POST("/tags", tagHandler.Create)
	e.GET("/tags", tagHandler.List)
	e.GET("/tags/:id", tagHandler.Get)
	e.DELETE("/tags/:id", tagHandler.Delete)

	return s
}

func (s *Server) info(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"name":       "reading-list",
		"git_sha":    s.sha,
		"build_time": s.build,
	})
}

func (s *Server) health(c echo.Context) error {
	if err := s.store.Ping(c.Request().Context()); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, handler.NewErrorResponse("TRANSIENT", "database unavailable"))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
