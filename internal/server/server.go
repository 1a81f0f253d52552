package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe_site/internal/app"
)

type Options struct {
	// SiteDir is the built site served for preview. Empty disables it.
	SiteDir string
	// LinkPrefix is the URL path the site is served under, e.g. "/food/recipes/".
	LinkPrefix string
}

type Server struct {
	engine *gin.Engine
	log    *zap.SugaredLogger
}

func New(a *app.App, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	sugar := logger.Sugar()

	r := gin.New()
	r.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger, true))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "recipes": len(a.Catalog())})
	})

	v1 := r.Group("/v1")
	{
		v1.GET("/recipes", func(c *gin.Context) { ListRecipesHandler(c, a) })
		v1.GET("/recipes/search", func(c *gin.Context) { SearchRecipesHandler(c, a) })
		v1.GET("/recipe", func(c *gin.Context) { GetRecipeHandler(c, a) })
		v1.GET("/ingredients", func(c *gin.Context) { ListIngredientsHandler(c, a) })

		v1.GET("/plan", func(c *gin.Context) { GetPlanHandler(c, a) })
		v1.DELETE("/plan", func(c *gin.Context) { ClearPlanHandler(c, a, sugar) })
		v1.POST("/plan/move", func(c *gin.Context) { MoveEntryHandler(c, a, sugar) })
		v1.POST("/plan/:day/:slot", func(c *gin.Context) { AddEntryHandler(c, a, sugar) })
		v1.DELETE("/plan/:day/:slot/:id", func(c *gin.Context) { DeleteEntryHandler(c, a, sugar) })

		v1.GET("/shopping", func(c *gin.Context) { GetShoppingListHandler(c, a, sugar) })
		v1.POST("/shopping/:index/check", func(c *gin.Context) { CheckItemHandler(c, a, sugar) })
		v1.POST("/shopping/:index/up", func(c *gin.Context) { MoveItemHandler(c, a, true, sugar) })
		v1.POST("/shopping/:index/down", func(c *gin.Context) { MoveItemHandler(c, a, false, sugar) })
		v1.PUT("/shopping/:index", func(c *gin.Context) { EditItemHandler(c, a, sugar) })

		v1.GET("/saved", func(c *gin.Context) { ListSavedHandler(c, a) })
		v1.POST("/saved", func(c *gin.Context) { SaveRecipeHandler(c, a, sugar) })
		v1.DELETE("/saved", func(c *gin.Context) { UnsaveRecipeHandler(c, a, sugar) })
	}

	if opts.SiteDir != "" {
		prefix := "/" + strings.Trim(opts.LinkPrefix, "/")
		if prefix == "/" {
			files := http.FileServer(http.Dir(opts.SiteDir))
			r.NoRoute(gin.WrapH(files))
		} else {
			r.Static(prefix, opts.SiteDir)
		}
	}

	return &Server{engine: r, log: sugar}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}

	errc := make(chan error, 1)
	go func() {
		s.log.Infow("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorw("failed to gracefully close server", "error", err)
			return err
		}
		s.log.Infow("server stopped")
		return nil
	}
}
