// Package app wires storage, services and HTTP routes together.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/text/language"

	"care-attendance/api"
	"care-attendance/internal/attendance"
	"care-attendance/internal/backup"
	"care-attendance/internal/places"
	"care-attendance/internal/platform/apierr"
	"care-attendance/internal/platform/auth"
	"care-attendance/internal/platform/db"
	"care-attendance/internal/platform/docstore"
	"care-attendance/internal/platform/ids"
	"care-attendance/internal/platform/kv"
	"care-attendance/internal/platform/middleware"
	"care-attendance/internal/schedules"
	"care-attendance/internal/stats"
)

var defaultCORSOrigins = []string{"http://localhost:5173", "http://localhost:3000"}

type App struct {
	cfg   *db.Config
	conn  *sql.DB
	store kv.Store
	clock ids.Clock

	Places     *places.Service
	Schedules  *schedules.Service
	Attendance *attendance.Service
	Stats      *stats.Service
	Backup     *backup.Service
	Auth       *auth.Service // nil when auth is disabled
}

// New opens the configured store and loads every dataset into memory.
func New(ctx context.Context, cfg *db.Config) (*App, error) {
	a := &App{cfg: cfg, clock: ids.RealClock{Loc: cfg.Location()}}

	opts := kv.Options{Dir: cfg.Storage.Dir}
	if cfg.Storage.Driver == "mysql" {
		conn, err := db.Connect(cfg.Storage.Database)
		if err != nil {
			return nil, err
		}
		a.conn = conn
		opts.DB = conn
		log.Printf("[INFO] connected to DB: %s", cfg.Storage.Database.DBName)
	}
	store, err := kv.Open(cfg.Storage.Driver, opts)
	if err != nil {
		a.Close()
		return nil, err
	}
	if m, ok := store.(*kv.MySQLStore); ok {
		if err := m.Migrate(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	a.store = store

	if err := a.loadServices(ctx); err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Auth.Enabled {
		a.Auth, err = auth.NewService(cfg.Auth.PasscodeHash, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, a.clock)
		if err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *App) loadServices(ctx context.Context) error {
	pc, err := docstore.Load[places.Place](ctx, a.store, kv.KeyPlaces)
	if err != nil {
		return err
	}
	sc, err := docstore.Load[schedules.Schedule](ctx, a.store, kv.KeySchedules)
	if err != nil {
		return err
	}
	ac, err := docstore.Load[attendance.Record](ctx, a.store, kv.KeyAttendance)
	if err != nil {
		return err
	}
	log.Printf("[INFO] loaded %d places, %d schedules, %d attendance records", len(pc.Snapshot()), len(sc.Snapshot()), len(ac.Snapshot()))

	idgen := ids.NewULIDGen()
	a.Places = places.NewService(pc, a.clock, idgen)
	a.Schedules = schedules.NewService(sc, a.Places, a.clock, idgen)
	a.Attendance = attendance.NewService(ac, a.Places, a.clock, idgen)

	locale, err := language.Parse(a.cfg.Report.Locale)
	if err != nil {
		log.Printf("[WARN] report locale %q: %v", a.cfg.Report.Locale, err)
		locale = language.Korean
	}
	a.Stats = stats.NewService(a.Attendance, a.Places, a.clock, stats.ReportOptions{Locale: locale, Currency: a.cfg.Report.Currency})
	a.Backup = backup.NewService(a.store, a.clock, a.Attendance, a.Schedules, a.Places)
	return nil
}

func (a *App) Close() error {
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}

// Router builds the gin engine: API under /api/v1, docs, health and the SPA.
func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if a.cfg.Mode == "dev" {
		origins := a.cfg.Server.CORSOrigins
		if len(origins) == 0 {
			origins = defaultCORSOrigins
		}
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.HeaderRequestID},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/openapi.yaml", func(c *gin.Context) { c.Data(http.StatusOK, "application/yaml", api.OpenAPI) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/openapi.yaml")))

	v1 := r.Group("/api/v1")
	var routes gin.IRoutes = v1
	if a.Auth != nil {
		auth.RegisterRoutes(v1, a.Auth)
		routes = v1.Group("", auth.RequireAuth(a.Auth.Secret()))
	}
	places.RegisterRoutes(routes, a.Places)
	schedules.RegisterRoutes(routes, a.Schedules)
	attendance.RegisterRoutes(routes, a.Attendance)
	stats.RegisterRoutes(routes, a.Stats)
	backup.RegisterRoutes(routes, a.Backup)

	if dir := a.cfg.Server.StaticDir; dir != "" {
		r.NoRoute(spaHandler(os.DirFS(dir)))
	} else {
		r.NoRoute(apiNotFound)
	}
	return r
}

func apiNotFound(c *gin.Context) {
	apierr.Respond(c, apierr.ErrNotFound("no route for "+c.Request.URL.Path))
}
