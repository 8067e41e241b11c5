package database

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/sirupsen/logrus"
	"github.com/workbridg/workbridg-web/internal/config"
	"gorm.io/gorm"
)

const sessionMaxAge = 86400 * 7 // 7 days

// NewSessionStore builds the session store selected by SESSION_STORE. The
// database store needs db; the other stores ignore it.
func NewSessionStore(cfg *config.Config, db *gorm.DB, log logrus.FieldLogger) (sessions.Store, error) {
	secret := []byte(cfg.SessionSecret)

	var store sessions.Store
	switch cfg.SessionStore {
	case "", "cookie":
		store = cookie.NewStore(secret)
	case "redis":
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		s, err := redisStore.NewStore(
			10,        // pool size
			"tcp",     // network type
			redisAddr, // address
			"",        // password (empty = no password)
			secret,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis session store: %w", err)
		}
		store = s
	case "database":
		if db == nil {
			return nil, fmt.Errorf("database session store requires a database connection")
		}
		store = gormsessions.NewStore(db, true, secret)
	default:
		return nil, fmt.Errorf("unsupported SESSION_STORE %q", cfg.SessionStore)
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	log.WithField("store", cfg.SessionStore).Info("Session store ready")
	return store, nil
}
