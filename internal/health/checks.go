package health

import (
	"fmt"
	"time"

	"github.com/hellofresh/health-go/v5"
	healthMongo "github.com/hellofresh/health-go/v5/checks/mongo"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"

	"hostel-catalog/internal/config"
)

const (
	componentName    = "hostel-catalog"
	componentVersion = "1.0.0"
)

// Checks arma los chequeos según la configuración: mongo siempre, redis solo si es el backend de caché.
func Checks(cfg *config.Config) []health.Config {
	checks := []health.Config{
		{
			Name:      "mongodb",
			Timeout:   3 * time.Second,
			SkipOnErr: false,
			Check: healthMongo.New(healthMongo.Config{
				DSN:               cfg.MongoURI,
				TimeoutConnect:    2 * time.Second,
				TimeoutDisconnect: time.Second,
				TimeoutPing:       time.Second,
			}),
		},
	}

	if cfg.Cache.Backend == config.CacheBackendRedis {
		checks = append(checks, health.Config{
			Name:      "redis",
			Timeout:   2 * time.Second,
			SkipOnErr: true,
			Check: healthRedis.New(healthRedis.Config{
				DSN: cfg.Cache.RedisURL,
			}),
		})
	}

	return checks
}

func New(checks ...health.Config) (*health.Health, error) {
	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    componentName,
			Version: componentVersion,
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}
	return h, nil
}
