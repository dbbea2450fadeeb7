package consul

import (
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/consul/api"

	"github.com/yungbote/tutor-backend/internal/platform/envutil"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

type Config struct {
	Address     string
	ServiceName string
	ServiceHost string
	ServicePort int
	HealthPath  string
	Tags        []string
}

func ConfigFromEnv(serviceName string, port int) Config {
	host, _ := os.Hostname()
	return Config{
		Address:     envutil.String("CONSUL_ADDR", ""),
		ServiceName: envutil.String("CONSUL_SERVICE_NAME", serviceName),
		ServiceHost: envutil.String("CONSUL_SERVICE_HOST", host),
		ServicePort: port,
		HealthPath:  envutil.String("CONSUL_HEALTH_PATH", "/healthcheck"),
		Tags:        envutil.List("CONSUL_TAGS", []string{"api"}),
	}
}

// Registry registers this instance with the local consul agent.
type Registry struct {
	client    *api.Client
	log       *logger.Logger
	serviceID string
}

func NewRegistry(log *logger.Logger, addr string) (*Registry, error) {
	cfg := api.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}
	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{client: client, log: log.With("component", "ConsulRegistry")}, nil
}

// ServiceID is name-host-port so restarts replace the previous entry.
func ServiceID(cfg Config) string {
	return cfg.ServiceName + "-" + cfg.ServiceHost + "-" + strconv.Itoa(cfg.ServicePort)
}

func (r *Registry) Register(cfg Config) error {
	if cfg.ServiceName == "" || cfg.ServicePort <= 0 {
		return fmt.Errorf("consul: service name and port are required")
	}
	id := ServiceID(cfg)
	reg := &api.AgentServiceRegistration{
		ID:      id,
		Name:    cfg.ServiceName,
		Port:    cfg.ServicePort,
		Address: cfg.ServiceHost,
		Tags:    cfg.Tags,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d%s", cfg.ServiceHost, cfg.ServicePort, cfg.HealthPath),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
		Meta: map[string]string{"version": envutil.String("APP_VERSION", "dev")},
	}
	if err := r.client.Agent().ServiceRegister(reg); err != nil {
		return fmt.Errorf("consul register: %w", err)
	}
	r.serviceID = id
	r.log.Info("service registered", "service_id", id)
	return nil
}

func (r *Registry) Deregister() error {
	if r == nil || r.serviceID == "" {
		return nil
	}
	if err := r.client.Agent().ServiceDeregister(r.serviceID); err != nil {
		return fmt.Errorf("consul deregister: %w", err)
	}
	r.log.Info("service deregistered", "service_id", r.serviceID)
	r.serviceID = ""
	return nil
}
