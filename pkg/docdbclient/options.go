package docdbclient

const (
	defaultHost = "127.0.0.1"
	defaultPort = 9999
)

type config struct {
	Host string
	Port int
}

func defaultConfig() config {
	return config{Host: defaultHost, Port: defaultPort}
}

// Option configures a Client returned by Connect.
type Option func(*config)

// WithHost overrides the server host to connect to.
func WithHost(host string) Option {
	return func(c *config) { c.Host = host }
}

// WithPort overrides the server port to connect to.
func WithPort(port int) Option {
	return func(c *config) { c.Port = port }
}
