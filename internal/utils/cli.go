package utils

import "flag"

const DefaultDataDir = "./db"
const DefaultPort = 9999
const DefaultMetricsPort = 9998

// ServerFlags are the parsed command-line flags for docdb-server.
type ServerFlags struct {
	DataDir     string
	Port        int
	MetricsPort int
	Trace       bool
	Lock        bool
}

// HandleServerCLIInputs parses docdb-server's flags.
func HandleServerCLIInputs() ServerFlags {
	dataDir := flag.String("dir", DefaultDataDir, "Directory to store bucket files in")
	port := flag.Int("port", DefaultPort, "Port to use for the TCP server")
	metricsPort := flag.Int("metrics-port", DefaultMetricsPort, "Port to expose Prometheus metrics on")
	trace := flag.Bool("trace", false, "Enable per-lookup bucket-resolution logging")
	lock := flag.Bool("lock", true, "Acquire an exclusive lock on the data directory")
	flag.Parse()

	return ServerFlags{
		DataDir:     *dataDir,
		Port:        *port,
		MetricsPort: *metricsPort,
		Trace:       *trace,
		Lock:        *lock,
	}
}

// ClientFlags are the parsed command-line flags for docdb-cli.
type ClientFlags struct {
	Host string
	Port int
}

const DefaultHost = "127.0.0.1"

// HandleClientCLIInputs parses docdb-cli's flags.
func HandleClientCLIInputs() ClientFlags {
	host := flag.String("host", DefaultHost, "docdb-server host")
	port := flag.Int("port", DefaultPort, "docdb-server port")
	flag.Parse()

	return ClientFlags{Host: *host, Port: *port}
}
