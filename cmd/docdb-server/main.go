package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/konbelyavskyi/docdb/docdb"
	"github.com/konbelyavskyi/docdb/internal/docdbserver"
	"github.com/konbelyavskyi/docdb/internal/metricsprom"
	"github.com/konbelyavskyi/docdb/internal/utils"
)

func main() {
	flags := utils.HandleServerCLIInputs()

	registry := prometheus.NewRegistry()
	metrics := metricsprom.New(registry)

	db, err := docdb.NewDiskDB(
		docdb.WithDataDir(flags.DataDir),
		docdb.WithTrace(flags.Trace),
		docdb.WithLock(flags.Lock),
		docdb.WithMetrics(metrics),
	)
	if err != nil {
		fmt.Println("Error opening data directory:", err)
		return
	}
	defer db.Close()

	go serveMetrics(registry, flags.MetricsPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := docdbserver.New(db)
	go func() {
		if err := srv.Start(ctx, flags.Port); err != nil {
			fmt.Println("Server stopped abruptly:", err)
		}
	}()

	fmt.Printf("docdb-server listening on :%d, metrics on :%d\n", flags.Port, flags.MetricsPort)
	utils.ListenForProcessInterruptOrKill()
}

func serveMetrics(registry *prometheus.Registry, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	addr := fmt.Sprintf(":%d", port)
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Println("metrics server stopped:", err)
	}
}
