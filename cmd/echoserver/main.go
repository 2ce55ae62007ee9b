// Echoserver is a minimal HTTP target for the HTTP load and cold-start
// benchmarks: it serves fixed JSON and plaintext payloads so measured
// latency reflects the runtime's server stack rather than handler work.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "listen address")
	startupDelay := flag.Duration("startup-delay", 0,
		"artificial delay before listening, for cold-start testing")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *startupDelay > 0 {
		time.Sleep(*startupDelay)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/plain", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "hello")
	})
	mux.HandleFunc("/json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message":   "hello",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	logger.Info("listening", slog.String("addr", *addr))

	if err := http.ListenAndServe(*addr, mux); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}
