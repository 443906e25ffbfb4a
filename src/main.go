package main

import (
	"net/http"

	"centsible-server/src/api"
	"centsible-server/src/category"
	"centsible-server/src/config"
	"centsible-server/src/cron"
	"centsible-server/src/db"
	sqldb "centsible-server/src/db/sql"
	"centsible-server/src/ingest"
	"centsible-server/src/util"
	"centsible-server/src/vendors"
)

func main() {
	cfg := config.Load()
	util.InitLogger()

	// Connect to database
	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		util.Logger.Fatalf("DB connection failed: %v", err)
	}
	defer pool.Close()

	db.InitCache()

	// The dictionary is built once and injected; nothing else holds global
	// matching state.
	dictionary := vendors.DefaultDictionary()
	store := sqldb.NewStore(pool)
	resolver := category.NewResolver(store, dictionary, cfg.Pacing, util.Logger)
	pipeline := ingest.NewPipeline(store, dictionary, resolver, nil, cfg.Pacing, util.Logger)

	cleanupJobs := cron.Start(pool)
	defer cleanupJobs.Stop()

	router := api.NewRouter(pool, pipeline, resolver, cfg.ReadOnly)

	util.Logger.Infof("API server running on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		util.Logger.Fatal(err)
	}
}
