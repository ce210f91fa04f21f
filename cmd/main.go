package main

import (
	"log"

	"github.com/Flappyflapflaps/solar-survey-sub000/internal/config"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/database"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/kvstore"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/registry"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/server"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/storage"
	"github.com/Flappyflapflaps/solar-survey-sub000/internal/upload"
)

func main() {
	cfg := config.Load()

	// ========== DATABASE SETUP ==========
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("❌ Database connection failed:", err)
	}
	log.Printf("✅ Connected to %s database", cfg.DBDriver)

	if err := database.Migrate(db); err != nil {
		log.Fatal("❌ Migration failed: ", err)
	}

	// ========== FORM STORAGE ==========
	kv := kvstore.NewGorm(db, cfg.StorageQuotaBytes)
	submissions := storage.NewSubmissions(kv)
	templates := storage.NewTemplates(kv, submissions)
	if cfg.StorageQuotaBytes > 0 {
		log.Printf("📦 Storage quota: %d bytes", cfg.StorageQuotaBytes)
	}

	reg := registry.Default()
	log.Printf("✅ Field registry ready (%d types)", len(reg.Types()))

	// ========== UPLOAD SETUP ==========
	local, err := upload.NewLocal(cfg.UploadDir)
	if err != nil {
		log.Fatal("❌ Failed to initialize local storage:", err)
	}
	var uploader upload.Uploader = local
	if cfg.UseS3 {
		s3, err := upload.NewS3(cfg.S3Bucket, cfg.S3Region, cfg.CloudFrontURL)
		if err != nil {
			log.Println("⚠️  S3 initialization failed:", err)
			log.Println("⚠️  Falling back to local storage")
		} else {
			uploader = s3
			log.Printf("☁️  Using S3: %s (region: %s)", cfg.S3Bucket, cfg.S3Region)
		}
	} else {
		log.Printf("💾 Using LOCAL storage mode (%s)", cfg.UploadDir)
	}

	// ========== START SERVER ==========
	app := server.New(server.Deps{
		Registry:    reg,
		Templates:   templates,
		Submissions: submissions,
		Uploader:    uploader,
		UploadDir:   cfg.UploadDir,
	})

	log.Printf("🚀 Survey form server starting on %s", cfg.ServerAddr)
	log.Printf("💾 Upload Mode: %s", uploader.Mode())

	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Fatal("❌ Failed to start server:", err)
	}
}
