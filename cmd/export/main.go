package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bmi-service/config"
	"github.com/oksasatya/bmi-service/internal/application"
	"github.com/oksasatya/bmi-service/internal/domain/entity"
	"github.com/oksasatya/bmi-service/internal/infrastructure/storage"
	"github.com/oksasatya/bmi-service/pkg/helpers"
)

// Export writes every measurement as a JSON array to
// gs://$GCS_BUCKET/exports/bmi-<timestamp>.json, or stdout without a bucket.
func main() {
	public := flag.Bool("public", false, "export the public (name-tagged) ledger")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-export", cfg.Env)
	logger.SetOutput(os.Stderr)

	own := entity.OwnedByUser
	if *public {
		own = entity.OwnedByName
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	st, err := storage.Open(ctx, cfg, own, logger)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer st.Close()
	svc := application.NewBMIService(st.BMI, nil, logger)

	if cfg.GCSBucket == "" {
		n, err := writeSnapshot(ctx, svc, os.Stdout)
		if err != nil {
			log.Fatalf("export: %v", err)
		}
		logger.WithField("records", n).Info("export written to stdout")
		return
	}

	var buf bytes.Buffer
	n, err := writeSnapshot(ctx, svc, &buf)
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
	if err != nil {
		log.Fatalf("failed to init GCS client: %v", err)
	}
	defer func() { _ = gcs.Close() }()

	uri, err := helpers.UploadObject(ctx, gcs, cfg.GCSBucket, objectPath(time.Now()), "application/json", &buf)
	if err != nil {
		log.Fatalf("upload: %v", err)
	}
	logger.WithFields(logrus.Fields{"records": n, "uri": uri}).Info("export uploaded")
}

func objectPath(at time.Time) string {
	return fmt.Sprintf("exports/bmi-%s.json", at.UTC().Format(time.RFC3339))
}

// writeSnapshot encodes the whole ledger, owner ids included.
func writeSnapshot(ctx context.Context, svc *application.BMIService, w io.Writer) (int, error) {
	list, err := svc.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	rows := make([]application.BMIEvent, 0, len(list))
	for i := range list {
		rows = append(rows, application.BMIEvent{BMIView: list[i].View(), UserID: list[i].UserID})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}
