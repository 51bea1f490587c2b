package main

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// creator makes one named resource. Both the table and the queue client are
// adapted to it so the already-exists handling is shared.
type creator func(ctx context.Context, name string) error

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("read .env: %v", err)
	}
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}
	log.Info("storage init starting")

	connStr := os.Getenv("STORAGE_CONNECTION_STRING")
	if connStr == "" {
		log.Fatal("missing STORAGE_CONNECTION_STRING")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	svc, err := aztables.NewServiceClientFromConnectionString(connStr, nil)
	if err != nil {
		log.Fatalf("table service: %v", err)
	}
	created, err := ensure(ctx, tableCreator(svc), "table", os.Getenv("TASKS_TABLE"))
	if err != nil {
		log.Fatalf("create tables: %v", err)
	}

	n, err := ensure(ctx, queueCreator(connStr), "queue", os.Getenv("TASK_EVENTS_QUEUE"))
	if err != nil {
		log.Fatalf("create queues: %v", err)
	}

	log.WithField("created", created+n).Info("storage init complete")
}

func tableCreator(svc *aztables.ServiceClient) creator {
	return func(ctx context.Context, name string) error {
		_, err := svc.NewClient(name).CreateTable(ctx, nil)
		return err
	}
}

func queueCreator(connStr string) creator {
	return func(ctx context.Context, name string) error {
		q, err := azqueue.NewQueueClientFromConnectionString(connStr, name, nil)
		if err != nil {
			return err
		}
		_, err = q.Create(ctx, nil)
		return err
	}
}

// ensure creates every non-empty name and returns how many were new.
// Resources that already exist are left alone.
func ensure(ctx context.Context, create creator, kind string, names ...string) (int, error) {
	created := 0
	for _, name := range names {
		if name == "" {
			continue
		}
		err := create(ctx, name)
		switch {
		case err == nil:
			created++
			log.Infof("created %s %s", kind, name)
		case alreadyExists(err):
			log.Debugf("%s %s already exists", kind, name)
		default:
			return created, err
		}
	}
	return created, nil
}

func alreadyExists(err error) bool {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return false
	}
	return respErr.ErrorCode == string(aztables.TableAlreadyExists) || respErr.ErrorCode == "QueueAlreadyExists"
}
