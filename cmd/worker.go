package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"senseact/internal/config"
	"senseact/internal/ingest"
	"senseact/internal/llm"
	"senseact/internal/model"
	"senseact/internal/notify"
	"senseact/internal/summary"
	"senseact/internal/utils"
	"senseact/internal/video"
	"senseact/internal/window"
	"senseact/pkg/log"
)

var workerCommand = &cobra.Command{
	Use:   "worker",
	Short: "Start the video segment worker",
	Long: `Consumes video segment references from NSQ, extracts and analyzes
keyframes, and periodically summarizes closed event windows.`,
	Run: func(cmd *cobra.Command, args []string) {
		runWorker()
	},
}

func runWorker() {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}

	db, err := model.InitDB(conf.DB)
	if err != nil {
		logrus.Fatal("failed to init database", err)
	}
	defer func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}()

	minioCli, err := utils.NewMinioClient(conf.S3)
	if err != nil {
		logrus.Fatal("failed to create minio client, ", err.Error())
	}

	windows, err := window.NewBadgerStore(conf.Worker.WindowDir)
	if err != nil {
		logrus.Fatal("failed to open window store, ", err.Error())
	}
	defer windows.Close()

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	publisher := notify.NewPublisher(conf.Notify, log.WithComponent(ctx, "publisher"))

	processor := ingest.NewProcessor(
		conf.Video,
		video.NewObjectStoreOpener(minioCli, conf.S3.Bucket),
		llm.NewAnalyzer(conf.VLM),
		ingest.NewModelFrameStore(),
		windows,
		publisher,
		log.WithComponent(ctx, "processor"),
	)

	consumer, err := ingest.NewConsumer(conf.NSQ, conf.Worker.Concurrency, processor)
	if err != nil {
		logrus.Fatal("failed to create consumer, ", err.Error())
	}

	scheduler := summary.NewScheduler(
		conf.Summary,
		windows,
		summary.NewModelFrameQuerier(),
		summary.NewModelSummarySaver(),
		llm.NewSummarizer(conf.SummaryLLM),
		publisher,
	)

	if err := consumer.Start(); err != nil {
		logrus.Fatal("failed to start consumer, ", err.Error())
	}
	scheduler.Start()

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

	<-termChan
	logrus.Infof("worker is shutting down...")
	consumer.Stop()
	scheduler.Stop()
}
