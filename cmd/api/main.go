package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/audit"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/cloud"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/config"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/database"
	httpHandlers "github.com/ANIKETSHETTY47/energy-usage-database/internal/http"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/notify"
	"github.com/ANIKETSHETTY47/energy-usage-database/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	ctx := context.Background()
	var opts []service.Option

	if broker := config.MQTTBroker(); broker != "" {
		sink, err := notify.DialMQTT(broker, config.MQTTTopic())
		if err != nil {
			log.Fatal().Err(err).Str("broker", broker).Msg("mqtt connect failed")
		}
		defer sink.Close()
		opts = append(opts, service.WithSinks(sink))
		log.Info().Str("broker", broker).Msg("mqtt notifications enabled")
	}

	if config.UseCloudServices() {
		opts = append(opts, cloudOptions(ctx)...)
	}

	svcs := service.New(db, audit.NewLogger(config.LogDir()), opts...)
	app := httpHandlers.NewApp(svcs)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		log.Info().Msg("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	addr := config.APIAddr()
	log.Info().Str("addr", addr).Str("db_driver", config.DBDriver()).Str("log_dir", config.LogDir()).Msg("api listening")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server exit")
	}
}

func cloudOptions(ctx context.Context) []service.Option {
	region := config.AWSRegion()
	var opts []service.Option

	s3c, err := cloud.NewS3Client(ctx, region, config.S3Bucket())
	if err != nil {
		log.Fatal().Err(err).Msg("s3 client init failed")
	}
	opts = append(opts, service.WithArchiver(s3c))

	ddb, err := cloud.NewDynamoDBClient(ctx, region, config.DynamoDBTable())
	if err != nil {
		log.Fatal().Err(err).Msg("dynamodb client init failed")
	}
	opts = append(opts, service.WithSinks(ddb), service.WithUpdateHistory(ddb))

	if arn := config.SNSTopicArn(); arn != "" {
		snsc, err := cloud.NewSNSClient(ctx, region, arn)
		if err != nil {
			log.Fatal().Err(err).Msg("sns client init failed")
		}
		opts = append(opts, service.WithSinks(snsc))
	}

	log.Info().Str("region", region).Msg("cloud services enabled")
	return opts
}
