package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

func Load() error {
	// .env is optional; real environment variables still win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	// API Configuration
	viper.SetDefault("API_ADDR", ":8080")

	// Database Configuration (sqlite file for local dev, pgx for postgres)
	viper.SetDefault("DB_DRIVER", "sqlite3")
	viper.SetDefault("DB_DSN", "energydatabase.db")

	// Audit log partitions live under LOG_DIR/<energy type>/
	viper.SetDefault("LOG_DIR", "log_files")
	viper.SetDefault("LOG_LEVEL", "info")

	// Change notifications over MQTT are off when the broker is empty
	viper.SetDefault("MQTT_BROKER", "")
	viper.SetDefault("MQTT_TOPIC", "energy/entry-updates")

	// AWS Configuration
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("AWS_S3_BUCKET", "energy-usage-audit")
	viper.SetDefault("AWS_SNS_TOPIC_ARN", "")
	viper.SetDefault("AWS_DYNAMODB_TABLE", "EntryUpdates")
	viper.SetDefault("USE_CLOUD_SERVICES", "false") // Toggle for local vs cloud

	viper.AutomaticEnv()

	lvl, err := zerolog.ParseLevel(viper.GetString("LOG_LEVEL"))
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

func APIAddr() string { return viper.GetString("API_ADDR") }
func DBDriver() string { return viper.GetString("DB_DRIVER") }
func LogDir() string { return viper.GetString("LOG_DIR") }
func MQTTBroker() string { return viper.GetString("MQTT_BROKER") }
func MQTTTopic() string { return viper.GetString("MQTT_TOPIC") }
func AWSRegion() string { return viper.GetString("AWS_REGION") }
func S3Bucket() string { return viper.GetString("AWS_S3_BUCKET") }
func SNSTopicArn() string { return viper.GetString("AWS_SNS_TOPIC_ARN") }
func DynamoDBTable() string { return viper.GetString("AWS_DYNAMODB_TABLE") }
func UseCloudServices() bool { return viper.GetBool("USE_CLOUD_SERVICES") }
