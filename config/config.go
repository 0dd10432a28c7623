package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DBURL          = "database.postgres"
	DBMigrations   = "database.migrations"
	DBMaxOpenConns = "database.max_open_conns"

	Port           = "server.port"
	Secret         = "server.secret"
	SessionTTL     = "server.session_ttl"
	AllowedOrigins = "server.allowed_origins"

	LogLevel  = "log.level"
	LogFormat = "log.format"

	RedisAddress  = "redis.address"
	RedisPassword = "redis.password"
	RedisDB       = "redis.db"

	PinataAPIKey    = "pinata.api_key"
	PinataSecretKey = "pinata.secret_key"
	PinataGateway   = "pinata.gateway"
	PinataURL       = "pinata.url"

	S3AccessKey = "s3.access_key"
	S3SecretKey = "s3.secret_key"
	S3Bucket    = "s3.bucket"
	S3Region    = "s3.region"
	S3Endpoint  = "s3.endpoint"
	S3PublicURL = "s3.public_url"

	EthereumRPCURL          = "ethereum.rpc_url"
	EthereumContractAddress = "ethereum.contract_address"

	VaultAddress   = "vault.address"
	VaultToken     = "vault.token"
	VaultUnSealKey = "vault.unseal_key"
	PayoutPath     = "vault.payout_path"

	TwilioAccountSID = "twilio.account_sid"
	TwilioAuthToken  = "twilio.auth_token"
	TwilioURL        = "twilio.url"
	TwilioFrom       = "twilio.from"

	FirebaseProjectID             = "firebase.project_id"
	FirebaseServiceAccountKeyPath = "firebase.service_account_key_path"

	PayoutRequireOTP = "payout.require_otp"

	CodecKey = "codec.key"

	SchedulerInterval = "scheduler.interval"
)

func init() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.SetDefault(Port, ":9000")
	viper.SetDefault(SessionTTL, 7*24*time.Hour)
	viper.SetDefault(DBMigrations, "./migrations")
	viper.SetDefault(DBMaxOpenConns, 20)
	viper.SetDefault(LogLevel, "info")
	viper.SetDefault(LogFormat, "text")
	viper.SetDefault(PinataURL, "https://api.pinata.cloud")
	viper.SetDefault(PinataGateway, "https://gateway.pinata.cloud")
	viper.SetDefault(TwilioURL, "https://api.twilio.com/2010-04-01/Accounts")
	viper.SetDefault(PayoutPath, "payouts")
	viper.SetDefault(SchedulerInterval, 15*time.Minute)
}
