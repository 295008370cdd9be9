package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	MySQLDSN     string
	RedisURL     string
	JWTSecret    string
	Port         string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func Load() Config {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	smtpPort, _ := strconv.Atoi(getenv("SMTP_PORT", "587"))
	return Config{
		MySQLDSN:     getenv("MYSQL_DSN", "wonderland:wonderland@tcp(localhost:3306)/wonderland"),
		RedisURL:     getenv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:    getenv("JWT_SECRET", ""),
		Port:         getenv("PORT", "8080"),
		SMTPHost:     getenv("SMTP_HOST", "localhost"),
		SMTPPort:     smtpPort,
		SMTPUser:     getenv("SMTP_USER", "-"),
		SMTPPassword: getenv("SMTP_PASSWORD", "-"),
		MailFrom:     getenv("MAIL_FROM", "developers@8thwonderland.com"),
	}
}
