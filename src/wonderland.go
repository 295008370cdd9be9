package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kern046/8thWonderlandV4/src/config"
	"github.com/Kern046/8thWonderlandV4/src/data"
	"github.com/Kern046/8thWonderlandV4/src/mail"
	"github.com/Kern046/8thWonderlandV4/src/webserver"
)

func main() {
	cfg := config.Load()

	db := data.MustMySQL(cfg.MySQLDSN)
	if err := data.LoadSettings(db); err != nil {
		log.Printf("failed to load settings: %v", err)
	}
	rdb := data.MustRedis(cfg.RedisURL)

	// Mail sender address can be managed from the settings table; the
	// environment value is the fallback.
	from := data.GetSetting("mail_from")
	if from == "" {
		from = cfg.MailFrom
	}
	mailer := mail.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, from)

	router := webserver.New(cfg, db, rdb, mailer)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("8th Wonderland listening on port %s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
