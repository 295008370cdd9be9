package webserver

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Kern046/8thWonderlandV4/src/config"
	"github.com/Kern046/8thWonderlandV4/src/mail"
)

func New(cfg config.Config, db *gorm.DB, rdb *redis.Client, mailer mail.Sender) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, db, rdb, mailer)
	return g
}
