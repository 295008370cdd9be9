package webserver

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Kern046/8thWonderlandV4/src/config"
	"github.com/Kern046/8thWonderlandV4/src/group"
	"github.com/Kern046/8thWonderlandV4/src/mail"
	"github.com/Kern046/8thWonderlandV4/src/member"
	"github.com/Kern046/8thWonderlandV4/src/motion"
)

func attachRoutes(r *gin.Engine, cfg config.Config, db *gorm.DB, rdb *redis.Client, mailer mail.Sender) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "https://www.8thwonderland.com"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	members := member.NewManager(db)
	groups := group.NewManager(db)
	motions := motion.NewRepository(db)

	authH := NewAuth(members, rdb, mailer, []byte(cfg.JWTSecret))
	memberH := NewMembers(members)
	groupH := NewGroups(groups)
	motionH := NewMotions(motions)

	authLimiter := NewRateLimiter(10, time.Minute)

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(RateLimitMiddleware(authLimiter))
		{
			auth.POST("/login", authH.Login)
			auth.POST("/register", authH.Register)
			auth.POST("/recover", authH.Recover)
			auth.POST("/recover/confirm", authH.RecoverConfirm)
		}

		secured := v1.Group("")
		secured.Use(JWTMiddleware([]byte(cfg.JWTSecret)))
		{
			secured.GET("/motions", motionH.List)
			secured.POST("/motions", motionH.Create)
			secured.GET("/motions/themes", motionH.Themes)
			secured.GET("/motions/:id", motionH.Show)
			secured.POST("/motions/:id/votes", motionH.Vote)

			secured.GET("/members", memberH.AddressBook)
			secured.GET("/members/me", memberH.Me)
			secured.PUT("/members/me", memberH.UpdateMe)
			secured.GET("/countries", memberH.Countries)
			secured.GET("/stats", memberH.Stats)

			secured.GET("/groups", groupH.List)
			secured.GET("/groups/map", groupH.Map)
			secured.GET("/groups/mine", groupH.Mine)
			secured.GET("/groups/contacts", groupH.Contacts)
			secured.POST("/groups/:id/join", groupH.Join)
			secured.PUT("/groups/:id/contact", groupH.UpdateContact)
		}
	}
}
