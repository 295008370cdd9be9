package webserver

import (
	"crypto/rand"
	"errors"
	"log"
	"math/big"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Kern046/8thWonderlandV4/src/data"
	"github.com/Kern046/8thWonderlandV4/src/mail"
	"github.com/Kern046/8thWonderlandV4/src/member"
)

type Auth struct {
	members   *member.Manager
	rdb       *redis.Client
	mailer    mail.Sender
	jwtSecret []byte
}

func NewAuth(members *member.Manager, rdb *redis.Client, mailer mail.Sender, secret []byte) Auth {
	return Auth{members: members, rdb: rdb, mailer: mailer, jwtSecret: secret}
}

func (a Auth) Login(c *gin.Context) {
	var req struct {
		Login    string `json:"login" binding:"required,min=1,max=64"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	mb, err := a.members.Authenticate(c, req.Login, member.PasswordDigest(req.Password))
	if err != nil {
		switch {
		case errors.Is(err, member.ErrBadCredentials):
			log.Printf("login failed for %s from %s", req.Login, c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"err": "bad credentials"})
		case errors.Is(err, member.ErrAccountDisabled):
			c.JSON(http.StatusForbidden, gin.H{"err": "account disabled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		}
		return
	}

	token, err := issueJWT(mb.ID, mb.Identity, a.jwtSecret)
	if err != nil {
		log.Printf("failed to issue token for %s: %v", mb.Identity, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (a Auth) Register(c *gin.Context) {
	var req struct {
		Login    string `json:"login" binding:"required,min=1,max=64"`
		Password string `json:"password" binding:"required,min=6"`
		Identity string `json:"identity" binding:"required,max=64"`
		Gender   int8   `json:"gender" binding:"oneof=0 1"`
		Email    string `json:"email" binding:"required,max=256"`
		Language string `json:"language" binding:"required,max=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	mb, err := a.members.Create(c, member.NewMember{
		Login:    req.Login,
		Password: req.Password,
		Identity: req.Identity,
		Gender:   req.Gender,
		Email:    req.Email,
		Language: req.Language,
	})
	if err != nil {
		switch {
		case errors.Is(err, member.ErrInvalidIdentity), errors.Is(err, member.ErrInvalidEmail):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"err": err.Error()})
		case errors.Is(err, member.ErrIdentityTaken),
			errors.Is(err, member.ErrLoginTaken),
			errors.Is(err, member.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"err": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		}
		return
	}

	log.Printf("registered new citizen %s", mb.Identity)
	c.JSON(http.StatusCreated, gin.H{"id": mb.ID, "identity": mb.Identity})
}

func (a Auth) Recover(c *gin.Context) {
	var req struct {
		Login string `json:"login" binding:"required,max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	mb, err := a.members.MemberByLogin(c, req.Login)
	if err != nil {
		if errors.Is(err, member.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "unknown login"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	code, err := generateRecoveryCode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to create code"})
		return
	}
	if err := data.SetRecoveryCode(c, a.rdb, req.Login, code); err != nil {
		log.Printf("failed to store recovery code for %s: %v", req.Login, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to create code"})
		return
	}
	if err := a.mailer.SendRecoveryCode(mb.Email, code); err != nil {
		log.Printf("failed to mail recovery code for %s: %v", req.Login, err)
		c.JSON(http.StatusBadGateway, gin.H{"err": "mail delivery failed"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (a Auth) RecoverConfirm(c *gin.Context) {
	var req struct {
		Login string `json:"login" binding:"required,max=64"`
		Code  string `json:"code" binding:"required,len=5"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	code, err := data.GetRecoveryCode(c, a.rdb, req.Login)
	if err != nil || code != req.Code {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "code expired or not found"})
		return
	}

	mb, err := a.members.MemberByLogin(c, req.Login)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "unknown login"})
		return
	}

	password, err := generatePassword(9)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to create password"})
		return
	}
	if err := a.mailer.SendNewPassword(mb.Email, password); err != nil {
		log.Printf("failed to mail new password for %s: %v", req.Login, err)
		c.JSON(http.StatusBadGateway, gin.H{"err": "mail delivery failed"})
		return
	}
	if err := a.members.UpdatePassword(c, req.Login, member.PasswordDigest(password)); err != nil {
		log.Printf("failed to update password for %s: %v", req.Login, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to update password"})
		return
	}
	if err := data.DelRecoveryCode(c, a.rdb, req.Login); err != nil {
		log.Printf("failed to drop recovery code for %s: %v", req.Login, err)
	}

	c.Status(http.StatusNoContent)
}

// generateRecoveryCode draws a 5-digit code, the shape citizens expect
// from the recovery mail.
func generateRecoveryCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+10000, 10), nil
}

// passwordAlphabet leaves out characters that read ambiguously in mail
// (1/l, O/0).
const passwordAlphabet = "23456789abcdefghijkmnopqrstuvwxyzABCDEFGHIJKLMNPQRSTUVWXYZ"

func generatePassword(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[idx.Int64()]
	}
	return string(out), nil
}
